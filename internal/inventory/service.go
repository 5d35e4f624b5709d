package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNameRequired = errors.New("medicine_name is required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, search string, order string) ([]Item, error) {
	ord := OrderAsc
	if strings.EqualFold(order, "desc") {
		ord = OrderDesc
	}
	return s.repo.List(ctx, strings.TrimSpace(search), ord)
}

func (s *Service) Get(ctx context.Context, id int) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Upsert creates the medicine or adjusts an existing row by name.
// ModeSet replaces the quantity; ModeAdd (default) adds to it.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*Item, error) {
	name := strings.TrimSpace(in.MedicineName)
	if name == "" {
		return nil, ErrNameRequired
	}

	var expiration *string
	if strings.TrimSpace(in.ExpirationDate) != "" {
		e := strings.TrimSpace(in.ExpirationDate)
		expiration = &e
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, fmt.Errorf("find stock by name: %w", err)
	}

	if existing == nil {
		return s.repo.Insert(ctx, name, in.Quantity, expiration)
	}
	if in.Mode == ModeSet {
		return s.repo.SetQuantity(ctx, existing.ID, in.Quantity, expiration)
	}
	return s.repo.AddQuantity(ctx, existing.ID, in.Quantity, expiration)
}

func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (*Item, error) {
	if in.MedicineName != nil {
		trimmed := strings.TrimSpace(*in.MedicineName)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		in.MedicineName = &trimmed
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	count, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}
	if count == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *Service) ExpiredLots(ctx context.Context, before string) ([]Item, error) {
	return s.repo.FindExpiredLots(ctx, before)
}
