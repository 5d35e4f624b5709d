package patient

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrNameRequired = errors.New("first_name and last_name are required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, nameFilter string) ([]Summary, error) {
	rows, err := s.repo.List(ctx, nameFilter)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	for i := range rows {
		rows[i].FirstName = TitleCase(rows[i].FirstName)
		if rows[i].MiddleName != nil {
			mn := TitleCase(*rows[i].MiddleName)
			rows[i].MiddleName = &mn
		}
		rows[i].LastName = TitleCase(rows[i].LastName)
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (int, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return 0, ErrNameRequired
	}

	p := Patient{
		FirstName:  TitleCase(in.FirstName),
		MiddleName: optional(TitleCase(in.MiddleName)),
		LastName:   TitleCase(in.LastName),
		Email:      optional(in.Email),
		Phone:      optional(CleanPhone(in.Phone)),
		Birthdate:  optionalDate(in.Birthdate),
		Sex:        optional(in.Sex),
		BuildingNo: optional(in.BuildingNo),
		Street:     optional(in.Street),
		Barangay:   optional(in.Barangay),
		City:       optional(in.City),
		LastVisit:  optionalDate(in.LastVisit),
	}

	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("insert patient: %w", err)
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (*Patient, error) {
	if in.Birthdate != nil && normalizeDate(*in.Birthdate) == "" {
		in.Birthdate = nil
	}
	if in.LastVisit != nil && normalizeDate(*in.LastVisit) == "" {
		in.LastVisit = nil
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	count, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if count == 0 {
		return ErrPatientNotFound
	}
	return nil
}

var wordStart = regexp.MustCompile(`(^|[\s-])([a-z])`)

// TitleCase normalizes a stored name for display: lowercase, then each
// word's first letter upper, whitespace collapsed.
func TitleCase(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return wordStart.ReplaceAllStringFunc(s, strings.ToUpper)
}

var nonPhone = regexp.MustCompile(`[^\d+]`)

// CleanPhone strips separators and turns a 00 prefix into +.
func CleanPhone(s string) string {
	s = nonPhone.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	return strings.TrimSpace(s)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalDate(s string) *string {
	if d := normalizeDate(s); d != "" {
		return &d
	}
	return nil
}

// normalizeDate accepts anything time.Parse can read as a date or
// RFC3339 timestamp and reduces it to YYYY-MM-DD; "" when unparseable.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
