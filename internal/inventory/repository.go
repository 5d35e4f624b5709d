package inventory

import (
	"context"
	"errors"
)

var (
	ErrItemNotFound      = errors.New("stock item not found")
	ErrDuplicateMedicine = errors.New("medicine already exists")
)

// Repository contains all DB interactions for the stock inventory.
type Repository interface {
	List(ctx context.Context, search string, order SortOrder) ([]Item, error)
	GetByID(ctx context.Context, id int) (*Item, error)

	// FindByName matches case-insensitively on the exact name.
	FindByName(ctx context.Context, name string) (*Item, error)

	Insert(ctx context.Context, name string, qty int, expiration *string) (*Item, error)
	SetQuantity(ctx context.Context, id, qty int, expiration *string) (*Item, error)
	AddQuantity(ctx context.Context, id, delta int, expiration *string) (*Item, error)
	Update(ctx context.Context, id int, in UpdateInput) (*Item, error)
	Delete(ctx context.Context, id int) (int64, error)

	// FindExpiredLots lists items whose expiration date is strictly
	// before the given date and that still hold stock.
	FindExpiredLots(ctx context.Context, before string) ([]Item, error)

	InsertMovement(ctx context.Context, m Movement) error
}
