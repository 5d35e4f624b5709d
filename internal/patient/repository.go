package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

// Repository contains all DB interactions for the patient directory.
type Repository interface {
	List(ctx context.Context, nameFilter string) ([]Summary, error)
	GetByID(ctx context.Context, id int) (*Patient, error)
	Insert(ctx context.Context, p Patient) (int, error)
	Update(ctx context.Context, id int, in UpdateInput) (*Patient, error)
	Delete(ctx context.Context, id int) (int64, error)

	// ResolveUserID maps the numeric directory id to the account UUID
	// used as the prescriptions foreign key. Nil when unlinked.
	ResolveUserID(ctx context.Context, id int) (*uuid.UUID, error)
}
