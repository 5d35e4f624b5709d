package prescription

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/patient"
)

var (
	ErrMissingFields    = errors.New("patient_id, medication_name, times_per_day and duration_days are required")
	ErrInvalidQuantity  = errors.New("total_quantity must be a positive number")
	ErrInvalidPatient   = errors.New("invalid patient_id")
	ErrInvalidFirstTime = errors.New(`first_time must be "HH:mm" (24h)`)
)

// UserResolver maps a numeric patient-directory id to the account UUID
// prescriptions are keyed by.
type UserResolver interface {
	ResolveUserID(ctx context.Context, id int) (*uuid.UUID, error)
}

type Service struct {
	repo     Repository
	resolver UserResolver
}

func NewService(repo Repository, resolver UserResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

var hhmmRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

func (s *Service) Create(ctx context.Context, in CreateInput) (*Prescription, *StockAfter, error) {
	name := normSpace(in.MedicationName)
	if in.PatientRef == "" || name == "" || in.TimesPerDay <= 0 || in.DurationDays <= 0 {
		return nil, nil, ErrMissingFields
	}
	if in.TotalQuantity <= 0 {
		return nil, nil, ErrInvalidQuantity
	}

	userID, err := s.resolvePatient(ctx, in.PatientRef)
	if err != nil {
		return nil, nil, err
	}

	rx := Prescription{
		PatientID:      *userID,
		MedicationName: name,
		TimesPerDay:    in.TimesPerDay,
		DurationDays:   in.DurationDays,
		TotalQuantity:  in.TotalQuantity,
		StartDate:      strings.TrimSpace(in.StartDate),
	}
	if instr := strings.TrimSpace(in.Instructions); instr != "" {
		rx.Instructions = &instr
	}

	return s.repo.CreateWithStockDecrement(ctx, rx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*StockAfter, error) {
	return s.repo.DeleteWithStockRestore(ctx, id)
}

// ListByPatient accepts either the numeric directory id or the account
// UUID; an unresolvable reference yields an empty list, not an error.
func (s *Service) ListByPatient(ctx context.Context, patientRef string) ([]Prescription, error) {
	userID, err := s.resolvePatient(ctx, patientRef)
	if err != nil {
		if errors.Is(err, ErrInvalidPatient) {
			return []Prescription{}, nil
		}
		return nil, err
	}
	return s.repo.ListByPatient(ctx, *userID)
}

func (s *Service) SetFirstIntakeTime(ctx context.Context, id uuid.UUID, firstTime string) (*Prescription, error) {
	firstTime = strings.TrimSpace(firstTime)
	if !hhmmRe.MatchString(firstTime) {
		return nil, ErrInvalidFirstTime
	}
	return s.repo.SetFirstIntakeTime(ctx, id, firstTime)
}

func (s *Service) resolvePatient(ctx context.Context, ref string) (*uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if u, err := uuid.Parse(ref); err == nil {
		return &u, nil
	}

	n, err := strconv.Atoi(ref)
	if err != nil {
		return nil, ErrInvalidPatient
	}
	userID, err := s.resolver.ResolveUserID(ctx, n)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, ErrInvalidPatient
		}
		return nil, fmt.Errorf("resolve patient %d: %w", n, err)
	}
	if userID == nil {
		return nil, ErrInvalidPatient
	}
	return userID, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

func normSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
