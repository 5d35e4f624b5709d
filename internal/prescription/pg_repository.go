package prescription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const rxColumns = `id, patient_id, medication_name, times_per_day, duration_days,
	total_quantity, start_date::text, instructions, first_intake_time::text, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	err := row.Scan(
		&rx.ID,
		&rx.PatientID,
		&rx.MedicationName,
		&rx.TimesPerDay,
		&rx.DurationDays,
		&rx.TotalQuantity,
		&rx.StartDate,
		&rx.Instructions,
		&rx.FirstIntakeTime,
		&rx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	return &rx, nil
}

type stockRow struct {
	ID             int
	MedicineName   string
	Quantity       int
	ExpirationDate *string
}

// findStockForMedication matches the inventory row the way the clinic
// staff name medicines: exact case-insensitive first, then the first
// word of the medication as a substring, shortest name wins.
func findStockForMedication(ctx context.Context, tx pgx.Tx, name string) (*stockRow, error) {
	var row stockRow
	err := tx.QueryRow(ctx, `
		SELECT id, medicine_name, quantity, expiration_date::text
		FROM stock_inventory
		WHERE LOWER(medicine_name) = LOWER($1)
		LIMIT 1
		FOR UPDATE
	`, name).Scan(&row.ID, &row.MedicineName, &row.Quantity, &row.ExpirationDate)
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	token := strings.SplitN(name, " ", 2)[0]
	if token == "" {
		return nil, nil
	}
	err = tx.QueryRow(ctx, `
		SELECT id, medicine_name, quantity, expiration_date::text
		FROM stock_inventory
		WHERE medicine_name ILIKE $1
		ORDER BY LENGTH(medicine_name) ASC
		LIMIT 1
		FOR UPDATE
	`, "%"+token+"%").Scan(&row.ID, &row.MedicineName, &row.Quantity, &row.ExpirationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *PgRepository) CreateWithStockDecrement(ctx context.Context, rx Prescription) (*Prescription, *StockAfter, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	stock, err := findStockForMedication(ctx, tx, rx.MedicationName)
	if err != nil {
		return nil, nil, fmt.Errorf("find stock: %w", err)
	}
	if stock == nil {
		return nil, nil, &UnknownMedicineError{Name: rx.MedicationName}
	}
	if rx.TotalQuantity > stock.Quantity {
		return nil, nil, &InsufficientStockError{
			Name:      stock.MedicineName,
			Requested: rx.TotalQuantity,
			Available: stock.Quantity,
		}
	}

	var after StockAfter
	err = tx.QueryRow(ctx, `
		UPDATE stock_inventory
		SET quantity = quantity - $2, last_updated = NOW()
		WHERE id = $1
		RETURNING id, medicine_name, quantity, expiration_date::text
	`, stock.ID, rx.TotalQuantity).Scan(&after.ID, &after.MedicineName, &after.Quantity, &after.ExpirationDate)
	if err != nil {
		return nil, nil, fmt.Errorf("decrement stock: %w", err)
	}

	id := rx.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created, err := scanPrescription(tx.QueryRow(ctx, `
		INSERT INTO prescriptions
			(id, patient_id, medication_name, times_per_day, duration_days,
			 total_quantity, start_date, instructions, first_intake_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::date, CURRENT_DATE), $8, NULL, NOW())
		RETURNING `+rxColumns,
		id, rx.PatientID, rx.MedicationName, rx.TimesPerDay, rx.DurationDays,
		rx.TotalQuantity, nullIfEmpty(rx.StartDate), rx.Instructions))
	if err != nil {
		return nil, nil, fmt.Errorf("insert prescription: %w", err)
	}

	// Audit row; losing it must not fail the prescription.
	_, _ = tx.Exec(ctx, `
		INSERT INTO stock_movements (stock_id, medicine_name, change_qty, reason, ref_table, ref_id)
		VALUES ($1, $2, $3, 'prescription', 'prescriptions', $4)
	`, after.ID, after.MedicineName, -rx.TotalQuantity, created.ID)

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return created, &after, nil
}

func (r *PgRepository) DeleteWithStockRestore(ctx context.Context, id uuid.UUID) (*StockAfter, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var medication string
	var qty int
	err = tx.QueryRow(ctx, `
		SELECT medication_name, total_quantity
		FROM prescriptions
		WHERE id = $1
		LIMIT 1
	`, id).Scan(&medication, &qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	var after *StockAfter
	var restored StockAfter
	err = tx.QueryRow(ctx, `
		UPDATE stock_inventory
		SET quantity = quantity + $2, last_updated = NOW()
		WHERE LOWER(medicine_name) = LOWER($1)
		RETURNING id, medicine_name, quantity, expiration_date::text
	`, medication, qty).Scan(&restored.ID, &restored.MedicineName, &restored.Quantity, &restored.ExpirationDate)
	switch {
	case err == nil:
		after = &restored
		_, _ = tx.Exec(ctx, `
			INSERT INTO stock_movements (stock_id, medicine_name, change_qty, reason, ref_table, ref_id)
			VALUES ($1, $2, $3, 'rx-delete-return', 'prescriptions', $4)
		`, restored.ID, restored.MedicineName, qty, id)
	case errors.Is(err, pgx.ErrNoRows):
		// Stock row was removed since issuing; nothing to return to.
	default:
		return nil, fmt.Errorf("restore stock: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete prescription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return after, nil
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+rxColumns+`
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Prescription
	for rows.Next() {
		rx, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rx)
	}
	return result, rows.Err()
}

func (r *PgRepository) SetFirstIntakeTime(ctx context.Context, id uuid.UUID, hhmm string) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx, `
		UPDATE prescriptions
		SET first_intake_time = $2
		WHERE id = $1
		RETURNING `+rxColumns,
		id, hhmm))
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
