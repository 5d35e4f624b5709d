package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

const appointmentColumns = `id, patient_id, patient_name, reason, date::text, time::text, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientName,
		&a.Reason,
		&a.Date,
		&a.Time,
		&a.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Interface methods

func (r *PgRepository) ListAppointments(ctx context.Context, start, end string) ([]Appointment, error) {
	var (
		where []string
		args  []any
	)
	if start != "" {
		args = append(args, start)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if end != "" {
		args = append(args, end)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}

	sql := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY date ASC, time ASC"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) HasConflict(ctx context.Context, date, slotTime string, excludeID *uuid.UUID) (bool, error) {
	var found int
	var err error
	if excludeID != nil {
		err = r.pool.QueryRow(ctx, `
			SELECT 1 FROM appointments WHERE date = $1 AND time = $2 AND id <> $3 LIMIT 1
		`, date, slotTime, *excludeID).Scan(&found)
	} else {
		err = r.pool.QueryRow(ctx, `
			SELECT 1 FROM appointments WHERE date = $1 AND time = $2 LIMIT 1
		`, date, slotTime).Scan(&found)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgRepository) InsertAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, patient_name, reason, date, time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+appointmentColumns+`
	`, id, a.PatientID, a.PatientName, a.Reason, a.Date, a.Time, a.Status)

	created, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, patch AppointmentPatch, lastVisit *LastVisitUpdate) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		sets []string
		args []any
	)
	push := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.PatientName != nil {
		push("patient_name", nullIfEmpty(*patch.PatientName))
	}
	if patch.Date != nil {
		push("date", *patch.Date)
	}
	if patch.Time != nil {
		push("time", *patch.Time)
	}
	if patch.Reason != nil {
		push("reason", nullIfEmpty(*patch.Reason))
	}
	if patch.Status != nil {
		push("status", *patch.Status)
	}
	if patch.PatientID != nil {
		push("patient_id", *patch.PatientID)
	}

	if len(sets) == 0 && lastVisit == nil {
		return r.GetAppointment(ctx, id)
	}

	var updated *Appointment
	if len(sets) > 0 {
		args = append(args, id)
		sql := fmt.Sprintf(`
			UPDATE appointments
			SET %s
			WHERE id = $%d
			RETURNING `+appointmentColumns,
			strings.Join(sets, ", "), len(args))

		updated, err = scanAppointment(tx.QueryRow(ctx, sql, args...))
	} else {
		updated, err = scanAppointment(tx.QueryRow(ctx, `
			SELECT `+appointmentColumns+` FROM appointments WHERE id = $1
		`, id))
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	if lastVisit != nil {
		_, err = tx.Exec(ctx, `
			UPDATE patients SET last_visit = $1 WHERE id = $2
		`, lastVisit.Date, lastVisit.PatientID)
		if err != nil {
			return nil, fmt.Errorf("update last visit: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT time::text FROM appointments WHERE date = $1 ORDER BY time ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *PgRepository) CountsByDate(ctx context.Context, start, end string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date::text, COUNT(*)::int
		FROM appointments
		WHERE date BETWEEN $1 AND $2
		GROUP BY date
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var ds string
		var n int
		if err := rows.Scan(&ds, &n); err != nil {
			return nil, err
		}
		counts[ds] = n
	}
	return counts, rows.Err()
}

func (r *PgRepository) GetOverride(ctx context.Context, date string) (*DayOverride, error) {
	var o DayOverride
	err := r.pool.QueryRow(ctx, `
		SELECT date::text, is_closed, open_hour, close_hour
		FROM day_overrides
		WHERE date = $1
	`, date).Scan(&o.Date, &o.IsClosed, &o.OpenHour, &o.CloseHour)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PgRepository) ListOverrides(ctx context.Context, start, end string) ([]DayOverride, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date::text, is_closed, open_hour, close_hour
		FROM day_overrides
		WHERE date BETWEEN $1 AND $2
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DayOverride
	for rows.Next() {
		var o DayOverride
		if err := rows.Scan(&o.Date, &o.IsClosed, &o.OpenHour, &o.CloseHour); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *PgRepository) SetClosed(ctx context.Context, date string, closed bool) error {
	if closed {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO day_overrides (date, is_closed)
			VALUES ($1, true)
			ON CONFLICT (date) DO UPDATE SET is_closed = EXCLUDED.is_closed
		`, date)
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM day_overrides WHERE date = $1`, date)
	return err
}

func (r *PgRepository) ResolvePatientName(ctx context.Context, numericID int) (string, error) {
	var name *string
	err := r.pool.QueryRow(ctx, `
		SELECT NULLIF(TRIM(CONCAT(first_name, ' ', last_name)), '')
		FROM patients
		WHERE id = $1
		LIMIT 1
	`, numericID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if name == nil {
		return "", nil
	}
	return *name, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO schedule_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert schedule event: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
