package patient

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

const patientColumns = `id, first_name, middle_name, last_name, email, phone,
	birthdate::text, sex, building_no, street, barangay, city,
	last_visit::text, user_id, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.MiddleName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.Birthdate,
		&p.Sex,
		&p.BuildingNo,
		&p.Street,
		&p.Barangay,
		&p.City,
		&p.LastVisit,
		&p.UserID,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) List(ctx context.Context, nameFilter string) ([]Summary, error) {
	where := ""
	var args []any
	if strings.TrimSpace(nameFilter) != "" {
		args = append(args, "%"+strings.TrimSpace(nameFilter)+"%")
		where = `WHERE CONCAT_WS(' ', first_name, middle_name, last_name) ILIKE $1`
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, first_name, middle_name, last_name, email, phone,
		       EXTRACT(YEAR FROM age(CURRENT_DATE, birthdate))::int,
		       last_visit::text
		FROM patients
		%s
		ORDER BY id ASC
	`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Summary
	for rows.Next() {
		var s Summary
		var email, phone *string
		if err := rows.Scan(&s.ID, &s.FirstName, &s.MiddleName, &s.LastName, &email, &phone, &s.Age, &s.LastVisit); err != nil {
			return nil, err
		}
		if email != nil {
			s.Email = *email
		}
		if phone != nil {
			s.Phone = *phone
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetByID(ctx context.Context, id int) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

func (r *PgRepository) Insert(ctx context.Context, p Patient) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients
			(first_name, middle_name, last_name, email, phone, birthdate, sex,
			 building_no, street, barangay, city, last_visit, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		p.FirstName, p.MiddleName, p.LastName, p.Email, p.Phone, p.Birthdate, p.Sex,
		p.BuildingNo, p.Street, p.Barangay, p.City, p.LastVisit, p.UserID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PgRepository) Update(ctx context.Context, id int, in UpdateInput) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients SET
			first_name  = COALESCE($1, first_name),
			middle_name = COALESCE($2, middle_name),
			last_name   = COALESCE($3, last_name),
			email       = COALESCE($4, email),
			phone       = COALESCE($5, phone),
			birthdate   = COALESCE($6::date, birthdate),
			sex         = COALESCE($7, sex),
			building_no = COALESCE($8, building_no),
			street      = COALESCE($9, street),
			barangay    = COALESCE($10, barangay),
			city        = COALESCE($11, city),
			last_visit  = COALESCE($12::date, last_visit)
		WHERE id = $13
		RETURNING `+patientColumns,
		in.FirstName, in.MiddleName, in.LastName, in.Email, in.Phone, in.Birthdate,
		in.Sex, in.BuildingNo, in.Street, in.Barangay, in.City, in.LastVisit, id,
	)
	return scanPatient(row)
}

func (r *PgRepository) Delete(ctx context.Context, id int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) ResolveUserID(ctx context.Context, id int) (*uuid.UUID, error) {
	var userID *uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM patients WHERE id = $1 LIMIT 1`, id).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return userID, nil
}
