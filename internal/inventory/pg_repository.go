package inventory

import (
	"context"
	"errors"
	"fmt"

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

const itemColumns = `id, medicine_name, quantity, expiration_date::text, last_updated`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.MedicineName, &it.Quantity, &it.ExpirationDate, &it.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateMedicine
	}
	return err
}

func (r *PgRepository) List(ctx context.Context, search string, order SortOrder) ([]Item, error) {
	if order != OrderDesc {
		order = OrderAsc
	}

	var rows pgx.Rows
	var err error
	if search != "" {
		rows, err = r.pool.Query(ctx, fmt.Sprintf(`
			SELECT `+itemColumns+`
			FROM stock_inventory
			WHERE medicine_name ILIKE $1
			ORDER BY medicine_name %s
		`, order), "%"+search+"%")
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+itemColumns+`
			FROM stock_inventory
			ORDER BY id ASC
		`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetByID(ctx context.Context, id int) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM stock_inventory WHERE id = $1 LIMIT 1
	`, id))
}

func (r *PgRepository) FindByName(ctx context.Context, name string) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM stock_inventory
		WHERE LOWER(medicine_name) = LOWER($1)
		LIMIT 1
	`, name))
}

func (r *PgRepository) Insert(ctx context.Context, name string, qty int, expiration *string) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `
		INSERT INTO stock_inventory (medicine_name, quantity, expiration_date)
		VALUES ($1, $2, $3)
		RETURNING `+itemColumns,
		name, qty, expiration))
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return it, nil
}

func (r *PgRepository) SetQuantity(ctx context.Context, id, qty int, expiration *string) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
		UPDATE stock_inventory
		SET quantity = $2,
		    expiration_date = COALESCE($3::date, expiration_date),
		    last_updated = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, qty, expiration))
}

func (r *PgRepository) AddQuantity(ctx context.Context, id, delta int, expiration *string) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `
		UPDATE stock_inventory
		SET quantity = quantity + $2,
		    expiration_date = COALESCE($3::date, expiration_date),
		    last_updated = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, delta, expiration))
}

func (r *PgRepository) Update(ctx context.Context, id int, in UpdateInput) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, `
		UPDATE stock_inventory
		SET medicine_name   = COALESCE($2, medicine_name),
		    quantity        = COALESCE($3, quantity),
		    expiration_date = COALESCE($4::date, expiration_date),
		    last_updated    = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, in.MedicineName, in.Quantity, in.ExpirationDate))
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return it, nil
}

func (r *PgRepository) Delete(ctx context.Context, id int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stock_inventory WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) FindExpiredLots(ctx context.Context, before string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM stock_inventory
		WHERE expiration_date IS NOT NULL
		  AND expiration_date < $1
		  AND quantity > 0
		ORDER BY expiration_date ASC
	`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	return result, rows.Err()
}

func (r *PgRepository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stock_movements (stock_id, medicine_name, change_qty, reason, ref_table, ref_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.StockID, m.MedicineName, m.ChangeQty, m.Reason, m.RefTable, m.RefID)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}
