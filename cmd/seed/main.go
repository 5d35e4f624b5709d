package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedPatients(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedStock(context.Background(), pool); err != nil {
		log.Fatalf("seed stock: %v", err)
	}

	log.Println("seed complete")
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			birth := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
			).Format("2006-01-02")
			sex := "Male"
			if gofakeit.Bool() {
				sex = "Female"
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (first_name, middle_name, last_name, email, phone,
					birthdate, sex, building_no, street, barangay, city, user_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
			`,
				strings.ToLower(gofakeit.FirstName()),
				strings.ToLower(gofakeit.LastName()),
				strings.ToLower(gofakeit.LastName()),
				gofakeit.Email(),
				gofakeit.Phone(),
				birth,
				sex,
				gofakeit.StreetNumber(),
				gofakeit.Street(),
				gofakeit.City(),
				"Quezon City",
				uuid.New(),
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	return nil
}

func seedStock(ctx context.Context, pool *pgxpool.Pool) error {
	medicines := []string{
		"Paracetamol 500mg",
		"Amoxicillin 500mg",
		"Cetirizine 10mg",
		"Ibuprofen 200mg",
		"Losartan 50mg",
		"Metformin 500mg",
		"Salbutamol Inhaler",
		"Omeprazole 20mg",
		"Mefenamic Acid 250mg",
		"Loperamide 2mg",
	}

	log.Printf("seeding %d stock items", len(medicines))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, name := range medicines {
		expiry := gofakeit.DateRange(
			time.Now().AddDate(0, -2, 0),
			time.Now().AddDate(2, 0, 0),
		).Format("2006-01-02")

		_, err := tx.Exec(ctx, `
			INSERT INTO stock_inventory (medicine_name, quantity, expiration_date, last_updated)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (medicine_name) DO NOTHING
		`, name, gofakeit.Number(20, 500), expiry)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("stock seeded")
	return nil
}
