package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-scheduling/internal/db"
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

	clinicIDs, err := seedClinics(context.Background(), pool, 5)
	if err != nil {
		log.Fatalf("seed clinics: %v", err)
	}
	if err := seedStaff(context.Background(), pool, clinicIDs, 4); err != nil {
		log.Fatalf("seed staff: %v", err)
	}
	if err := seedProfessionals(context.Background(), pool, clinicIDs, 10); err != nil {
		log.Fatalf("seed professionals: %v", err)
	}
	if err := seedPatients(context.Background(), pool, clinicIDs, 200); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedClinics(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d clinics", count)

	plans := []string{"active", "active", "active", "trial", "expired"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO clinics (id, name, plan_status, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, gofakeit.Company()+" Clinic", plans[i%len(plans)])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedStaff(ctx context.Context, pool *pgxpool.Pool, clinicIDs []uuid.UUID, perClinic int) error {
	log.Printf("seeding %d staff users per clinic", perClinic)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, clinicID := range clinicIDs {
		for i := 0; i < perClinic; i++ {
			role := "receptionist"
			if i == 0 {
				role = "admin"
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO staff_users (id, clinic_id, name, email, role, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, uuid.New(), clinicID, gofakeit.Name(), gofakeit.Email(), role)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, clinicIDs []uuid.UUID, perClinic int) error {
	log.Printf("seeding %d professionals per clinic", perClinic)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, clinicID := range clinicIDs {
		for i := 0; i < perClinic; i++ {
			spec := specialties[gofakeit.Number(0, len(specialties)-1)]
			startHour := gofakeit.Number(7, 10)
			endHour := gofakeit.Number(16, 20)

			_, err := tx.Exec(ctx, `
				INSERT INTO professionals
					(id, clinic_id, name, specialty, start_weekday, end_weekday, start_minutes, end_minutes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			`, uuid.New(), clinicID, "Dr. "+gofakeit.Name(), spec,
				int(time.Monday), int(time.Friday), startHour*60, endHour*60)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, clinicIDs []uuid.UUID, perClinic int) error {
	log.Printf("seeding %d patients per clinic", perClinic)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, clinicID := range clinicIDs {
		for i := 0; i < perClinic; i++ {
			email := gofakeit.Email()
			phone := gofakeit.Phone()
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, clinic_id, name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, uuid.New(), clinicID, gofakeit.Name(), email, phone)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
