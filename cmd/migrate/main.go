package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/Saurabhrajput1234/BookMySeat/internal/auth"
	"github.com/Saurabhrajput1234/BookMySeat/internal/config"
	"github.com/Saurabhrajput1234/BookMySeat/internal/database/migrations"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	seed := flag.Bool("seed", false, "insert sample data after migrating")
	dir := flag.String("dir", "./migrations", "directory containing migration files")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, *dir, log)
	defer runner.Close()

	if *down {
		if err := runner.Down(); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
		log.Info("MIGRATE", "All migrations rolled back")
		return
	}

	if err := runner.Up(); err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", "Migrations applied")

	if *seed {
		if err := seedData(context.Background(), bunDB); err != nil {
			log.Fatal("MIGRATE", fmt.Sprintf("Seeding failed: %v", err))
		}
		log.Info("MIGRATE", "Sample data seeded")
	}
}

// seedData inserts a demo admin, one event and a small seat map. Intended
// for local development only.
func seedData(ctx context.Context, db *bun.DB) error {
	adminHash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:          "Admin",
		Email:         "admin@bookmyseat.local",
		PasswordHash:  adminHash,
		Role:          models.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	if _, err := db.NewInsert().Model(admin).On("CONFLICT (email) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	event := &models.Event{
		Name:        "Go Conference 2026",
		Description: "Two days of talks and workshops.",
		Date:        time.Now().AddDate(0, 1, 0),
		Location:    "Berlin",
		Price:       49.50,
	}
	if _, err := db.NewInsert().Model(event).Exec(ctx); err != nil {
		return err
	}

	var seats []models.Seat
	for _, row := range []string{"A", "B", "C"} {
		for number := 1; number <= 10; number++ {
			seats = append(seats, models.Seat{
				EventID: event.ID,
				Row:     row,
				Number:  number,
			})
		}
	}
	if _, err := db.NewInsert().Model(&seats).Exec(ctx); err != nil {
		return err
	}
	return nil
}
