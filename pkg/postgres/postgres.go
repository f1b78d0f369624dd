package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/ticketbooker/config"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"dbname": cfg.DBName,
	}).Info("Successfully connected to PostgreSQL")
	return db, nil
}

// Migrations is the schema, applied in order. Every statement is idempotent.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS ticket_categories (
		ticket_category_id SERIAL PRIMARY KEY,
		category_name VARCHAR(100) UNIQUE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		ticket_code VARCHAR(20) PRIMARY KEY,
		ticket_name VARCHAR(255) NOT NULL,
		ticket_category_id INTEGER NOT NULL REFERENCES ticket_categories(ticket_category_id),
		price INTEGER NOT NULL CHECK (price >= 0),
		event_date TIMESTAMPTZ NOT NULL,
		quota INTEGER NOT NULL CHECK (quota >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS booked_tickets (
		booked_ticket_id BIGSERIAL PRIMARY KEY,
		total_price BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS booked_ticket_details (
		booked_ticket_detail_id BIGSERIAL PRIMARY KEY,
		booked_ticket_id BIGINT NOT NULL REFERENCES booked_tickets(booked_ticket_id) ON DELETE CASCADE,
		ticket_code VARCHAR(20) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		subtotal_price BIGINT NOT NULL,
		UNIQUE (booked_ticket_id, ticket_code)
	)`,

	// widen money columns of schemas created with INTEGER
	`ALTER TABLE booked_tickets ALTER COLUMN total_price TYPE BIGINT`,
	`ALTER TABLE booked_ticket_details ALTER COLUMN subtotal_price TYPE BIGINT`,

	// Indexes
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_code_upper ON tickets (UPPER(ticket_code))`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_event_date ON tickets(event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_booked_ticket_details_booking ON booked_ticket_details(booked_ticket_id)`,
	`CREATE INDEX IF NOT EXISTS idx_booked_tickets_created_at ON booked_tickets(created_at)`,
}

func RunMigrations(db *sql.DB) error {
	for i, migration := range Migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i, err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
