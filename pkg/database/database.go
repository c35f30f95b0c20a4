package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is the subset of a pgx connection needed to apply the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func NewPool(ctx context.Context, dsn string, maxConns int32, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected", slog.Int("max_conns", int(config.MaxConns)))

	return pool, nil
}

// Migrate creates the schema if it does not exist. Every statement is idempotent.
func Migrate(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS licenses (
		id UUID PRIMARY KEY,
		license_key VARCHAR(64) NOT NULL UNIQUE,
		company_name VARCHAR(255) NOT NULL,
		contact_email VARCHAR(255),
		contact_phone VARCHAR(50),
		status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'suspended', 'expired')),
		expires_at TIMESTAMPTZ NOT NULL,
		days_remaining INTEGER NOT NULL DEFAULT 0,
		max_devices INTEGER NOT NULL DEFAULT 1 CHECK (max_devices >= 1),
		notes TEXT,
		last_check TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE RESTRICT,
		hardware_id VARCHAR(255) NOT NULL UNIQUE,
		pc_name VARCHAR(255) NOT NULL DEFAULT '',
		os_info VARCHAR(255) NOT NULL DEFAULT '',
		app_version VARCHAR(50) NOT NULL DEFAULT '',
		last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_online BOOLEAN NOT NULL DEFAULT FALSE,
		total_receipts INTEGER NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_license ON devices(license_id)`,
	`CREATE TABLE IF NOT EXISTS session_logs (
		id UUID PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
		pc_name VARCHAR(255) NOT NULL DEFAULT '',
		session_start TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		session_end TIMESTAMPTZ,
		status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'ended')),
		receipt_count INTEGER NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_logs_device ON session_logs(device_id, session_start)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		id UUID PRIMARY KEY,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
		company_name VARCHAR(255) NOT NULL DEFAULT '',
		receipt_no VARCHAR(100) NOT NULL DEFAULT '',
		amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		vat_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		vat_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		cashier VARCHAR(255) NOT NULL DEFAULT '',
		template VARCHAR(100) NOT NULL DEFAULT '',
		date_printed DATE NOT NULL DEFAULT CURRENT_DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_device_created ON receipts(device_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_date ON receipts(date_printed)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
		stat_date DATE NOT NULL,
		total_receipts INTEGER NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_vat NUMERIC(14,2) NOT NULL DEFAULT 0,
		PRIMARY KEY (device_id, stat_date)
	)`,
	`CREATE TABLE IF NOT EXISTS company_stats (
		license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
		company_name VARCHAR(255) NOT NULL,
		total_receipts INTEGER NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_vat NUMERIC(14,2) NOT NULL DEFAULT 0,
		last_receipt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (license_id, company_name)
	)`,
	`CREATE TABLE IF NOT EXISTS detailed_activity_logs (
		id UUID PRIMARY KEY,
		license_id UUID NOT NULL REFERENCES licenses(id) ON DELETE CASCADE,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		session_id UUID REFERENCES session_logs(id) ON DELETE SET NULL,
		action VARCHAR(50) NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		amount NUMERIC(14,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_created ON detailed_activity_logs(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id UUID PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'admin',
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
