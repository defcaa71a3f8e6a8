package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"speed-monitor/pkg/models"
)

// DB is the optional Postgres archive of speed test results.
type DB struct {
	*bun.DB
}

func NewDB(dsn string) (*DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	return &DB{db}, nil
}

// InitSchema creates the results table if it doesn't exist
func (db *DB) InitSchema(ctx context.Context) error {
	_, err := db.NewCreateTable().
		Model((*models.SpeedTestRecord)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	return nil
}

func (db *DB) InsertResult(ctx context.Context, record *models.SpeedTestRecord) error {
	_, err := db.NewInsert().
		Model(record).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("error inserting result: %v", err)
	}

	return nil
}

// RecentResults returns the newest results first.
func (db *DB) RecentResults(ctx context.Context, limit int) ([]models.SpeedTestRecord, error) {
	var records []models.SpeedTestRecord
	err := db.NewSelect().
		Model(&records).
		Order("time DESC").
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("error getting recent results: %v", err)
	}

	return records, nil
}
