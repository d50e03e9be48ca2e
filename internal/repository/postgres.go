package repository

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
)

// PostgreSQL error codes the service distinguishes.
const (
	pgUniqueViolation   = "23505"
	pgUndefinedTable    = "42P01"
	pgInsufficientPrivs = "42501"
	pgConnectionFailure = "08006"
	pgCannotConnectNow  = "57P03"
)

// Open connects to PostgreSQL and applies the pool settings.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.Info("Connected to database", logging.Fields{
		"host": cfg.Host,
		"name": cfg.Name,
	})
	return db, nil
}

// classify wraps a driver error into a StorageError so callers can branch on
// the failure kind without knowing PostgreSQL codes.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	se := &errors.StorageError{Code: errors.StorageUnknown, Op: op, Err: err}

	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr):
		se.Constraint = pqErr.Constraint
		switch pqErr.Code {
		case pgUniqueViolation:
			se.Code = errors.StorageDuplicate
		case pgUndefinedTable:
			se.Code = errors.StorageMissingTable
		case pgInsufficientPrivs:
			se.Code = errors.StoragePermissionDenied
		case pgConnectionFailure, pgCannotConnectNow:
			se.Code = errors.StorageUnavailable
		}
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		se.Code = errors.StorageUnavailable
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			se.Code = errors.StorageUnavailable
		}
	}
	return se
}
