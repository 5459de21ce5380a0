package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MediSynth-io/updateservice/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// driverFor maps a configured database type to its sql driver and SQL dialect.
func driverFor(dbType string) (driver, dialect string, err error) {
	switch dbType {
	case "sqlite", "":
		return "sqlite3", DialectSQLite, nil
	case "postgres":
		return "postgres", DialectPostgres, nil
	case "pgx":
		return "pgx", DialectPostgres, nil
	default:
		return "", "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Dialect returns the SQL dialect spoken by db.
func Dialect(db *sqlx.DB) string {
	if db.DriverName() == "sqlite3" {
		return DialectSQLite
	}
	return DialectPostgres
}

// Open connects to the configured database, retrying on failure, and applies
// pending migrations.
func Open(ctx context.Context, cfg config.Database, lg *zap.SugaredLogger) (*sqlx.DB, error) {
	driver, dialect, err := driverFor(cfg.Type)
	if err != nil {
		return nil, err
	}

	dsn, err := dataSource(cfg, dialect)
	if err != nil {
		return nil, err
	}

	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var db *sqlx.DB
	var lastErr error
	for i := 0; i < retries; i++ {
		db, lastErr = connect(ctx, driver, dsn)
		if lastErr == nil {
			break
		}
		lg.Warnw("database connection attempt failed",
			"attempt", i+1,
			"max", retries,
			"error", lastErr,
		)
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries, lastErr)
	}

	if dialect == DialectSQLite {
		// SQLite only supports one writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := RunMigrations(ctx, db, lg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	lg.Infow("database initialized", "type", cfg.Type, "driver", driver)
	return db, nil
}

func connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func dataSource(cfg config.Database, dialect string) (string, error) {
	if dialect == DialectPostgres {
		if cfg.DSN == "" {
			return "", fmt.Errorf("database dsn is required for %s", cfg.Type)
		}
		return cfg.DSN, nil
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", cfg.Path), nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, db *sqlx.DB) error {
	var one int
	return db.QueryRowxContext(ctx, "SELECT 1").Scan(&one)
}
