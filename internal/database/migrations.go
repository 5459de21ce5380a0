package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all database migrations for the dialect.
func GetMigrations(dialect string) []Migration {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "DATETIME"
	if dialect == DialectPostgres {
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMP WITH TIME ZONE"
	}

	return []Migration{
		{
			Version:     1,
			Description: "Create teams table",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS teams (
				id %[1]s,
				name VARCHAR(255) UNIQUE NOT NULL,
				description VARCHAR(255),
				created_at %[2]s NOT NULL,
				updated_at %[2]s NOT NULL
			)`, id, ts),
		},
		{
			Version:     2,
			Description: "Create users table",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
				id %[1]s,
				email VARCHAR(255) UNIQUE NOT NULL,
				full_name VARCHAR(255) NOT NULL,
				created_at %[2]s NOT NULL,
				updated_at %[2]s NOT NULL,
				last_login %[2]s
			);
			CREATE INDEX IF NOT EXISTS idx_users_full_name ON users(full_name)`, id, ts),
		},
		{
			Version:     3,
			Description: "Create tokens table",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tokens (
				id %[1]s,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT NOT NULL,
				jti VARCHAR(64) UNIQUE NOT NULL,
				deleted BOOLEAN NOT NULL DEFAULT FALSE,
				created_at %[2]s NOT NULL,
				updated_at %[2]s NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id)`, id, ts),
		},
		{
			Version:     4,
			Description: "Create applications table",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS applications (
				id %[1]s,
				team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
				name VARCHAR(255) UNIQUE NOT NULL,
				description VARCHAR(255),
				created_at %[2]s NOT NULL,
				updated_at %[2]s NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_applications_team_id ON applications(team_id)`, id, ts),
		},
		{
			Version:     5,
			Description: "Create rollout groups and application links",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rollout_groups (
				id %[1]s,
				name VARCHAR(255) UNIQUE NOT NULL,
				created_at %[2]s NOT NULL,
				updated_at %[2]s NOT NULL
			);
			CREATE TABLE IF NOT EXISTS application_groups (
				id %[1]s,
				application_id BIGINT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
				group_id BIGINT NOT NULL REFERENCES rollout_groups(id),
				UNIQUE (application_id, group_id)
			)`, id, ts),
		},
		{
			Version:     6,
			Description: "Create packages table",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS packages (
				id %[1]s,
				application_id BIGINT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
				version VARCHAR(255) NOT NULL,
				description VARCHAR(255),
				file VARCHAR(255),
				url VARCHAR(255) UNIQUE,
				hash VARCHAR(64),
				size BIGINT,
				created_at %[2]s NOT NULL,
				updated_at %[2]s NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_packages_application_id ON packages(application_id)`, id, ts),
		},
		{
			Version:     7,
			Description: "Create backups table",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS backups (
				id %[1]s,
				package_id BIGINT UNIQUE NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
				backup_path TEXT NOT NULL,
				created_at %[2]s NOT NULL
			)`, id, ts),
		},
	}
}

func createMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description VARCHAR(255) NOT NULL DEFAULT ''
	)`)
	return err
}

// getAppliedMigrations returns the set of applied migration versions
func getAppliedMigrations(ctx context.Context, db *sqlx.DB) (map[int]bool, error) {
	var versions []int
	if err := db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations"); err != nil {
		return nil, err
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// RunMigrations applies every pending migration, each in its own transaction.
func RunMigrations(ctx context.Context, db *sqlx.DB, lg *zap.SugaredLogger) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range GetMigrations(Dialect(db)) {
		if applied[m.Version] {
			continue
		}

		lg.Infow("applying migration", "version", m.Version, "description", m.Description)
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Split SQL by semicolon and execute each statement
	for _, stmt := range strings.Split(m.SQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO schema_migrations (version, description) VALUES (?, ?)"),
		m.Version, m.Description,
	); err != nil {
		return err
	}
	return tx.Commit()
}
