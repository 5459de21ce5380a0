package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrPackageNotFound     = errors.New("package not found")
	ErrTokenNotFound       = errors.New("token not found for user")

	ErrTeamExists        = errors.New("team name already exists")
	ErrEmailTaken        = errors.New("email already registered")
	ErrApplicationExists = errors.New("application name already exists")
	ErrGroupExists       = errors.New("group name already exists")

	ErrGroupInUse = errors.New("group has applications assigned")
)

// TeamNotFoundError is returned by application listing when the owning team
// is missing.
type TeamNotFoundError struct {
	TeamID int64
}

func (e *TeamNotFoundError) Error() string {
	return fmt.Sprintf("team %d does not exist", e.TeamID)
}

func (e *TeamNotFoundError) Is(target error) bool {
	return target == ErrTeamNotFound
}

// NoMatchError reports a search that matched nothing.
type NoMatchError struct {
	Entity string
	Search string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no %s found for '%s'", e.Entity, e.Search)
}

type AlreadyAssignedError struct {
	ApplicationID int64
	GroupID       int64
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("application %d already assigned to group %d", e.ApplicationID, e.GroupID)
}

type NotAssignedError struct {
	ApplicationID int64
	GroupID       int64
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("application %d not assigned to group %d", e.ApplicationID, e.GroupID)
}

// Store handles all database operations
type Store struct {
	db *sqlx.DB
}

// New creates a new store instance
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func now() time.Time {
	return time.Now().UTC()
}

// exists reports whether any row of table matches where.
func (s *Store) exists(ctx context.Context, table, where string, args ...any) (bool, error) {
	var ok bool
	q := s.db.Rebind(fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", table, where))
	if err := s.db.GetContext(ctx, &ok, q, args...); err != nil {
		return false, fmt.Errorf("exists %s: %w", table, err)
	}
	return ok, nil
}

// insert runs an INSERT statement and returns the generated id.
func (s *Store) insert(ctx context.Context, q string, args ...any) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(q+" RETURNING id"), args...).Scan(&id)
	return id, err
}

// update runs a statement and returns the number of affected rows.
func (s *Store) update(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// get loads a single row into dest, translating sql.ErrNoRows into notFound.
func (s *Store) get(ctx context.Context, dest any, notFound error, q string, args ...any) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(q), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

func (s *Store) list(ctx context.Context, dest any, q string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(q), args...)
}

// isUniqueViolation recognises unique constraint failures from every
// supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func likePattern(search string) string {
	return "%" + search + "%"
}
