package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IsUniqueViolation reports a unique-key collision from either driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsTransient reports failures that may succeed when retried: lost or
// refused connections, pool exhaustion, timeouts and serialization aborts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"):
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "57P01":
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// TranslateError maps a repository error onto the application taxonomy.
// AppErrors pass through untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return internal.NewNotFoundError("record not found", internal.ErrCodeRecordNotFound)
	case IsUniqueViolation(err):
		return internal.NewConstraintError("", "value already exists").WithCause(err)
	case IsTransient(err):
		return internal.NewTransientError("database temporarily unavailable, retry later", err)
	default:
		return internal.NewInternalError("unexpected database error", err)
	}
}
