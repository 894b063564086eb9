package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/pkg/writequeue"

	sqlite "github.com/glebarez/go-sqlite"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrorKind groups storage failures by how the caller should react.
type ErrorKind string

const (
	KindBusy       ErrorKind = "busy"
	KindTimeout    ErrorKind = "timeout"
	KindConstraint ErrorKind = "constraint"
	KindIO         ErrorKind = "io"
	KindCorrupt    ErrorKind = "corrupt"
	KindClosed     ErrorKind = "closed"
	KindCanceled   ErrorKind = "canceled"
	KindUnknown    ErrorKind = "unknown"
)

// StorageError is returned for every failure that did not originate as a
// domain error. Retryable tells the caller whether running the same operation
// again can succeed without changing its input.
type StorageError struct {
	Op        string
	Kind      ErrorKind
	Retryable bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s storage error: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, domain.ErrConstraint) match constraint failures.
func (e *StorageError) Is(target error) bool {
	return target == domain.ErrConstraint && e.Kind == KindConstraint
}

// IsRetryable reports whether err is a StorageError marked retryable.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable
}

// classify wraps err in a StorageError. Domain errors and already classified
// errors pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}

	kind, retryable := kindOf(err)
	return &StorageError{Op: op, Kind: kind, Retryable: retryable, Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled, false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, writequeue.ErrWriteTimeout):
		return KindTimeout, true
	case errors.Is(err, writequeue.ErrWriteQueueFull):
		return KindBusy, true
	case errors.Is(err, writequeue.ErrWriteQueueClosed), errors.Is(err, sql.ErrConnDone):
		return KindClosed, false
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return KindConstraint, false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return KindBusy, true
		case sqlite3.SQLITE_CONSTRAINT:
			return KindConstraint, false
		case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_READONLY:
			return KindIO, false
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return KindCorrupt, false
		}
		return KindUnknown, false
	}

	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213: // lock wait timeout, deadlock
			return KindBusy, true
		case 1062, 1451, 1452:
			return KindConstraint, false
		}
		return KindUnknown, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization failure, deadlock, lock not available
			return KindBusy, true
		case "23505", "23503":
			return KindConstraint, false
		case "53100":
			return KindIO, false
		case "XX001", "XX002":
			return KindCorrupt, false
		}
		return KindUnknown, false
	}

	return KindUnknown, false
}
