package recordstore

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Standardized errors returned by Store operations. PostgreSQL and MySQL
// driver errors are mapped onto these by TranslateError.
var (
	// ErrUnknownDriver is returned for a Config.Driver other than postgres or mysql
	ErrUnknownDriver = errors.New("unknown record store driver")

	// ErrStoreClosed is returned when the store has been closed
	ErrStoreClosed = errors.New("record store closed")

	// ErrConnectionFailed is returned when database connection cannot be established
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrConnectionLost is returned when database connection is lost
	ErrConnectionLost = errors.New("connection lost")

	// ErrDuplicateKey is returned when an insert violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrTableNotFound is returned when the records table does not exist
	ErrTableNotFound = errors.New("table not found")

	// ErrColumnNotFound is returned when the table layout is out of date
	ErrColumnNotFound = errors.New("column not found")

	// ErrDataTooLong is returned when a value exceeds its column length
	ErrDataTooLong = errors.New("data too long for column")

	// ErrPermissionDenied is returned when the user lacks necessary permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTooManyConnections is returned when the server refuses new connections
	ErrTooManyConnections = errors.New("too many connections")

	// ErrQueryTimeout is returned when a statement exceeds its timeout
	ErrQueryTimeout = errors.New("query timeout exceeded")

	// ErrDiskFull is returned when database storage is full
	ErrDiskFull = errors.New("disk full")

	// ErrInvalidData is returned when gorm rejects the rows
	ErrInvalidData = errors.New("invalid data")
)

// TranslateError converts gorm and driver errors into the package errors.
// Errors that match nothing are returned unchanged.
func (s *Store) TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrEmptySlice),
		errors.Is(err, gorm.ErrInvalidValue):
		return ErrInvalidData
	case errors.Is(err, gorm.ErrInvalidField):
		return ErrColumnNotFound
	case errors.Is(err, gorm.ErrInvalidValueOfLength):
		return ErrDataTooLong
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePostgreSQLError(pgErr)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return translateMySQLError(mysqlErr)
	}

	return translateByErrorMessage(strings.ToLower(err.Error()), err)
}

func translatePostgreSQLError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case "08000", "08001", "08004":
		return ErrConnectionFailed
	case "08003", "08006":
		return ErrConnectionLost
	case "23505":
		return ErrDuplicateKey
	case "22001":
		return ErrDataTooLong
	case "42P01":
		return ErrTableNotFound
	case "42703":
		return ErrColumnNotFound
	case "42501":
		return ErrPermissionDenied
	case "53100":
		return ErrDiskFull
	case "53300":
		return ErrTooManyConnections
	case "57014":
		return ErrQueryTimeout
	default:
		return pgErr
	}
}

func translateMySQLError(mysqlErr *mysql.MySQLError) error {
	switch mysqlErr.Number {
	case 1062, 1586: // ER_DUP_ENTRY, ER_DUP_ENTRY_WITH_KEY_NAME
		return ErrDuplicateKey
	case 1146: // ER_NO_SUCH_TABLE
		return ErrTableNotFound
	case 1054: // ER_BAD_FIELD_ERROR
		return ErrColumnNotFound
	case 1406: // ER_DATA_TOO_LONG
		return ErrDataTooLong
	case 1044, 1045, 1142: // access denied variants
		return ErrPermissionDenied
	case 1040: // ER_CON_COUNT_ERROR
		return ErrTooManyConnections
	case 2002, 2003: // CR_CONNECTION_ERROR, CR_CONN_HOST_ERROR
		return ErrConnectionFailed
	case 2006, 2013: // CR_SERVER_GONE_ERROR, CR_SERVER_LOST
		return ErrConnectionLost
	case 1021: // ER_DISK_FULL
		return ErrDiskFull
	case 1969, 3024: // statement timeouts
		return ErrQueryTimeout
	default:
		return mysqlErr
	}
}

func translateByErrorMessage(errMsg string, originalErr error) error {
	switch {
	case strings.Contains(errMsg, "connection refused"),
		strings.Contains(errMsg, "failed to connect"):
		return ErrConnectionFailed
	case strings.Contains(errMsg, "connection reset"),
		strings.Contains(errMsg, "broken pipe"),
		strings.Contains(errMsg, "bad connection"):
		return ErrConnectionLost
	case strings.Contains(errMsg, "context deadline exceeded"),
		strings.Contains(errMsg, "timeout"):
		return ErrQueryTimeout
	case strings.Contains(errMsg, "database is closed"):
		return ErrStoreClosed
	default:
		return originalErr
	}
}

// IsRetryableError reports whether writing the same batch again may succeed.
func (s *Store) IsRetryableError(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionLost),
		errors.Is(err, ErrTooManyConnections),
		errors.Is(err, ErrQueryTimeout):
		return true
	default:
		return false
	}
}
