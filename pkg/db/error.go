package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	// PostgreSQL through a non-pgx driver
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		return true
	}
	// MySQL 1062
	if strings.Contains(msg, "Error 1062") {
		return true
	}
	// SQLite 2067
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsSQLite reports whether the handle talks to sqlite, where row locks are not supported.
func IsSQLite(db *gorm.DB) bool {
	return db != nil && db.Dialector != nil && db.Dialector.Name() == "sqlite"
}

// ForUpdate appends a row lock clause when the dialect supports it.
func ForUpdate(db *gorm.DB, query string) string {
	if IsSQLite(db) {
		return query
	}
	return query + " FOR UPDATE"
}
