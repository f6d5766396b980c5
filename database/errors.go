package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsDuplicateKey reports a unique index violation, either as gorm's
// translated sentinel or as the raw Postgres error.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// DuplicateColumn names the column behind a Postgres unique violation, or
// returns "". Gorm names indexes idx_<table>_<column>.
func DuplicateColumn(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return ""
	}
	parts := strings.SplitN(pgErr.ConstraintName, "_", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return pgErr.ConstraintName
}
