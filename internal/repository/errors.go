package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// IsDuplicate reports whether err is a unique violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == uniqueViolation
}

// IsNotFound reports whether a single-row query matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// duplicateColumn returns the column behind a unique violation on an
// account table ("email", "phone"), or "" when it cannot tell.
func duplicateColumn(err error) string {
	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) || pgerr.Code != uniqueViolation {
		return ""
	}
	name := strings.TrimSuffix(pgerr.ConstraintName, "_key")
	if i := strings.LastIndexByte(name, '_'); i >= 0 && i < len(name)-1 && name != pgerr.ConstraintName {
		return name[i+1:]
	}
	return ""
}
