package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsDuplicateAndColumn(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		dup  bool
		col  string
	}{
		{"email", &pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"}, true, "email"},
		{"phone wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "couriers_phone_key"}), true, "phone"},
		{"primary key", &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"}, true, ""},
		{"other code", &pgconn.PgError{Code: "23514", ConstraintName: "customers_email_key"}, false, ""},
		{"plain", errors.New("boom"), false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.dup, IsDuplicate(tc.err))
			require.Equal(t, tc.col, duplicateColumn(tc.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	require.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	require.False(t, IsNotFound(errors.New("boom")))
}
