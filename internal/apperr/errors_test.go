package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"service-shop-delivery/internal/apperr"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"invalid", fmt.Errorf("email: %w", apperr.ErrInvalid), apperr.KindValidation},
		{"not found", fmt.Errorf("order %q: %w", "O1", apperr.ErrNotFound), apperr.KindNotFound},
		{"state conflict", &apperr.StateConflictError{Entity: "Order", Actual: 1, Expected: 2}, apperr.KindStateConflict},
		{"auth", apperr.ErrAuth, apperr.KindAuth},
		{"external", apperr.External("send email", errors.New("smtp down")), apperr.KindExternal},
		{"unknown", errors.New("boom"), apperr.KindInternal},
		{"nil", nil, apperr.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apperr.KindOf(tc.err))
		})
	}
}

func TestStateConflictError_MessageAndUnwrap(t *testing.T) {
	t.Parallel()

	err := error(&apperr.StateConflictError{Entity: "Order", ID: "O1", Actual: 1, Expected: 2})

	require.Equal(t, "Order found but status is 1, expected status 2", err.Error())
	require.ErrorIs(t, err, apperr.ErrConflict)

	var sc *apperr.StateConflictError
	require.ErrorAs(t, fmt.Errorf("approve: %w", err), &sc)
	require.Equal(t, 1, sc.Actual)
}

func TestExternalError_MatchesSentinelAndCause(t *testing.T) {
	t.Parallel()

	err := apperr.External("broadcast services", context.DeadlineExceeded)

	require.ErrorIs(t, err, apperr.ErrExternal)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "broadcast services")
	require.NoError(t, apperr.External("noop", nil))
}
