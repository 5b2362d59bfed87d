package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"service-shop-delivery/internal/apperr"
	testlog "service-shop-delivery/internal/testutil"
)

type stubOrderUsecase struct {
	approveFn func(ctx context.Context, orderID, customerID, courierID string) error
}

func (s *stubOrderUsecase) ApproveOrder(ctx context.Context, orderID, customerID, courierID string) error {
	if s.approveFn == nil {
		panic("ApproveOrder not expected in this test")
	}
	return s.approveFn(ctx, orderID, customerID, courierID)
}

const approveBody = `{"orders_id":"O1","users_id":"U1","delivery_id":"D1"}`

func TestOrderHandler_Approve_OK(t *testing.T) {
	t.Parallel()

	uc := &stubOrderUsecase{approveFn: func(_ context.Context, orderID, customerID, courierID string) error {
		require.Equal(t, "O1", orderID)
		require.Equal(t, "U1", customerID)
		require.Equal(t, "D1", courierID)
		return nil
	}}
	rr := post(NewOrderHandler(nil, uc).Approve, "/delivery/approve", approveBody)

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"Order approved and notifications sent."}`, rr.Body.String())
}

func TestOrderHandler_Approve_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "not found",
			body:     approveBody,
			err:      fmt.Errorf("order O1: %w", apperr.ErrNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "Order not found",
		},
		{
			name:     "wrong status",
			body:     approveBody,
			err:      fmt.Errorf("approve: %w", &apperr.StateConflictError{Entity: "Order", ID: "O1", Actual: 1, Expected: 2}),
			wantCode: http.StatusBadRequest,
			wantMsg:  "Order found but status is 1, expected status 2",
		},
		{
			name:     "already approved",
			body:     approveBody,
			err:      &apperr.StateConflictError{Entity: "Order", ID: "O1", Actual: 3, Expected: 2},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Order found but status is 3, expected status 2",
		},
		{
			name:     "notify failed after commit",
			body:     approveBody,
			err:      fmt.Errorf("order O1 approved: %w", apperr.External("broadcast delivery", errors.New("broker down"))),
			wantCode: http.StatusBadGateway,
			wantMsg:  "order approved but notification delivery failed",
		},
		{
			name:     "store failure",
			body:     approveBody,
			err:      errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal error",
		},
		{
			name:     "missing courier",
			body:     `{"orders_id":"O1","users_id":"U1"}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "delivery_id is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := testlog.New()
			uc := &stubOrderUsecase{approveFn: func(context.Context, string, string, string) error { return tc.err }}
			rr := post(NewOrderHandler(rec.Logger(), uc).Approve, "/delivery/approve", tc.body)

			require.Equal(t, tc.wantCode, rr.Code)
			require.JSONEq(t, fmt.Sprintf(`{"status":"failure","message":%q}`, tc.wantMsg), rr.Body.String())
		})
	}
}
