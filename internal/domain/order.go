package domain

import (
	"strconv"
	"time"
)

// OrderStatus is the integer-coded fulfillment stage of an order.
type OrderStatus int

// Known order statuses. Values above StatusApproved belong to later stages
// and are carried through unchanged.
const (
	StatusCreated          OrderStatus = 1
	StatusPaymentConfirmed OrderStatus = 2
	StatusApproved         OrderStatus = 3
)

func (s OrderStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusPaymentConfirmed:
		return "payment_confirmed"
	case StatusApproved:
		return "approved"
	default:
		return "status_" + strconv.Itoa(int(s))
	}
}

// Valid reports whether s is a positive status code.
func (s OrderStatus) Valid() bool { return s >= StatusCreated }

// CanApprove reports whether a courier may approve an order in status s.
func (s OrderStatus) CanApprove() bool { return s == StatusPaymentConfirmed }

// RequiresCourier reports whether an order in status s must carry a courier.
func (s OrderStatus) RequiresCourier() bool { return s >= StatusApproved }

// Order is the slice of an order owned by this service.
type Order struct {
	ID         string
	Status     OrderStatus
	CustomerID string
	CourierID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Consistent checks that a courier is assigned iff the status requires it.
func (o *Order) Consistent() bool {
	return (o.CourierID != nil) == o.Status.RequiresCourier()
}
