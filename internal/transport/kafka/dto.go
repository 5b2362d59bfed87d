package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/service/orders"
)

// EventDTO is the wire form of an order event.
type EventDTO struct {
	OrderID    string    `json:"order_id"`
	Status     StatusDTO `json:"status"`
	CustomerID string    `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusDTO accepts either the numeric status code or its name.
type StatusDTO domain.OrderStatus

var statusByName = map[string]domain.OrderStatus{
	"created":           domain.StatusCreated,
	"payment_confirmed": domain.StatusPaymentConfirmed,
	"approved":          domain.StatusApproved,
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StatusDTO) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = StatusDTO(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	str = strings.ToLower(strings.TrimSpace(str))
	if n, err := strconv.Atoi(str); err == nil {
		*s = StatusDTO(n)
		return nil
	}
	st, ok := statusByName[str]
	if !ok {
		return fmt.Errorf("status: unknown value %q", str)
	}
	*s = StatusDTO(st)
	return nil
}

// ToDomain converts EventDTO to orders.Event
func ToDomain(dto EventDTO) orders.Event {
	return orders.Event{
		OrderID:    strings.TrimSpace(dto.OrderID),
		Status:     domain.OrderStatus(dto.Status),
		CustomerID: strings.TrimSpace(dto.CustomerID),
		CreatedAt:  dto.CreatedAt,
	}
}
