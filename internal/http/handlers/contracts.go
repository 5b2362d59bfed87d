package handlers

import (
	"context"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/service/orders"
	"service-shop-delivery/internal/service/verification"
)

type accountUsecase interface {
	Signup(ctx context.Context, in verification.SignupInput) (*domain.AccountSnapshot, error)
	Login(ctx context.Context, kind domain.AccountKind, email, password string) (*domain.AccountSnapshot, error)
	IssueCode(ctx context.Context, ref domain.AccountRef) error
	ResendCode(ctx context.Context, kind domain.AccountKind, email string) error
	CheckCode(ctx context.Context, kind domain.AccountKind, email, code string) (*domain.AccountSnapshot, error)
	ConsumeCode(ctx context.Context, kind domain.AccountKind, email, code string) error
	ResetPassword(ctx context.Context, kind domain.AccountKind, email, newPassword string) error
}

// NewAccountUsecase wires a verification Service into an accountUsecase.
func NewAccountUsecase(svc *verification.Service) accountUsecase {
	return svc
}

type orderUsecase interface {
	ApproveOrder(ctx context.Context, orderID, customerID, courierID string) error
}

// NewOrderUsecase wires an orders StateMachine into an orderUsecase.
func NewOrderUsecase(m *orders.StateMachine) orderUsecase {
	return m
}
