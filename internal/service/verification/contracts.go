//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=verification_test

package verification

import (
	"context"

	"service-shop-delivery/internal/domain"
)

// AccountStore is the account storage the service works against.
type AccountStore interface {
	Get(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	FindByEmailAndCode(ctx context.Context, kind domain.AccountKind, email, code string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	SetCode(ctx context.Context, ref domain.AccountRef, code string) (*domain.Account, error)
	SetPassword(ctx context.Context, ref domain.AccountRef, hash string) (*domain.Account, error)
}

// Approver approves an account once its code is consumed.
type Approver interface {
	Approve(ctx context.Context, ref domain.AccountRef) error
}

// EmailSender delivers a plain-text email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// CodeGenerator produces verification codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
