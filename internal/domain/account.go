package domain

import (
	"regexp"
	"strings"
	"time"
)

// AccountKind tells which collection an account lives in.
type AccountKind string

// Account kinds.
const (
	KindCustomer AccountKind = "customer"
	KindCourier  AccountKind = "courier"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	return k == KindCustomer || k == KindCourier
}

// Collection returns the table/collection name that stores accounts of kind k.
func (k AccountKind) Collection() string {
	switch k {
	case KindCustomer:
		return "customers"
	case KindCourier:
		return "couriers"
	default:
		return ""
	}
}

// Account is a customer or courier account.
type Account struct {
	ID               string
	Kind             AccountKind
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	VerificationCode *string
	Approved         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Snapshot returns a copy of the account without the password hash.
func (a *Account) Snapshot() *AccountSnapshot {
	if a == nil {
		return nil
	}
	return &AccountSnapshot{
		ID:        a.ID,
		Kind:      a.Kind,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Approved:  a.Approved,
		CreatedAt: a.CreatedAt,
	}
}

// AccountSnapshot is the externally visible view of an account.
type AccountSnapshot struct {
	ID        string      `json:"id"`
	Kind      AccountKind `json:"kind"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Approved  bool        `json:"approved"`
	CreatedAt time.Time   `json:"created_at"`
}

// AccountRef addresses a single account. ID takes precedence over Email.
type AccountRef struct {
	Kind  AccountKind
	ID    string
	Email string
}

// ByID builds a reference by account id.
func ByID(kind AccountKind, id string) AccountRef {
	return AccountRef{Kind: kind, ID: id}
}

// ByEmail builds a reference by email.
func ByEmail(kind AccountKind, email string) AccountRef {
	return AccountRef{Kind: kind, Email: email}
}

// Valid reports whether the reference can address an account.
func (r AccountRef) Valid() bool {
	return r.Kind.Valid() && (strings.TrimSpace(r.ID) != "" || strings.TrimSpace(r.Email) != "")
}

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// ValidateEmail does a cheap shape check on an email address.
func ValidateEmail(s string) bool {
	return reEmail.MatchString(s)
}
