package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
)

const accountColumns = `id, name, email, phone, password_hash, verification_code, approved, created_at, updated_at`

// AccountRepo stores customers and couriers, one table per kind.
type AccountRepo struct{ db *pgxpool.Pool }

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(db *pgxpool.Pool) *AccountRepo { return &AccountRepo{db: db} }

func table(kind domain.AccountKind) (string, error) {
	t := kind.Collection()
	if t == "" {
		return "", fmt.Errorf("account kind %q: %w", kind, apperr.ErrInvalid)
	}
	return t, nil
}

// refClause returns the WHERE fragment for ref with its argument in $1.
func refClause(ref domain.AccountRef) (string, any) {
	if ref.ID != "" {
		return "id = $1", ref.ID
	}
	return "email = $1", ref.Email
}

func scanAccount(row pgx.Row, kind domain.AccountKind) (*domain.Account, error) {
	a := domain.Account{Kind: kind}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash,
		&a.VerificationCode, &a.Approved, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Get - returns the account addressed by ref or nil when absent.
func (r *AccountRepo) Get(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	t, err := table(ref.Kind)
	if err != nil {
		return nil, err
	}
	where, arg := refClause(ref)
	a, err := scanAccount(r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, accountColumns, t, where), arg), ref.Kind)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", ref.Kind, err)
	}
	return a, nil
}

// FindByEmailAndCode - returns the account whose email and stored code both
// match, or nil.
func (r *AccountRepo) FindByEmailAndCode(ctx context.Context, kind domain.AccountKind, email, code string) (*domain.Account, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	a, err := scanAccount(r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1 AND verification_code = $2`, accountColumns, t),
		email, code), kind)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s by code: %w", kind, err)
	}
	return a, nil
}

// Create - inserts a new account. Duplicate email or phone yields apperr.ErrConflict.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	t, err := table(a.Kind)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (id, name, email, phone, password_hash, verification_code, approved)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE)
        RETURNING created_at, updated_at
    `, t), a.ID, a.Name, a.Email, a.Phone, a.PasswordHash, a.VerificationCode,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if IsDuplicate(err) {
			if col := duplicateColumn(err); col != "" {
				return fmt.Errorf("%s %s already taken: %w", a.Kind, col, apperr.ErrConflict)
			}
			return fmt.Errorf("%s %q: %w", a.Kind, a.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("create %s: %w", a.Kind, err)
	}
	a.Approved = false
	return nil
}

// SetCode - overwrites the verification code and returns the updated account,
// or nil when no account matches ref.
func (r *AccountRepo) SetCode(ctx context.Context, ref domain.AccountRef, code string) (*domain.Account, error) {
	t, err := table(ref.Kind)
	if err != nil {
		return nil, err
	}
	where, arg := refClause(ref)
	a, err := scanAccount(r.db.QueryRow(ctx, fmt.Sprintf(`
        UPDATE %s SET verification_code = $2, updated_at = now()
        WHERE %s
        RETURNING %s
    `, t, where, accountColumns), arg, code), ref.Kind)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("set %s code: %w", ref.Kind, err)
	}
	return a, nil
}

// SetPassword - replaces the password hash and returns the updated account,
// or nil when no account matches.
func (r *AccountRepo) SetPassword(ctx context.Context, ref domain.AccountRef, hash string) (*domain.Account, error) {
	t, err := table(ref.Kind)
	if err != nil {
		return nil, err
	}
	where, arg := refClause(ref)
	a, err := scanAccount(r.db.QueryRow(ctx, fmt.Sprintf(`
        UPDATE %s SET password_hash = $2, updated_at = now()
        WHERE %s
        RETURNING %s
    `, t, where, accountColumns), arg, hash), ref.Kind)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("set %s password: %w", ref.Kind, err)
	}
	return a, nil
}

// Approve - marks the account approved. It reports false when no account
// matches. Approving twice is not an error.
func (r *AccountRepo) Approve(ctx context.Context, ref domain.AccountRef) (bool, error) {
	t, err := table(ref.Kind)
	if err != nil {
		return false, err
	}
	where, arg := refClause(ref)
	ct, err := r.db.Exec(ctx, fmt.Sprintf(`
        UPDATE %s SET approved = TRUE, updated_at = now()
        WHERE %s
    `, t, where), arg)
	if err != nil {
		return false, fmt.Errorf("approve %s: %w", ref.Kind, err)
	}
	return ct.RowsAffected() > 0, nil
}
