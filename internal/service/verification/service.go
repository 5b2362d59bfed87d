package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

const defaultEmailTimeout = 5 * time.Second

// Email texts.
const (
	codeSubject  = "Verification code"
	codeBody     = "Your verification code is: %s"
	resetSubject = "Password reset"
	resetBody    = "Your password has been reset successfully."
)

// Deps are the collaborators of Service.
type Deps struct {
	Store    AccountStore
	Approver Approver
	Mailer   EmailSender
	Codes    CodeGenerator
	Hasher   PasswordHasher
}

// Options tune Service. Zero values fall back to defaults.
type Options struct {
	OperationTimeout time.Duration
	EmailTimeout     time.Duration
	CodesIssued      *prometheus.CounterVec
	Logger           logx.Logger
}

// Service issues, checks and consumes verification codes, and owns the
// surrounding account flows: signup, login and password reset.
type Service struct {
	store    AccountStore
	approver Approver
	mailer   EmailSender
	codes    CodeGenerator
	hasher   PasswordHasher

	operationTimeout time.Duration
	emailTimeout     time.Duration
	codesIssued      *prometheus.CounterVec
	logger           logx.Logger
	newID            func() string
}

// NewService creates a verification Service.
func NewService(d Deps, o Options) *Service {
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = config.DefaultOperationTimeout()
	}
	if o.EmailTimeout <= 0 {
		o.EmailTimeout = defaultEmailTimeout
	}
	if o.Logger == nil {
		o.Logger = logx.Nop()
	}
	if d.Codes == nil {
		d.Codes = RandomCodes{}
	}
	if d.Hasher == nil {
		d.Hasher = BcryptHasher{}
	}
	return &Service{
		store:            d.Store,
		approver:         d.Approver,
		mailer:           d.Mailer,
		codes:            d.Codes,
		hasher:           d.Hasher,
		operationTimeout: o.OperationTimeout,
		emailTimeout:     o.EmailTimeout,
		codesIssued:      o.CodesIssued,
		logger:           o.Logger,
		newID:            uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// storeErr turns an expired store deadline into an external failure.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.External(op, err)
	}
	return err
}

func (s *Service) send(ctx context.Context, op, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.emailTimeout)
	defer cancel()
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn("email not sent",
			logx.String("op", op),
			logx.String("email", to),
			logx.Err(err),
		)
		return apperr.External(op, err)
	}
	return nil
}

func (s *Service) countIssued(kind domain.AccountKind) {
	if s.codesIssued != nil {
		s.codesIssued.WithLabelValues(string(kind)).Inc()
	}
}

// Lookups match email and code exactly as given; only empty values are rejected.
func validateLookup(kind domain.AccountKind, email string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("account kind %q: %w", kind, apperr.ErrInvalid)
	}
	if email == "" {
		return "", fmt.Errorf("email: %w", apperr.ErrInvalid)
	}
	return email, nil
}

func validateCodeLookup(kind domain.AccountKind, email, code string) (string, string, error) {
	email, err := validateLookup(kind, email)
	if err != nil {
		return "", "", err
	}
	if code == "" {
		return "", "", fmt.Errorf("verification code: %w", apperr.ErrInvalid)
	}
	return email, code, nil
}

// IssueCode generates a new code, stores it on the account and emails it.
// The stored code survives an email failure.
func (s *Service) IssueCode(ctx context.Context, ref domain.AccountRef) error {
	return s.issue(ctx, ref, "code_issued")
}

// ResendCode overwrites the account's code with a fresh one and emails it.
// Concurrent resends are last-write-wins.
func (s *Service) ResendCode(ctx context.Context, kind domain.AccountKind, email string) error {
	email, err := validateLookup(kind, email)
	if err != nil {
		return err
	}
	return s.issue(ctx, domain.ByEmail(kind, email), "code_resent")
}

func (s *Service) issue(ctx context.Context, ref domain.AccountRef, event string) error {
	if !ref.Valid() {
		return fmt.Errorf("account reference: %w", apperr.ErrInvalid)
	}
	code, err := s.codes.Generate()
	if err != nil {
		return err
	}

	opCtx, cancel := s.withTimeout(ctx)
	acc, err := s.store.SetCode(opCtx, ref, code)
	cancel()
	if err != nil {
		return storeErr("store verification code", err)
	}
	if acc == nil {
		return fmt.Errorf("%s: %w", ref.Kind, apperr.ErrNotFound)
	}

	s.countIssued(ref.Kind)
	s.logger.Info("verification code issued",
		logx.String("event", event),
		logx.String("kind", string(ref.Kind)),
		logx.String("account_id", acc.ID),
	)

	return s.send(ctx, "send verification code", acc.Email, codeSubject, fmt.Sprintf(codeBody, code))
}

// CheckCode returns the account whose email and code both match. It never
// changes the account.
func (s *Service) CheckCode(ctx context.Context, kind domain.AccountKind, email, code string) (*domain.AccountSnapshot, error) {
	acc, err := s.match(ctx, kind, email, code)
	if err != nil {
		return nil, err
	}
	return acc.Snapshot(), nil
}

// ConsumeCode approves the account whose email and code both match. The code
// stays stored, so a repeated call approves again without error.
func (s *Service) ConsumeCode(ctx context.Context, kind domain.AccountKind, email, code string) error {
	acc, err := s.match(ctx, kind, email, code)
	if err != nil {
		return err
	}
	if err := s.approver.Approve(ctx, domain.ByID(kind, acc.ID)); err != nil {
		return storeErr("approve account", err)
	}
	s.logger.Info("verification code consumed",
		logx.String("event", "code_consumed"),
		logx.String("kind", string(kind)),
		logx.String("account_id", acc.ID),
	)
	return nil
}

func (s *Service) match(ctx context.Context, kind domain.AccountKind, email, code string) (*domain.Account, error) {
	email, code, err := validateCodeLookup(kind, email, code)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	acc, err := s.store.FindByEmailAndCode(ctx, kind, email, code)
	if err != nil {
		return nil, storeErr("find account by code", err)
	}
	if acc == nil {
		return nil, fmt.Errorf("%s with this email and code: %w", kind, apperr.ErrNotFound)
	}
	return acc, nil
}

// ResetPassword stores a new password hash and emails a confirmation.
func (s *Service) ResetPassword(ctx context.Context, kind domain.AccountKind, email, newPassword string) error {
	email, err := validateLookup(kind, email)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("password: %w", apperr.ErrInvalid)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	opCtx, cancel := s.withTimeout(ctx)
	acc, err := s.store.SetPassword(opCtx, domain.ByEmail(kind, email), hash)
	cancel()
	if err != nil {
		return storeErr("store password", err)
	}
	if acc == nil {
		return fmt.Errorf("%s: %w", kind, apperr.ErrNotFound)
	}

	s.logger.Info("password reset",
		logx.String("event", "password_reset"),
		logx.String("kind", string(kind)),
		logx.String("account_id", acc.ID),
	)
	return s.send(ctx, "send password confirmation", acc.Email, resetSubject, resetBody)
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Kind     domain.AccountKind
	Name     string
	Email    string
	Phone    string
	Password string
}

func (in *SignupInput) validate() error {
	if !in.Kind.Valid() {
		return fmt.Errorf("account kind %q: %w", in.Kind, apperr.ErrInvalid)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.Name == "":
		return fmt.Errorf("name: %w", apperr.ErrInvalid)
	case !domain.ValidateEmail(in.Email):
		return fmt.Errorf("email: %w", apperr.ErrInvalid)
	case in.Phone == "":
		return fmt.Errorf("phone: %w", apperr.ErrInvalid)
	case in.Password == "":
		return fmt.Errorf("password: %w", apperr.ErrInvalid)
	}
	return nil
}

// Signup creates an unapproved account carrying a fresh code and emails the
// code. When only the email fails the account exists and the snapshot is
// returned together with an external error.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.AccountSnapshot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := s.codes.Generate()
	if err != nil {
		return nil, err
	}

	acc := &domain.Account{
		ID:               s.newID(),
		Kind:             in.Kind,
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		PasswordHash:     hash,
		VerificationCode: &code,
	}

	opCtx, cancel := s.withTimeout(ctx)
	err = s.store.Create(opCtx, acc)
	cancel()
	if err != nil {
		return nil, storeErr("create account", err)
	}

	s.countIssued(in.Kind)
	s.logger.Info("account created",
		logx.String("event", "account_created"),
		logx.String("kind", string(in.Kind)),
		logx.String("account_id", acc.ID),
	)

	snap := acc.Snapshot()
	if err := s.send(ctx, "send verification code", acc.Email, codeSubject, fmt.Sprintf(codeBody, code)); err != nil {
		return snap, err
	}
	return snap, nil
}

// Login checks the password of the account with email. Approval is not
// required.
func (s *Service) Login(ctx context.Context, kind domain.AccountKind, email, password string) (*domain.AccountSnapshot, error) {
	email, err := validateLookup(kind, email)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := s.withTimeout(ctx)
	acc, err := s.store.Get(opCtx, domain.ByEmail(kind, email))
	cancel()
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if acc == nil {
		return nil, fmt.Errorf("%s: %w", kind, apperr.ErrNotFound)
	}
	if err := s.hasher.Compare(acc.PasswordHash, password); err != nil {
		return nil, err
	}
	return acc.Snapshot(), nil
}
