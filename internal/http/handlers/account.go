package handlers

import (
	"fmt"
	"net/http"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/service/verification"
)

// AccountHandler serves the signup, login and verification code routes of
// one account kind.
type AccountHandler struct {
	usecase accountUsecase
	logger  logx.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(logger logx.Logger, uc accountUsecase) *AccountHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AccountHandler{usecase: uc, logger: logger}
}

// Signup handles POST /{kind}/signup.
func (h *AccountHandler) Signup(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		snap, err := h.usecase.Signup(r.Context(), verification.SignupInput{
			Kind:     kind,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
		})
		switch {
		case err == nil:
			writeJSON(h.logger, w, r, http.StatusCreated, messageResponse{
				Status:  statusSuccess,
				Message: "Account created successfully",
				Data:    snap,
			})
		case snap != nil && apperr.KindOf(err) == apperr.KindExternal:
			h.logger.Error("signup email failed", logx.String("account_id", snap.ID), logx.Err(err))
			writeJSON(h.logger, w, r, http.StatusBadGateway, messageResponse{
				Status:  statusFailure,
				Message: "Account created but the verification email could not be sent",
				Data:    snap,
			})
		default:
			writeAppError(h.logger, w, r, err, "account not found")
		}
	}
}

// Login handles POST /{kind}/login.
func (h *AccountHandler) Login(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		snap, err := h.usecase.Login(r.Context(), kind, req.Email, req.Password)
		if err != nil {
			writeAppError(h.logger, w, r, err, "account not found")
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, loginResponse{Message: "Login successful", Account: snap})
	}
}

// VerifyCode handles POST /{kind}/verifycode. A matching code approves the
// account.
func (h *AccountHandler) VerifyCode(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		err := h.usecase.ConsumeCode(r.Context(), kind, req.Email, req.VerifyCode)
		if err == nil {
			writeJSON(h.logger, w, r, http.StatusOK, messageResponse{
				Status:  statusSuccess,
				Message: "Account verified successfully.",
			})
			return
		}
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindValidation:
			writeError(h.logger, w, r, http.StatusBadRequest, "Incorrect email or verification code.")
		default:
			writeAppError(h.logger, w, r, err, "")
		}
	}
}

// CheckEmail handles POST /{kind}/checkemail. It issues a code to an
// existing account.
func (h *AccountHandler) CheckEmail(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		if err := h.usecase.IssueCode(r.Context(), domain.ByEmail(kind, req.Email)); err != nil {
			writeAppError(h.logger, w, r, err, fmt.Sprintf("account with email %s not found", req.Email))
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, messageResponse{Message: "Verification code sent to email"})
	}
}

// CheckVerifyCode handles POST /{kind}/checkverifycode. It never changes
// the account.
func (h *AccountHandler) CheckVerifyCode(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		snap, err := h.usecase.CheckCode(r.Context(), kind, req.Email, req.VerifyCode)
		if err != nil {
			writeAppError(h.logger, w, r, err, "Incorrect verification code or invalid email")
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, messageResponse{Message: "Verification successful", Data: snap})
	}
}

// Resend handles POST /{kind}/resend.
func (h *AccountHandler) Resend(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		if err := h.usecase.ResendCode(r.Context(), kind, req.Email); err != nil {
			writeAppError(h.logger, w, r, err, "account not found")
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, messageResponse{Message: "Verification code resent successfully"})
	}
}

// ResetPassword handles POST /{kind}/resetpassword.
func (h *AccountHandler) ResetPassword(kind domain.AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if !decodeJSON(h.logger, w, r, &req) {
			return
		}

		if err := h.usecase.ResetPassword(r.Context(), kind, req.Email, req.NewPassword); err != nil {
			writeAppError(h.logger, w, r, err, "account not found")
			return
		}
		writeJSON(h.logger, w, r, http.StatusOK, messageResponse{Message: "Password reset successfully"})
	}
}
