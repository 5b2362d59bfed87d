package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/logx"
)

const bodyLimit = 1 << 20

// Response statuses used in message bodies.
const (
	statusSuccess = "success"
	statusFailure = "failure"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

// messageResponse is the body of every account and order response.
type messageResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode failed", logx.String("req_id", reqID(r.Context())), logx.Err(err))
	}
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	logger.Warn("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, messageResponse{Status: statusFailure, Message: msg})
}

// writeAppError maps err by kind. Messages for 5xx are generic.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeError(logger, w, r, http.StatusBadRequest, "invalid input")
	case apperr.KindNotFound:
		writeError(logger, w, r, http.StatusNotFound, notFoundMsg)
	case apperr.KindStateConflict:
		writeError(logger, w, r, http.StatusBadRequest, conflictMessage(err))
	case apperr.KindAuth:
		writeError(logger, w, r, http.StatusBadRequest, "invalid password")
	case apperr.KindExternal:
		logger.Error("external dependency failed", logx.String("req_id", reqID(r.Context())), logx.Err(err))
		writeError(logger, w, r, http.StatusBadGateway, "upstream delivery failed")
	default:
		logger.Error("request failed", logx.String("req_id", reqID(r.Context())), logx.Err(err))
		writeError(logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

func conflictMessage(err error) string {
	var sc *apperr.StateConflictError
	if errors.As(err, &sc) {
		return sc.Error()
	}
	return "email or phone already exists"
}

// decodeJSON reads a single JSON object into dst and validates it. It writes
// the 400 response itself and returns false on failure.
func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "len", "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
