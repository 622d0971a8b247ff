// Package handler translates HTTP requests into service calls and domain
// results back into the JSON envelope every endpoint shares.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/auth"
	"github.com/arefin/memotube/internal/model"
)

// apiVersion is reported in every response envelope.
const apiVersion = "1.0"

// Machine-readable error codes. Clients branch on these, never on messages.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeAuthFailed   = "AUTHENTICATION_FAILED"
	codeTokenExpired = "TOKEN_EXPIRED"
	codeNotFound     = "RESOURCE_NOT_FOUND"
	codeAccessDenied = "ACCESS_DENIED"
	codeDuplicate    = "DUPLICATE_RESOURCE"
	codeInternal     = "INTERNAL_ERROR"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    meta `json:"meta"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
	Meta    meta      `json:"meta"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type meta struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// listPayload wraps a page of items with its pagination block.
type listPayload struct {
	Items      any              `json:"items"`
	Pagination model.Pagination `json:"pagination"`
}

// tokenPayload is the body of every endpoint that issues tokens.
type tokenPayload struct {
	User   *model.User     `json:"user,omitempty"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func newMeta(r *http.Request) meta {
	m := meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   apiVersion,
	}
	if r != nil {
		m.RequestID = chimiddleware.GetReqID(r.Context())
	}
	return m
}

// writeData sends a success envelope. Headers must be set before the body
// goes out; WriteHeader flushes them.
func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := successEnvelope{Success: true, Data: data, Meta: newMeta(r)}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error onto the error envelope. The service layer
// knows nothing about status codes; all translation lives here.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := codeInternal
	message := "an unexpected error occurred"
	var details any

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && !errors.Is(err, apperror.ErrInternal) {
		message = appErr.Message
		if appErr.Field != "" {
			details = map[string]string{"field": appErr.Field}
		}
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusUnprocessableEntity
		code = codeValidation
	case errors.Is(err, apperror.ErrTokenExpired), errors.Is(err, auth.ErrTokenExpired):
		status = http.StatusUnauthorized
		code = codeTokenExpired
		if message == "an unexpected error occurred" {
			message = "token has expired"
		}
	case errors.Is(err, apperror.ErrUnauthenticated), errors.Is(err, auth.ErrTokenInvalid):
		status = http.StatusUnauthorized
		code = codeAuthFailed
		if message == "an unexpected error occurred" {
			message = "authentication required"
		}
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		code = codeAccessDenied
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		code = codeNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		code = codeDuplicate
	default:
		// Internal errors never leak their cause to the client.
		slog.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := errorEnvelope{
		Success: false,
		Error:   errorBody{Code: code, Message: message, Details: details},
		Meta:    newMeta(r),
	}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}

// ErrorWriter adapts writeError to the signature the auth middleware wants.
func ErrorWriter() auth.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, err)
	}
}

// decodeBody parses a JSON request body into dst, rejecting unknown fields
// so typos surface as errors instead of silently-ignored input.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}
	return nil
}
