// Package httputil holds the JSON request/response helpers every handler uses.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string `json:"error"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"error_description"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and writes it.
// Internal errors never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		de = dErrors.Wrap(err, dErrors.CodeInternal, "internal server error")
	}
	status := StatusFor(de.Code)
	desc := de.Message
	if status == http.StatusInternalServerError {
		desc = "internal server error"
	}
	WriteJSON(w, status, ErrorResponse{
		Error:       string(de.Code),
		Reason:      de.Reason,
		Description: desc,
	})
}

// Fail logs a failed request and writes the error. Client errors are logged
// at warn, everything that maps to a 5xx at error.
func Fail(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"reason", dErrors.ReasonOf(err),
		"error", err.Error(),
	)
	WriteError(w, err)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeWindowClosed:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// URLParamUUID parses a chi path parameter as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is required", name))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be a UUID", name))
	}
	return id, nil
}

// QueryUUID parses an optional query parameter as a UUID. ok is false when absent.
func QueryUUID(r *http.Request, name string) (id uuid.UUID, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err = uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be a UUID", name))
	}
	return id, true, nil
}

// RequireQueryUUID is QueryUUID for mandatory parameters.
func RequireQueryUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, ok, err := QueryUUID(r, name)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is required", name))
	}
	return id, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, name string) (value bool, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be a boolean", name))
	}
	return value, true, nil
}
