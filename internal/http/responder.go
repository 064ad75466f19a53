package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/http/apierr"
	"github.com/polybooks/polybooks/pkg/validator"
)

// responder bundles the request decoding and response writing helpers shared
// by all handlers.
type responder struct {
	logger   *slog.Logger
	validate validator.Validator
}

// decode reads the JSON request body into dst and validates it.
func (res *responder) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("decode request body: %w", err))
	}

	if err := res.validate.Validate(dst); err != nil {
		return fmt.Errorf("validate request body: %w", err)
	}

	return nil
}

func (res *responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		res.logger.ErrorContext(r.Context(), "Failed to encode response body", slog.Any("error", err))
	}
}

func (res *responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errResp := apierr.New(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		res.logger.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
	}

	res.writeJSON(w, r, errResp.StatusCode, errResp)
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(fmt.Errorf("parse %s: %w", name, err))
	}

	return id, nil
}

// queryInt parses an optional integer query parameter, falling back to def
// when absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return v
}
