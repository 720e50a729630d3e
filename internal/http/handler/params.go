package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/bazar-universal-api/internal/http/response"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
	"github.com/sandeepkv93/bazar-universal-api/internal/repository"
	"github.com/sandeepkv93/bazar-universal-api/internal/service"
)

const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeTooLarge   = "PAYLOAD_TOO_LARGE"
	codeInternal   = "INTERNAL"
)

// parsePathID accepts positive decimal ids only.
func parsePathID(input string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", input)
	}
	return uint(n), nil
}

// pathParam returns a decoded chi URL parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func queryInt(r *http.Request, key string, def, minValue, maxValue int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if v < minValue || v > maxValue {
		return 0, fmt.Errorf("%s must be between %d and %d", key, minValue, maxValue)
	}
	return v, nil
}

func parseWindow(r *http.Request) (repository.Window, error) {
	skip, err := queryInt(r, "skip", 0, 0, math.MaxInt32)
	if err != nil {
		return repository.Window{}, err
	}
	limit, err := queryInt(r, "limit", repository.DefaultLimit, 1, repository.MaxLimit)
	if err != nil {
		return repository.Window{}, err
	}
	return repository.Window{Skip: skip, Limit: limit}, nil
}

func parseSearchPage(r *http.Request) (repository.PageRequest, error) {
	page, err := queryInt(r, "page", repository.DefaultPage, 1, math.MaxInt32)
	if err != nil {
		return repository.PageRequest{}, err
	}
	perPage, err := queryInt(r, "per_page", repository.DefaultPerPage, 1, repository.MaxPerPage)
	if err != nil {
		return repository.PageRequest{}, err
	}
	return repository.PageRequest{Page: page, PerPage: perPage}, nil
}

// decodeJSON writes the error response itself and reports whether the
// handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var maxBytesErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytesErr):
		observability.RecordMiddlewareValidationEvent(r.Context(), "body_limit", "rejected")
		response.Error(w, r, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large", nil)
	case errors.Is(err, io.EOF):
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "request body is required", nil)
	case errors.As(err, &typeErr):
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid field type",
			map[string]string{"field": typeErr.Field, "expected": typeErr.Type.String()})
	default:
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, "invalid JSON body", nil)
	}
	return false
}

// writeServiceError maps service and repository errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case service.IsValidationError(err):
		response.Error(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
	case errors.Is(err, repository.ErrProductNotFound), errors.Is(err, repository.ErrSaleProductNotFound):
		response.Error(w, r, http.StatusNotFound, codeNotFound, "Product not found", nil)
	case errors.Is(err, repository.ErrSaleNotFound):
		response.Error(w, r, http.StatusNotFound, codeNotFound, "Sale not found", nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "action", action, "error", err, "request_id", response.RequestID(r))
		response.Error(w, r, http.StatusInternalServerError, codeInternal, "failed to "+action, nil)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
