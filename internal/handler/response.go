package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/service"
	"go.uber.org/zap"
)

const maxBodySize = 64 * 1024

// envelope is the body of every response; code mirrors the HTTP status.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: http.StatusOK, Message: "success", Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Code: status, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeFailure(w, http.StatusBadRequest, message)
}

func writeOrderError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, service.ErrOrderInvalidInput):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderNotFound):
		writeFailure(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrOrderConflict):
		writeFailure(w, http.StatusConflict, "order was changed concurrently, reload and retry")
	case errors.Is(err, service.ErrOrderInvalidState):
		writeFailure(w, http.StatusConflict, err.Error())
	default:
		logger.Error("order request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	err := decodeJSON(r, dest)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func pathOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("order id %q is not a valid UUID", raw)
	}
	return id, nil
}

func pathMerchantID(r *http.Request) (int64, error) {
	return parseMerchantID(chi.URLParam(r, "id"))
}

func parseMerchantID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("merchant id %q must be a positive integer", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}

func queryPage(r *http.Request) (domain.PageRequest, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return domain.PageRequest{}, err
	}

	size, err := queryInt(r, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}

	return domain.PageRequest{Page: page, Size: size}, nil
}

func queryStatus(r *http.Request) (domain.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return "", nil
	}
	return parseStatus(raw)
}

func parseStatus(raw string) (domain.OrderStatus, error) {
	status, err := domain.ToOrderStatus(raw)
	if err != nil {
		return "", fmt.Errorf("status %q: %w", raw, err)
	}
	return status, nil
}

type dateParser interface {
	ParseDate(s string) (time.Time, error)
}

// queryDates reads optional startDate and endDate as calendar days.
func queryDates(r *http.Request, parser dateParser) (*time.Time, *time.Time, error) {
	parse := func(name string) (*time.Time, error) {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			return nil, nil
		}
		t, err := parser.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	from, err := parse("startDate")
	if err != nil {
		return nil, nil, err
	}

	to, err := parse("endDate")
	if err != nil {
		return nil, nil, err
	}

	return from, to, nil
}
