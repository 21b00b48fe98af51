package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// RateService defines the methods the rate handler requires.
type RateService interface {
	SetRate(ctx context.Context, pair string, rate float64) error
	GetRate(ctx context.Context, pair string) (float64, time.Time, error)
}

// RateHandler serves spot rate HTTP endpoints.
type RateHandler struct {
	rates  RateService
	logger *slog.Logger
}

// NewRateHandler creates a RateHandler with the given service and logger.
func NewRateHandler(rates RateService, logger *slog.Logger) *RateHandler {
	return &RateHandler{rates: rates, logger: logger}
}

// GetRate returns the cached spot quote for a currency pair.
// GET /api/rates/{pair}
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	pair := r.PathValue("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "missing currency pair")
		return
	}

	rate, ts, err := h.rates.GetRate(r.Context(), pair)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no cached rate for pair")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get rate failed",
			slog.String("pair", pair),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get rate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pair":      pair,
		"rate":      rate,
		"quoted_at": ts.UTC().Format(time.RFC3339Nano),
	})
}

// SetRate stores a new spot quote for a currency pair.
// PUT /api/rates/{pair}
func (h *RateHandler) SetRate(w http.ResponseWriter, r *http.Request) {
	pair := r.PathValue("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "missing currency pair")
		return
	}

	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.rates.SetRate(r.Context(), pair, req.Rate); err != nil {
		if errors.Is(err, domain.ErrInvalidRate) || errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: set rate failed",
			slog.String("pair", pair),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to set rate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pair": pair,
		"rate": req.Rate,
	})
}
