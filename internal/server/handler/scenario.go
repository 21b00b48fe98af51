package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// ScenarioService defines the methods the scenario handler requires.
type ScenarioService interface {
	Evaluate(ctx context.Context, sc domain.InvestmentScenario) (domain.ScenarioResult, error)
	Sweep(ctx context.Context, sc domain.InvestmentScenario) (domain.ScenarioResult, []domain.SweepPoint, error)
	History(ctx context.Context, opts domain.ListOpts) ([]domain.ScenarioResult, error)
	GetResult(ctx context.Context, id string) (domain.ScenarioResult, error)
}

// ScenarioHandler serves scenario evaluation HTTP endpoints.
type ScenarioHandler struct {
	scenarios ScenarioService
	logger    *slog.Logger
}

// NewScenarioHandler creates a ScenarioHandler with the given service and logger.
func NewScenarioHandler(scenarios ScenarioService, logger *slog.Logger) *ScenarioHandler {
	return &ScenarioHandler{scenarios: scenarios, logger: logger}
}

// scenarioRequest is the JSON body for evaluate and sweep requests. The entry
// rate may be omitted to use the cached spot; the exit rate may be omitted to
// default to 5% depreciation from the entry.
type scenarioRequest struct {
	ISIN      string  `json:"isin"`
	AmountINR float64 `json:"amount_inr"`
	EntryRate float64 `json:"entry_rate,omitempty"`
	ExitRate  float64 `json:"exit_rate,omitempty"`
	Years     int     `json:"years"`
}

func (req scenarioRequest) scenario() domain.InvestmentScenario {
	return domain.InvestmentScenario{
		ISIN:      req.ISIN,
		AmountINR: req.AmountINR,
		EntryRate: req.EntryRate,
		ExitRate:  req.ExitRate,
		Years:     req.Years,
	}
}

// Evaluate runs a single hedged-versus-unhedged comparison.
// POST /api/scenarios/evaluate
func (h *ScenarioHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.scenarios.Evaluate(r.Context(), req.scenario())
	if err != nil {
		h.respondEvaluateError(w, r, req.ISIN, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Sweep runs an evaluation plus the exit-rate sensitivity curve.
// POST /api/scenarios/sweep
func (h *ScenarioHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, points, err := h.scenarios.Sweep(r.Context(), req.scenario())
	if err != nil {
		h.respondEvaluateError(w, r, req.ISIN, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result": res,
		"sweep":  points,
	})
}

// History returns previously evaluated results, newest first.
// GET /api/scenarios/history
func (h *ScenarioHandler) History(w http.ResponseWriter, r *http.Request) {
	results, err := h.scenarios.History(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: scenario history failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list scenario history")
		return
	}

	if results == nil {
		results = []domain.ScenarioResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// GetResult returns a single stored evaluation by ID.
// GET /api/scenarios/{id}
func (h *ScenarioHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing result id")
		return
	}

	res, err := h.scenarios.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scenario result not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get scenario result failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get scenario result")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// respondEvaluateError maps service errors from evaluate and sweep to HTTP
// status codes.
func (h *ScenarioHandler) respondEvaluateError(w http.ResponseWriter, r *http.Request, isin string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "bond not found")
	case errors.Is(err, domain.ErrInvalidRate), errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "handler: scenario evaluation failed",
			slog.String("isin", isin),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "scenario evaluation failed")
	}
}
