package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// CatalogService defines the methods the bond handler requires.
type CatalogService interface {
	List(ctx context.Context, filter domain.BondFilter, opts domain.ListOpts) ([]domain.Bond, error)
	Get(ctx context.Context, isin string) (domain.Bond, error)
	Count(ctx context.Context) (int64, error)
}

// BondHandler serves bond catalog HTTP endpoints.
type BondHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewBondHandler creates a BondHandler with the given service and logger.
func NewBondHandler(catalog CatalogService, logger *slog.Logger) *BondHandler {
	return &BondHandler{catalog: catalog, logger: logger}
}

// ListBonds returns catalog records matching the query filters.
// GET /api/bonds?security=Secured&rating=AA,AA+&frequency=Quarterly&min_yield=7&max_yield=9
func (h *BondHandler) ListBonds(w http.ResponseWriter, r *http.Request) {
	filter := parseBondFilter(r)

	bonds, err := h.catalog.List(r.Context(), filter, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list bonds failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list bonds")
		return
	}

	if bonds == nil {
		bonds = []domain.Bond{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bonds": bonds,
		"count": len(bonds),
	})
}

// GetBond returns a single catalog record by ISIN.
// GET /api/bonds/{isin}
func (h *BondHandler) GetBond(w http.ResponseWriter, r *http.Request) {
	isin := r.PathValue("isin")
	if isin == "" {
		writeError(w, http.StatusBadRequest, "missing isin")
		return
	}

	bond, err := h.catalog.Get(r.Context(), isin)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bond not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get bond failed",
			slog.String("isin", isin),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get bond")
		return
	}

	writeJSON(w, http.StatusOK, bond)
}

// parseBondFilter builds a catalog filter from the query string. The rating
// and frequency parameters accept comma-separated lists.
func parseBondFilter(r *http.Request) domain.BondFilter {
	q := r.URL.Query()

	filter := domain.BondFilter{
		Security:      domain.SecurityStatus(q.Get("security")),
		MinOfferYield: parseFloatParam(r, "min_yield"),
		MaxOfferYield: parseFloatParam(r, "max_yield"),
	}
	if v := q.Get("rating"); v != "" {
		filter.Ratings = splitCSV(v)
	}
	if v := q.Get("frequency"); v != "" {
		filter.Frequencies = splitCSV(v)
	}
	return filter
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
