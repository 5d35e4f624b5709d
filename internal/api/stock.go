package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/clinic-scheduling/internal/forecast"
	"github.com/clinicore/clinic-scheduling/internal/inventory"
	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
)

type StockHandlers struct {
	svc      *inventory.Service
	forecast *forecast.Client
	met      *metrics.Metrics
}

func NewStockHandlers(svc *inventory.Service, fc *forecast.Client, met *metrics.Metrics) *StockHandlers {
	return &StockHandlers{svc: svc, forecast: fc, met: met}
}

func (h *StockHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), r.URL.Query().Get("search"), r.URL.Query().Get("order"))
	if err != nil {
		handleError(w, err)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StockHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := stockID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *StockHandlers) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	mode := inventory.ModeAdd
	if req.Mode == string(inventory.ModeSet) {
		mode = inventory.ModeSet
	}

	item, err := h.svc.Upsert(r.Context(), inventory.UpsertInput{
		MedicineName:   req.MedicineName,
		Quantity:       req.Quantity,
		ExpirationDate: req.ExpirationDate,
		Mode:           mode,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *StockHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := stockID(w, r)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	item, err := h.svc.Update(r.Context(), id, inventory.UpdateInput{
		MedicineName:   req.MedicineName,
		Quantity:       req.Quantity,
		ExpirationDate: req.ExpirationDate,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *StockHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := stockID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Forecast endpoints proxy the demand-forecasting service. Failures
// never surface as errors; the client degrades to an empty result and
// we count the fallback.
func (h *StockHandlers) Forecast(w http.ResponseWriter, r *http.Request) {
	rows := h.forecast.Forecast(r.Context(), horizon(r))
	if len(rows) == 0 {
		h.met.ForecastFallbacks.Inc()
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *StockHandlers) TopForecast(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "next"
	}
	top, _ := strconv.Atoi(r.URL.Query().Get("top"))

	rows := h.forecast.TopForecast(r.Context(), horizon(r), metric, top)
	if len(rows) == 0 {
		h.met.ForecastFallbacks.Inc()
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *StockHandlers) Seasonality(w http.ResponseWriter, r *http.Request) {
	rows := h.forecast.Seasonality(r.Context())
	if len(rows) == 0 {
		h.met.ForecastFallbacks.Inc()
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *StockHandlers) Restock(w http.ResponseWriter, r *http.Request) {
	rows := h.forecast.Restock(r.Context(), horizon(r))
	if len(rows) == 0 {
		h.met.ForecastFallbacks.Inc()
	}
	writeJSON(w, http.StatusOK, rows)
}

func stockID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_stock_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func horizon(r *http.Request) int {
	h, err := strconv.Atoi(r.URL.Query().Get("horizon"))
	if err != nil || h <= 0 {
		return 3
	}
	return h
}
