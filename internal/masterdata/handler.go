package masterdata

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// Handler serves master data reads for the order form.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reference", h.referenceData)
	r.Get("/customers/{id}", h.getCustomer)
}

func (h *Handler) referenceData(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.LoadReferenceData(r.Context())
	if err != nil {
		h.logger.Error("load reference data", slog.Any("error", err))
		http.Error(w, "reference data unavailable", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, data)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}
	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get customer", slog.Any("error", err))
		http.Error(w, "failed to load customer", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}
