package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/forgeline-erp/forgeline-erp/internal/shared"
)

// Handler exposes the draft order lifecycle over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) startDraft(w http.ResponseWriter, r *http.Request) {
	var req StartDraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := h.service.StartDraft(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, draft)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.GetDraft(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) updateHeader(w http.ResponseWriter, r *http.Request) {
	var req UpdateDraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := h.service.UpdateHeader(r.Context(), chi.URLParam(r, "draftID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req AddLineItemsRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := h.service.AddLineItems(r.Context(), chi.URLParam(r, "draftID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateLineItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := h.service.UpdateLineItem(r.Context(), chi.URLParam(r, "draftID"), chi.URLParam(r, "itemID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.RemoveLineItem(r.Context(), chi.URLParam(r, "draftID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) addBatch(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.AddShipmentBatch(r.Context(), chi.URLParam(r, "draftID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) updateBatch(w http.ResponseWriter, r *http.Request) {
	var req UpdateBatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := h.service.UpdateShipmentBatch(r.Context(),
		chi.URLParam(r, "draftID"), chi.URLParam(r, "itemID"), chi.URLParam(r, "batchID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) removeBatch(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.RemoveShipmentBatch(r.Context(),
		chi.URLParam(r, "draftID"), chi.URLParam(r, "itemID"), chi.URLParam(r, "batchID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, totals)
}

func (h *Handler) regenerateNumber(w http.ResponseWriter, r *http.Request) {
	draft, err := h.service.RegenerateOrderNumber(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) customNumber(w http.ResponseWriter, r *http.Request) {
	var req CustomOrderNumberRequest
	if !h.decode(w, r, &req) {
		return
	}
	draft, err := h.service.UseCustomOrderNumber(r.Context(), chi.URLParam(r, "draftID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) assemble(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Assemble(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "orderNo"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"field": ve.Field,
			"error": ve.Message,
		})
		return
	}
	var rde *shared.ReferenceDataError
	if errors.As(err, &rde) {
		h.logger.Error("reference data failure", slog.Any("error", err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": "reference data unavailable"})
		return
	}
	var pe *shared.PersistenceError
	if errors.As(err, &pe) {
		h.logger.Error("persistence failure", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order could not be saved; draft preserved"})
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound) || errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrDraftFinal):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "draft is already assembled"})
	default:
		h.logger.Error("order request failed", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}
