package orders

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the draft order lifecycle routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/drafts", h.startDraft)
	r.Get("/drafts/{draftID}", h.getDraft)
	r.Patch("/drafts/{draftID}", h.updateHeader)
	r.Get("/drafts/{draftID}/totals", h.totals)

	r.Post("/drafts/{draftID}/items", h.addItems)
	r.Patch("/drafts/{draftID}/items/{itemID}", h.updateItem)
	r.Delete("/drafts/{draftID}/items/{itemID}", h.removeItem)

	r.Post("/drafts/{draftID}/items/{itemID}/batches", h.addBatch)
	r.Patch("/drafts/{draftID}/items/{itemID}/batches/{batchID}", h.updateBatch)
	r.Delete("/drafts/{draftID}/items/{itemID}/batches/{batchID}", h.removeBatch)

	r.Post("/drafts/{draftID}/number/generate", h.regenerateNumber)
	r.Put("/drafts/{draftID}/number", h.customNumber)

	r.Post("/drafts/{draftID}/assemble", h.assemble)
	r.Get("/{orderNo}", h.getOrder)
}
