package http

import (
	"net/http"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

type ItemHandler struct {
	coordinator  service.LifecycleCoordinator
	inventorySvc service.InventoryService
}

func NewItemHandler(coordinator service.LifecycleCoordinator, inventorySvc service.InventoryService) *ItemHandler {
	return &ItemHandler{coordinator: coordinator, inventorySvc: inventorySvc}
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var cmd domain.NewItem
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	item, err := h.coordinator.CreateItem(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ItemFilter{
		Category:     q.Get("category"),
		Size:         q.Get("size"),
		Availability: domain.Availability(q.Get("availability")),
		Search:       q.Get("search"),
	}
	items, err := h.inventorySvc.ListItems(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	respondOK(w, items)
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventorySvc.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, item)
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch domain.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	item, err := h.coordinator.UpdateItem(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, item)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteItem(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) ItemHistory(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.inventorySvc.ItemHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nonNil(contracts))
}
