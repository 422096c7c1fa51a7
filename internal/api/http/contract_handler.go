package http

import (
	"net/http"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

type ContractHandler struct {
	coordinator service.LifecycleCoordinator
	contractSvc service.ContractService
	now         func() time.Time
}

func NewContractHandler(coordinator service.LifecycleCoordinator, contractSvc service.ContractService) *ContractHandler {
	return &ContractHandler{coordinator: coordinator, contractSvc: contractSvc, now: time.Now}
}

func (h *ContractHandler) OpenContract(w http.ResponseWriter, r *http.Request) {
	var cmd domain.OpenContract
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	contract, err := h.coordinator.OpenContract(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, contract)
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ContractFilter{
		Status: domain.ContractStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondError(w, r, domain.NewValidationError("status", "must be one of active finalized"))
		return
	}
	contracts, err := h.contractSvc.ListContracts(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nonNil(contracts))
}

func (h *ContractHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractSvc.ListOverdue(r.Context(), h.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nonNil(contracts))
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.contractSvc.GetContract(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, contract)
}

func (h *ContractHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	var patch domain.ContractPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}
	contract, err := h.coordinator.UpdateContract(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, contract)
}

func (h *ContractHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.DeleteContract(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) ClientHistory(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractSvc.ClientHistory(r.Context(), mux.Vars(r)["taxId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nonNil(contracts))
}

func nonNil(contracts []domain.Contract) []domain.Contract {
	if contracts == nil {
		return []domain.Contract{}
	}
	return contracts
}
