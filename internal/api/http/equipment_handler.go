package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

type addEquipmentRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	DailyRate    float64 `json:"daily_rate"`
	Condition    string  `json:"condition"`
	PurchaseDate string  `json:"purchase_date"`
}

func (h *EquipmentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	rate, err := domain.NewMoney(req.DailyRate)
	if err != nil {
		writeError(w, err)
		return
	}
	purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "purchase_date must be YYYY-MM-DD"})
		return
	}
	equipment, err := h.equipmentSvc.AddEquipment(r.Context(), req.Name, req.Category, rate, domain.Condition(req.Condition), purchaseDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, equipment)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid equipment id"})
		return
	}
	equipment, err := h.equipmentSvc.GetEquipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	availableOnly := r.URL.Query().Get("available") == "true"
	items, total, err := h.equipmentSvc.ListEquipment(r.Context(), availableOnly, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Meta: listMeta{Page: page, PageSize: pageSize, Total: total}})
}

type conditionRequest struct {
	Condition string `json:"condition"`
}

func (h *EquipmentHandler) UpdateCondition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid equipment id"})
		return
	}
	var req conditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	equipment, err := h.equipmentSvc.UpdateCondition(r.Context(), id, domain.Condition(req.Condition))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

func (h *EquipmentHandler) RecordMaintenance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid equipment id"})
		return
	}
	var req conditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	equipment, err := h.equipmentSvc.RecordMaintenance(r.Context(), id, domain.Condition(req.Condition))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

func (h *EquipmentHandler) ListMaintenanceDue(w http.ResponseWriter, r *http.Request) {
	items, err := h.equipmentSvc.ListMaintenanceDue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Meta: listMeta{Page: 1, PageSize: len(items), Total: len(items)}})
}
