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

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type createRentalRequest struct {
	EquipmentID     string `json:"equipment_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	CardToken       string `json:"card_token"`
	AuthorizationID string `json:"authorization_id"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	equipmentID, err := uuid.Parse(req.EquipmentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid equipment id"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}

	rental, err := h.rentalSvc.CreateRental(r.Context(), service.CreateRentalInput{
		MemberID:        memberIDFromContext(r.Context()),
		EquipmentID:     equipmentID,
		StartDate:       start,
		EndDate:         end,
		CardToken:       req.CardToken,
		AuthorizationID: req.AuthorizationID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

// ownedRental loads a rental on behalf of the authenticated member.
// Rentals belonging to other members come back as not found.
func (h *RentalHandler) ownedRental(r *http.Request, id uuid.UUID) (domain.Rental, error) {
	rental, err := h.rentalSvc.GetRental(r.Context(), id)
	if err != nil {
		return domain.Rental{}, err
	}
	if rental.MemberID != memberIDFromContext(r.Context()) {
		return domain.Rental{}, &domain.NotFoundError{Resource: "rental", ID: id}
	}
	return rental, nil
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rental id"})
		return
	}
	rental, err := h.ownedRental(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := domain.RentalStatus(r.URL.Query().Get("status"))
	items, total, err := h.rentalSvc.ListMemberRentals(r.Context(), memberIDFromContext(r.Context()), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Meta: listMeta{Page: page, PageSize: pageSize, Total: total}})
}

type returnRentalRequest struct {
	Condition  string `json:"condition"`
	Notes      string `json:"notes"`
	AssessedBy string `json:"assessed_by"`
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rental id"})
		return
	}
	var req returnRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if _, err := h.ownedRental(r, id); err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.rentalSvc.ReturnRental(r.Context(), service.ReturnRentalInput{
		RentalID:          id,
		ConditionAtReturn: domain.Condition(req.Condition),
		Notes:             req.Notes,
		AssessedBy:        req.AssessedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type extendRentalRequest struct {
	AdditionalDays int    `json:"additional_days"`
	CardToken      string `json:"card_token"`
}

func (h *RentalHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rental id"})
		return
	}
	var req extendRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if _, err := h.ownedRental(r, id); err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.rentalSvc.ExtendRental(r.Context(), id, req.AdditionalDays, req.CardToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rental id"})
		return
	}
	if _, err := h.ownedRental(r, id); err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.rentalSvc.CancelRental(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}
