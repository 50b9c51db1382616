package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/service"
)

type ReservationHandler struct {
	reservationSvc service.ReservationService
}

func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

type createReservationRequest struct {
	EquipmentID string `json:"equipment_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CardToken   string `json:"card_token"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
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

	reservation, err := h.reservationSvc.CreateReservation(r.Context(), service.CreateReservationInput{
		MemberID:    memberIDFromContext(r.Context()),
		EquipmentID: equipmentID,
		StartDate:   start,
		EndDate:     end,
		CardToken:   req.CardToken,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

// ownedReservation loads a reservation on behalf of the authenticated
// member. Reservations belonging to other members come back as not found.
func (h *ReservationHandler) ownedReservation(r *http.Request, id uuid.UUID) (domain.Reservation, error) {
	reservation, err := h.reservationSvc.GetReservation(r.Context(), id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if reservation.MemberID != memberIDFromContext(r.Context()) {
		return domain.Reservation{}, &domain.NotFoundError{Resource: "reservation", ID: id}
	}
	return reservation, nil
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid reservation id"})
		return
	}
	reservation, err := h.ownedReservation(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := domain.ReservationStatus(r.URL.Query().Get("status"))
	items, total, err := h.reservationSvc.ListMemberReservations(r.Context(), memberIDFromContext(r.Context()), status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Meta: listMeta{Page: page, PageSize: pageSize, Total: total}})
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid reservation id"})
		return
	}
	if _, err := h.ownedReservation(r, id); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := h.reservationSvc.ConfirmReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

type cancelReservationRequest struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid reservation id"})
		return
	}
	var req cancelReservationRequest
	if r.Body != nil {
		// Body is optional for cancellation.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if _, err := h.ownedReservation(r, id); err != nil {
		writeError(w, err)
		return
	}
	reservation, err := h.reservationSvc.CancelReservation(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

type fulfillReservationRequest struct {
	CardToken string `json:"card_token"`
}

func (h *ReservationHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid reservation id"})
		return
	}
	var req fulfillReservationRequest
	if r.Body != nil {
		// Card token is only needed when no authorization hold exists.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if _, err := h.ownedReservation(r, id); err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.reservationSvc.FulfillReservation(r.Context(), id, req.CardToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}
