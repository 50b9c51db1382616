package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Equipment    *EquipmentHandler
	Member       *MemberHandler
	Rental       *RentalHandler
	Reservation  *ReservationHandler
	Notification *NotificationHandler
}

func NewHandlers(
	authSvc service.AuthService,
	equipmentSvc service.EquipmentService,
	memberSvc service.MemberService,
	rentalSvc service.RentalService,
	reservationSvc service.ReservationService,
	notificationSvc service.NotificationService,
) Handlers {
	return Handlers{
		Auth:         NewAuthHandler(authSvc),
		Equipment:    NewEquipmentHandler(equipmentSvc),
		Member:       NewMemberHandler(memberSvc),
		Rental:       NewRentalHandler(rentalSvc),
		Reservation:  NewReservationHandler(reservationSvc),
		Notification: NewNotificationHandler(notificationSvc),
	}
}

// NewRouter mounts all routes. Signup, login, and the equipment catalog
// are public; everything else requires a bearer token.
func NewRouter(h Handlers, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/equipment", h.Equipment.List).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}", h.Equipment.Get).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware(tokens))

	authed.HandleFunc("/equipment", h.Equipment.Add).Methods(http.MethodPost)
	authed.HandleFunc("/equipment/maintenance-due", h.Equipment.ListMaintenanceDue).Methods(http.MethodGet)
	authed.HandleFunc("/equipment/{id}/condition", h.Equipment.UpdateCondition).Methods(http.MethodPut)
	authed.HandleFunc("/equipment/{id}/maintenance", h.Equipment.RecordMaintenance).Methods(http.MethodPost)

	authed.HandleFunc("/members/me", h.Member.GetMe).Methods(http.MethodGet)
	authed.HandleFunc("/members/me/tier", h.Member.ChangeTier).Methods(http.MethodPut)
	authed.HandleFunc("/members/me/deactivate", h.Member.Deactivate).Methods(http.MethodPost)
	authed.HandleFunc("/members/me/payments", h.Member.ListPayments).Methods(http.MethodGet)

	authed.HandleFunc("/rentals", h.Rental.Create).Methods(http.MethodPost)
	authed.HandleFunc("/rentals", h.Rental.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/rentals/{id}", h.Rental.Get).Methods(http.MethodGet)
	authed.HandleFunc("/rentals/{id}/return", h.Rental.Return).Methods(http.MethodPost)
	authed.HandleFunc("/rentals/{id}/extend", h.Rental.Extend).Methods(http.MethodPost)
	authed.HandleFunc("/rentals/{id}/cancel", h.Rental.Cancel).Methods(http.MethodPost)

	authed.HandleFunc("/reservations", h.Reservation.Create).Methods(http.MethodPost)
	authed.HandleFunc("/reservations", h.Reservation.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id}", h.Reservation.Get).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id}/confirm", h.Reservation.Confirm).Methods(http.MethodPost)
	authed.HandleFunc("/reservations/{id}/cancel", h.Reservation.Cancel).Methods(http.MethodPost)
	authed.HandleFunc("/reservations/{id}/fulfill", h.Reservation.Fulfill).Methods(http.MethodPost)

	authed.HandleFunc("/notifications", h.Notification.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id}/read", h.Notification.MarkAsRead).Methods(http.MethodPost)

	return r
}
