package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
)

type stubRentalService struct {
	mock.Mock
}

func (m *stubRentalService) CreateRental(ctx context.Context, in service.CreateRentalInput) (domain.Rental, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Rental), args.Error(1)
}

func (m *stubRentalService) ReturnRental(ctx context.Context, in service.ReturnRentalInput) (domain.Rental, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Rental), args.Error(1)
}

func (m *stubRentalService) ExtendRental(ctx context.Context, rentalID uuid.UUID, additionalDays int, cardToken string) (domain.Rental, error) {
	args := m.Called(ctx, rentalID, additionalDays, cardToken)
	return args.Get(0).(domain.Rental), args.Error(1)
}

func (m *stubRentalService) CancelRental(ctx context.Context, rentalID uuid.UUID) (domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).(domain.Rental), args.Error(1)
}

func (m *stubRentalService) GetRental(ctx context.Context, rentalID uuid.UUID) (domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).(domain.Rental), args.Error(1)
}

func (m *stubRentalService) ListMemberRentals(ctx context.Context, memberID uuid.UUID, status domain.RentalStatus, page, pageSize int) ([]domain.Rental, int, error) {
	args := m.Called(ctx, memberID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Int(1), args.Error(2)
}

func (m *stubRentalService) SweepOverdue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func testServer(t *testing.T, rentalSvc service.RentalService) (*mux.Router, security.TokenManager) {
	t.Helper()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	h := NewHandlers(nil, nil, nil, rentalSvc, nil, nil)
	return NewRouter(h, tokens), tokens
}

func sampleRental(t *testing.T, memberID uuid.UUID) domain.Rental {
	t.Helper()
	period, err := domain.NewDateRange(
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	cost, err := domain.NewMoneyFromCents(250_00)
	require.NoError(t, err)
	rt, err := domain.NewRental(uuid.New(), memberID, period, cost, domain.ConditionExcellent, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return rt
}

func TestRentalHandler_Create(t *testing.T) {
	memberID := uuid.New()
	equipmentID := uuid.New()

	t.Run("Authenticated request reaches the service", func(t *testing.T) {
		svc := new(stubRentalService)
		router, tokens := testServer(t, svc)
		token, err := tokens.GenerateToken(memberID, "pat@example.com", "BASIC")
		require.NoError(t, err)

		rental := sampleRental(t, memberID)
		svc.On("CreateRental", mock.Anything, mock.MatchedBy(func(in service.CreateRentalInput) bool {
			return in.MemberID == memberID && in.EquipmentID == equipmentID && in.CardToken == "tok_visa"
		})).Return(rental, nil)

		body, _ := json.Marshal(map[string]string{
			"equipment_id": equipmentID.String(),
			"start_date":   "2026-06-01",
			"end_date":     "2026-06-06",
			"card_token":   "tok_visa",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Missing token", func(t *testing.T) {
		svc := new(stubRentalService)
		router, _ := testServer(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "CreateRental", mock.Anything, mock.Anything)
	})

	t.Run("Malformed dates", func(t *testing.T) {
		svc := new(stubRentalService)
		router, tokens := testServer(t, svc)
		token, err := tokens.GenerateToken(memberID, "pat@example.com", "BASIC")
		require.NoError(t, err)

		body, _ := json.Marshal(map[string]string{
			"equipment_id": equipmentID.String(),
			"start_date":   "June 1st",
			"end_date":     "2026-06-06",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRentalHandler_ErrorMapping(t *testing.T) {
	memberID := uuid.New()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Not found", &domain.NotFoundError{Resource: "rental", ID: uuid.New()}, http.StatusNotFound},
		{"Scheduling conflict", &domain.ConflictError{EquipmentID: uuid.New(), Reason: "held"}, http.StatusConflict},
		{"State conflict", &domain.StateConflictError{Resource: "rental", ID: uuid.New(), Reason: "closed"}, http.StatusConflict},
		{"Eligibility", &domain.EligibilityError{MemberID: memberID, Reason: "overdue"}, http.StatusUnprocessableEntity},
		{"Validation", &domain.ValidationError{Field: "period", Reason: "inverted"}, http.StatusBadRequest},
		{"Payment declined", &domain.PaymentError{Reason: "card declined"}, http.StatusPaymentRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(stubRentalService)
			router, tokens := testServer(t, svc)
			token, err := tokens.GenerateToken(memberID, "pat@example.com", "BASIC")
			require.NoError(t, err)

			id := uuid.New()
			svc.On("GetRental", mock.Anything, id).Return(sampleRental(t, memberID), nil)
			svc.On("CancelRental", mock.Anything, id).Return(domain.Rental{}, tc.err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/"+id.String()+"/cancel", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRentalHandler_OwnershipScope(t *testing.T) {
	memberID := uuid.New()
	stranger := uuid.New()

	svc := new(stubRentalService)
	router, tokens := testServer(t, svc)
	token, err := tokens.GenerateToken(memberID, "pat@example.com", "BASIC")
	require.NoError(t, err)

	rental := sampleRental(t, stranger)
	svc.On("GetRental", mock.Anything, rental.ID).Return(rental, nil)

	t.Run("Another member's rental reads as not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rentals/"+rental.ID.String(), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Another member's rental cannot be cancelled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/"+rental.ID.String()+"/cancel", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertNotCalled(t, "CancelRental", mock.Anything, mock.Anything)
	})

	t.Run("Another member's rental cannot be returned", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"condition": "GOOD"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/"+rental.ID.String()+"/return", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertNotCalled(t, "ReturnRental", mock.Anything, mock.Anything)
	})
}

func TestRentalHandler_ListMine(t *testing.T) {
	memberID := uuid.New()
	svc := new(stubRentalService)
	router, tokens := testServer(t, svc)
	token, err := tokens.GenerateToken(memberID, "pat@example.com", "BASIC")
	require.NoError(t, err)

	svc.On("ListMemberRentals", mock.Anything, memberID, domain.RentalStatusActive, 2, 10).
		Return([]domain.Rental{sampleRental(t, memberID)}, 11, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rentals?status=ACTIVE&page=2&page_size=10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []json.RawMessage `json:"items"`
		Meta  struct {
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
			Total    int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 11, resp.Meta.Total)
}
