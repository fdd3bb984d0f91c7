package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockReservationService struct {
	createFunc     func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	listFunc       func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	cancelFunc     func(ctx context.Context, id string) (*model.Booking, error)
	rescheduleFunc func(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error)
}

func (m *mockReservationService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockReservationService) List(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return &model.Booking{ID: id, Status: model.StatusCancelled}, nil
}

func (m *mockReservationService) Reschedule(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if m.rescheduleFunc != nil {
		return m.rescheduleFunc(ctx, id, update)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockReservationService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.StatusCompleted}, nil
}

func newTestRouter(svc *mockReservationService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreate_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"date":"2024-06-04","time":"09:00","name":"Jane","email":"jane@example.com"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "slot conflict",
			body:       `{"date":"2024-06-04","time":"09:00","name":"Jane","email":"jane@example.com"}`,
			createErr:  apperrors.SlotConflict("2024-06-04_0900"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeSlotConflict,
		},
		{
			name:       "store unavailable",
			body:       `{"date":"2024-06-04","time":"09:00","name":"Jane","email":"jane@example.com"}`,
			createErr:  apperrors.StoreUnavailable(context.DeadlineExceeded),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeUnavailable,
		},
		{
			name:       "malformed body",
			body:       `{"date":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "unknown field",
			body:       `{"date":"2024-06-04","slot":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{
				createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return &model.Booking{ID: "b-1", Date: req.Date, Time: req.Time, Status: model.StatusBooked}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				var body apperrors.ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, body.Code)
				}
			}
		})
	}
}

func TestList_PassesFilterAndPagination(t *testing.T) {
	var gotFilter model.BookingFilter
	var gotLimit int
	var gotOffset int64
	svc := &mockReservationService{
		listFunc: func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotFilter, gotLimit, gotOffset = filter, limit, offset
			return []*model.Booking{{ID: "b-1"}}, 7, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?date=2024-06-04&status=booked&limit=5&offset=2", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFilter.Date != "2024-06-04" || gotFilter.Status != model.StatusBooked {
		t.Errorf("unexpected filter %+v", gotFilter)
	}
	if gotLimit != 5 || gotOffset != 2 {
		t.Errorf("expected limit=5 offset=2, got %d %d", gotLimit, gotOffset)
	}

	var body struct {
		TotalCount int64 `json:"total_count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 7 {
		t.Errorf("expected total_count 7, got %d", body.TotalCount)
	}
}

func TestList_InvalidLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=abc", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&mockReservationService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCancel_InvalidState(t *testing.T) {
	svc := &mockReservationService{
		cancelFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.InvalidState("only booked bookings can be cancelled", "cancelled")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/b-1/cancel", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestUpdate_RoutesToReschedule(t *testing.T) {
	var gotID string
	var gotTime string
	svc := &mockReservationService{
		rescheduleFunc: func(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error) {
			gotID = id
			if update.Time != nil {
				gotTime = *update.Time
			}
			return &model.Booking{ID: id, Time: gotTime}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/b-9", strings.NewReader(`{"time":"10:00"}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "b-9" || gotTime != "10:00" {
		t.Errorf("expected reschedule of b-9 to 10:00, got %s %s", gotID, gotTime)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/missing", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&mockReservationService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
