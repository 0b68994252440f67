package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/roomdesk/roomdesk/libs/auth"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/booking"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
)

type fakeStore struct {
	booked    []schedule.Interval
	fetchErr  error
	createErr error
	created   int
}

func (f *fakeStore) BookedIntervals(_ context.Context, _ string, _ time.Time) ([]schedule.Interval, error) {
	return f.booked, f.fetchErr
}

func (f *fakeStore) CreateReservation(_ context.Context, _ string, req schedule.Request) (booking.Created, error) {
	f.created++
	if f.createErr != nil {
		return booking.Created{}, f.createErr
	}
	return booking.Created{ID: "res-1", RoomID: req.RoomID, Start: req.Interval.Start, End: req.Interval.End}, nil
}

func newTestHandler(store booking.Store) *ReservationHandler {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	orch := booking.NewOrchestrator(store, schedule.DefaultBusinessHours())
	return NewReservationHandler(nil, nil, nil, nil, orch, logger, schedule.DefaultBusinessHours(), 60)
}

func postCreate(t *testing.T, h *ReservationHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), ctxKeyUserID, "user-1"))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateSucceeds(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store)

	rec := postCreate(t, h, `{"room_id":"room-1","date":"2026-09-01","start_time":"10:00","end_time":"11:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp createReservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.ReservationID != "res-1" {
		t.Fatalf("expected reservation id res-1, got %q", resp.ReservationID)
	}
	if resp.StartTime != "2026-09-01T10:00:00" || resp.EndTime != "2026-09-01T11:00:00" {
		t.Fatalf("unexpected stamps: %s / %s", resp.StartTime, resp.EndTime)
	}
	if store.created != 1 {
		t.Fatalf("expected exactly one create, got %d", store.created)
	}
}

func TestCreateRejectionStatuses(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		booked     []schedule.Interval
		wantStatus int
		wantReason string
	}{
		{
			name:       "missing selection",
			body:       `{"room_id":"","date":"2026-09-01","start_time":"10:00","end_time":"11:00"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "missing_selection",
		},
		{
			name:       "missing times",
			body:       `{"room_id":"room-1","date":"2026-09-01","start_time":"","end_time":"11:00"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "missing_times",
		},
		{
			name:       "outside business hours",
			body:       `{"room_id":"room-1","date":"2026-09-01","start_time":"07:00","end_time":"09:00"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "outside_business_hours",
		},
		{
			name:       "end before start",
			body:       `{"room_id":"room-1","date":"2026-09-01","start_time":"11:00","end_time":"10:00"}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "end_before_or_equal_start",
		},
		{
			name: "conflict",
			body: `{"room_id":"room-1","date":"2026-09-01","start_time":"10:00","end_time":"11:00"}`,
			booked: []schedule.Interval{{
				Start: time.Date(2026, 9, 1, 10, 30, 0, 0, time.Local),
				End:   time.Date(2026, 9, 1, 11, 30, 0, 0, time.Local),
			}},
			wantStatus: http.StatusConflict,
			wantReason: "conflict",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{booked: tc.booked}
			h := newTestHandler(store)

			rec := postCreate(t, h, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			var resp rejectionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid response json: %v", err)
			}
			if resp.Reason != tc.wantReason {
				t.Fatalf("expected reason %q, got %q", tc.wantReason, resp.Reason)
			}
			if store.created != 0 {
				t.Fatalf("rejection must not reach the store, got %d creates", store.created)
			}
		})
	}
}

func TestCreateLostRaceReturnsConflict(t *testing.T) {
	store := &fakeStore{createErr: booking.ErrAlreadyBooked}
	h := newTestHandler(store)

	rec := postCreate(t, h, `{"room_id":"room-1","date":"2026-09-01","start_time":"10:00","end_time":"11:00"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp rejectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Reason != "server_rejected" {
		t.Fatalf("expected reason server_rejected, got %q", resp.Reason)
	}
	if store.created != 1 {
		t.Fatalf("expected a single create attempt, got %d", store.created)
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	h := newTestHandler(&fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	secret := "test-secret"
	var gotUserID string
	protected := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), secret)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token, err := auth.SignHS256(auth.Claims{
		Sub:   "user-42",
		Email: "user@example.com",
		Exp:   time.Now().Add(time.Hour).Unix(),
		Iat:   time.Now().Unix(),
	}, secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rec.Code)
	}
	if gotUserID != "user-42" {
		t.Fatalf("expected user-42 in context, got %q", gotUserID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}
