package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/roomdesk/roomdesk/libs/db"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/booking"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/outbox"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/storage"
)

type ReservationHandler struct {
	pool         *db.Pool
	repo         *storage.ReservationRepository
	rooms        *storage.RoomRepository
	outboxRepo   *outbox.Repository
	orchestrator *booking.Orchestrator
	logger       *slog.Logger
	hours        schedule.BusinessHours
	slotMinutes  int
}

func NewReservationHandler(
	pool *db.Pool,
	repo *storage.ReservationRepository,
	rooms *storage.RoomRepository,
	outboxRepo *outbox.Repository,
	orchestrator *booking.Orchestrator,
	logger *slog.Logger,
	hours schedule.BusinessHours,
	slotMinutes int,
) *ReservationHandler {
	return &ReservationHandler{
		pool:         pool,
		repo:         repo,
		rooms:        rooms,
		outboxRepo:   outboxRepo,
		orchestrator: orchestrator,
		logger:       logger,
		hours:        hours,
		slotMinutes:  slotMinutes,
	}
}

type createReservationRequest struct {
	RoomID    string `json:"room_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type createReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	RoomID        string `json:"room_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type rejectionResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type deleteReservationRequest struct {
	ReservationID string `json:"reservation_id"`
}

type reservationItem struct {
	ReservationID string `json:"reservation_id"`
	RoomID        string `json:"room_id"`
	RoomName      string `json:"room_name,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CreatedAt     string `json:"created_at"`
}

type intervalItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type slotItem struct {
	Label     string `json:"label"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "you must be logged in", http.StatusUnauthorized)
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	candidate := schedule.Candidate{
		RoomID:    strings.TrimSpace(req.RoomID),
		Date:      strings.TrimSpace(req.Date),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
	}

	created, err := h.orchestrator.Submit(r.Context(), userID, candidate)
	if err != nil {
		var verr *schedule.ValidationError
		switch {
		case errors.As(err, &verr):
			status := http.StatusBadRequest
			if verr.Code == schedule.ReasonConflict {
				status = http.StatusConflict
			}
			writeJSON(w, status, rejectionResponse{Error: verr.Message, Reason: string(verr.Code)})
		case errors.Is(err, booking.ErrServerRejected):
			writeJSON(w, http.StatusConflict, rejectionResponse{
				Error:  "availability changed while booking, refresh the slots and pick again",
				Reason: "server_rejected",
			})
		default:
			h.logger.Error("reservation submit failed", "err", err)
			http.Error(w, "failed to create reservation", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, createReservationResponse{
		ReservationID: created.ID,
		RoomID:        created.RoomID,
		StartTime:     schedule.FormatStamp(created.Start),
		EndTime:       schedule.FormatStamp(created.End),
	})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "you must be logged in", http.StatusUnauthorized)
		return
	}

	reservations, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list reservations", "err", err)
		http.Error(w, "failed to list reservations", http.StatusInternalServerError)
		return
	}

	items := make([]reservationItem, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, reservationItem{
			ReservationID: res.ID,
			RoomID:        res.RoomID,
			RoomName:      res.RoomName,
			StartTime:     schedule.FormatStamp(res.StartTime),
			EndTime:       schedule.FormatStamp(res.EndTime),
			CreatedAt:     schedule.FormatStamp(res.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "you must be logged in", http.StatusUnauthorized)
		return
	}

	var req deleteReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ReservationID = strings.TrimSpace(req.ReservationID)
	if req.ReservationID == "" {
		http.Error(w, "reservation_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := h.repo.GetForUpdate(ctx, tx, req.ReservationID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "reservation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load reservation", http.StatusInternalServerError)
		return
	}
	if res.UserID != userID {
		http.Error(w, "not your reservation", http.StatusForbidden)
		return
	}

	if err := h.repo.Delete(ctx, tx, res.ID); err != nil {
		http.Error(w, "failed to delete reservation", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"reservation_id": res.ID,
		"room_id":        res.RoomID,
		"user_id":        res.UserID,
		"start_time":     schedule.FormatStamp(res.StartTime),
		"end_time":       schedule.FormatStamp(res.EndTime),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   res.ID,
		EventType:     "reservation.deleted.v1",
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reservation_id": res.ID, "status": "deleted"})
}

// Booked returns a room's reserved intervals for one day. The client
// grid renders these as blocked.
func (h *ReservationHandler) Booked(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	roomID, day, ok := h.roomAndDate(w, r)
	if !ok {
		return
	}

	bounds := schedule.DayBounds(day)
	reservations, err := h.repo.ListBookedIntervals(r.Context(), roomID, bounds.Start, bounds.End)
	if err != nil {
		h.logger.Error("failed to load booked intervals", "err", err)
		http.Error(w, "failed to load booked intervals", http.StatusInternalServerError)
		return
	}

	items := make([]intervalItem, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, intervalItem{
			StartTime: schedule.FormatStamp(res.StartTime),
			EndTime:   schedule.FormatStamp(res.EndTime),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// Slots returns the free portion of a room's slot grid for one day.
func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	roomID, day, ok := h.roomAndDate(w, r)
	if !ok {
		return
	}

	slotMinutes := h.slotMinutes
	if raw := strings.TrimSpace(r.URL.Query().Get("slot_minutes")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 8*60 {
			http.Error(w, "invalid slot_minutes", http.StatusBadRequest)
			return
		}
		slotMinutes = n
	}

	if _, err := h.rooms.Get(r.Context(), roomID); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load room", http.StatusInternalServerError)
		return
	}

	bounds := schedule.DayBounds(day)
	reservations, err := h.repo.ListBookedIntervals(r.Context(), roomID, bounds.Start, bounds.End)
	if err != nil {
		h.logger.Error("failed to load booked intervals", "err", err)
		http.Error(w, "failed to load booked intervals", http.StatusInternalServerError)
		return
	}
	booked := make([]schedule.Interval, 0, len(reservations))
	for _, res := range reservations {
		booked = append(booked, schedule.Interval{Start: res.StartTime, End: res.EndTime})
	}

	grid := schedule.Grid(day, h.hours, slotMinutes)
	free := schedule.FreeSlots(grid, booked)

	items := make([]slotItem, 0, len(free))
	for _, s := range free {
		items = append(items, slotItem{
			Label:     s.Label,
			StartTime: schedule.FormatStamp(s.Interval.Start),
			EndTime:   schedule.FormatStamp(s.Interval.End),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReservationHandler) roomAndDate(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	roomID := strings.TrimSpace(r.URL.Query().Get("room_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if roomID == "" || dateStr == "" {
		http.Error(w, "room_id and date are required", http.StatusBadRequest)
		return "", time.Time{}, false
	}
	day, err := schedule.ParseDate(dateStr)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return "", time.Time{}, false
	}
	return roomID, day, true
}
