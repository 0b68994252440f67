package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/roomdesk/roomdesk/services/reservation-service/internal/storage"
)

type RoomsHandler struct {
	repo   *storage.RoomRepository
	logger *slog.Logger
}

func NewRoomsHandler(repo *storage.RoomRepository, logger *slog.Logger) *RoomsHandler {
	return &RoomsHandler{repo: repo, logger: logger}
}

type roomItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rooms, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list rooms", "err", err)
		http.Error(w, "failed to list rooms", http.StatusInternalServerError)
		return
	}

	items := make([]roomItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, roomItem{ID: room.ID, Name: room.Name, Capacity: room.Capacity})
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
