package handlers

import (
	"net/http"

	"github.com/greenfee/tourops/services"
)

type RoomHandler struct {
	roomService services.RoomService
}

func NewRoomHandler(roomService services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateRoomInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TourID = tourID

	room, err := h.roomService.CreateRoom(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTour возвращает номера тура вместе с текущей заполненностью.
func (h *RoomHandler) ListByTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rooms, err := h.roomService.ListRooms(r.Context(), tourID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rooms": rooms}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	roomID, err := getIDFromURL(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateRoomInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	room, err := h.roomService.UpdateRoom(r.Context(), roomID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": room}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete снимает жильцов и удаляет номер одной операцией.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roomID, err := getIDFromURL(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roomService.DeleteRoom(r.Context(), roomID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Statistics godoc
// @Summary Сводка расселения по туру
// @Tags rooms
// @Produce json
// @Param tourID path int true "Tour ID"
// @Success 200 {object} services.RoomStatistics
// @Failure 404 {object} map[string]string "Тур не найден"
// @Security BearerAuth
// @Router /tours/{tourID}/rooms/statistics [get]
func (h *RoomHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.roomService.ComputeStatistics(r.Context(), tourID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
