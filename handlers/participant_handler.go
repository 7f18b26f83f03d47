package handlers

import (
	"net/http"

	"github.com/greenfee/tourops/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
	roomService        services.RoomService
}

func NewParticipantHandler(ps services.ParticipantService, rs services.RoomService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
		roomService:        rs,
	}
}

// Create godoc
// @Summary Добавить участника в тур
// @Tags participants
// @Accept json
// @Produce json
// @Param tourID path int true "Tour ID"
// @Success 201 {object} map[string]interface{} "Участник создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Тур не найден"
// @Security BearerAuth
// @Router /tours/{tourID}/participants [post]
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TourID = tourID

	participant, err := h.participantService.CreateParticipant(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTour godoc
// @Summary Список участников тура
// @Tags participants
// @Produce json
// @Param tourID path int true "Tour ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Тур не найден"
// @Security BearerAuth
// @Router /tours/{tourID}/participants [get]
func (h *ParticipantHandler) ListByTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListParticipantsByTour(r.Context(), tourID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.GetParticipantByID(r.Context(), participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.UpdateParticipant(r.Context(), participantID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.participantService.DeleteParticipant(r.Context(), participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignRoom godoc
// @Summary Назначить участника в номер (null — снять назначение)
// @Tags participants
// @Accept json
// @Param participantID path int true "Participant ID"
// @Success 204 "Назначение изменено"
// @Failure 400 {object} map[string]string "Номер из другого тура"
// @Failure 404 {object} map[string]string "Участник или номер не найден"
// @Failure 409 {object} map[string]string "Номер заполнен"
// @Security BearerAuth
// @Router /participants/{participantID}/room [put]
func (h *ParticipantHandler) AssignRoom(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoomID *int `json:"room_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roomService.AssignRoom(r.Context(), participantID, input.RoomID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
