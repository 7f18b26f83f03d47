package handlers

import (
	"errors"
	"net/http"

	"github.com/greenfee/tourops/services"
)

type TeeTimeHandler struct {
	teeTimeService services.TeeTimeService
}

func NewTeeTimeHandler(teeTimeService services.TeeTimeService) *TeeTimeHandler {
	return &TeeTimeHandler{teeTimeService: teeTimeService}
}

func (h *TeeTimeHandler) Create(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateTeeTimeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TourID = tourID

	slot, err := h.teeTimeService.CreateSlot(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"slot": slot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTour отдаёт слоты тура; ?date=YYYY-MM-DD сужает выборку до одного
// игрового дня.
func (h *TeeTimeHandler) ListByTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var slots []*services.TeeTimeSlotView
	if date := r.URL.Query().Get("date"); date != "" {
		slots, err = h.teeTimeService.ListByTourAndDate(r.Context(), tourID, date)
	} else {
		slots, err = h.teeTimeService.ListByTour(r.Context(), tourID)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slots": slots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeeTimeHandler) Update(w http.ResponseWriter, r *http.Request) {
	slotID, err := getIDFromURL(r, "slotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTeeTimeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slot, err := h.teeTimeService.UpdateSlot(r.Context(), slotID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slot": slot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeeTimeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slotID, err := getIDFromURL(r, "slotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teeTimeService.DeleteSlot(r.Context(), slotID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByDate удаляет все слоты тура за игровой день вместе со счётчиком
// командных номеров; следующая генерация начнётся с первой команды.
func (h *TeeTimeHandler) DeleteByDate(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		badRequestResponse(w, r, errors.New("query parameter 'date' is required"))
		return
	}

	deleted, err := h.teeTimeService.DeleteSlotsForDate(r.Context(), tourID, date)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BulkGenerate godoc
// @Summary Сгенерировать серию слотов с равным интервалом
// @Tags teetimes
// @Accept json
// @Produce json
// @Param tourID path int true "Tour ID"
// @Success 201 {object} map[string]interface{} "Созданные слоты"
// @Failure 400 {object} map[string]string "Ошибка валидации / выход за полночь"
// @Failure 404 {object} map[string]string "Тур не найден"
// @Security BearerAuth
// @Router /tours/{tourID}/teetimes/generate [post]
func (h *TeeTimeHandler) BulkGenerate(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.BulkGenerateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TourID = tourID

	slots, err := h.teeTimeService.BulkGenerate(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"slots": slots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MovePlayer переносит игрока между слотами одной транзакцией.
func (h *TeeTimeHandler) MovePlayer(w http.ResponseWriter, r *http.Request) {
	var input services.MovePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teeTimeService.MovePlayer(r.Context(), input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
