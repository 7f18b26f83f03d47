package handlers

import (
	"errors"
	"net/http"

	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/services"
)

type TourHandler struct {
	tourService services.TourService
}

func NewTourHandler(tourService services.TourService) *TourHandler {
	return &TourHandler{tourService: tourService}
}

func (h *TourHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTourInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tour, err := h.tourService.CreateTour(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tour, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TourHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tour, err := h.tourService.GetTourByID(r.Context(), tourID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tour, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List отдаёт туры, опционально отфильтрованные по ?status=.
func (h *TourHandler) List(w http.ResponseWriter, r *http.Request) {
	var statusFilter *models.TourStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TourStatus(raw)
		if !status.Valid() {
			badRequestResponse(w, r, errors.New("invalid tour status filter"))
			return
		}
		statusFilter = &status
	}

	tours, err := h.tourService.ListTours(r.Context(), statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tours": tours}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TourHandler) Update(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTourInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tour, err := h.tourService.UpdateTour(r.Context(), tourID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tour, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TourHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.TourStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tour, err := h.tourService.ChangeStatus(r.Context(), tourID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tour, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TourHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tourService.DeleteTour(r.Context(), tourID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
