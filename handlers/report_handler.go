package handlers

import (
	"net/http"

	"github.com/greenfee/tourops/report"
	"github.com/greenfee/tourops/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func overrideFromQuery(r *http.Request) report.StaffOverride {
	q := r.URL.Query()
	return report.StaffOverride{
		DriverName:  q.Get("driver_name"),
		DriverPhone: q.Get("driver_phone"),
	}
}

// Render отдаёт готовую HTML-таблицу расселения. Контакты водителя можно
// подменить на время просмотра через ?driver_name= и ?driver_phone=.
func (h *ReportHandler) Render(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	html, err := h.reportService.Render(r.Context(), tourID, overrideFromQuery(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// Export godoc
// @Summary Выгрузить отчёт о расселении в архив
// @Tags reports
// @Accept json
// @Produce json
// @Param tourID path int true "Tour ID"
// @Success 200 {object} services.ExportResult
// @Failure 404 {object} map[string]string "Тур не найден"
// @Security BearerAuth
// @Router /tours/{tourID}/report/export [post]
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	tourID, err := getIDFromURL(r, "tourID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var override report.StaffOverride
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &override); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := h.reportService.Export(r.Context(), tourID, override)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
