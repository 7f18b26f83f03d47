package models

import "time"

// TourStatus представляет статусы тура, соответствующие ENUM в БД.
type TourStatus string

const (
	TourStatusDraft     TourStatus = "draft"
	TourStatusConfirmed TourStatus = "confirmed"
	TourStatusCompleted TourStatus = "completed"
	TourStatusCanceled  TourStatus = "canceled"
)

func (s TourStatus) Valid() bool {
	switch s {
	case TourStatusDraft, TourStatusConfirmed, TourStatusCompleted, TourStatusCanceled:
		return true
	}
	return false
}

// Tour представляет один гольф-тур: даты, поля и контакты водителя,
// которые использует генератор отчёта о расселении.
type Tour struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     time.Time  `json:"end_date" db:"end_date"`
	CourseNames []string   `json:"course_names" db:"course_names"`
	DriverName  *string    `json:"driver_name,omitempty" db:"driver_name"`
	DriverPhone *string    `json:"driver_phone,omitempty" db:"driver_phone"`
	Status      TourStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
