package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/greenfee/tourops/models"
)

// --- Общие хелперы ---

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const clockLayout = "15:04"

// parseClock разбирает время вида "06:40" в минуты от полуночи.
func parseClock(clock string) (int, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrTeeTimeInvalidClock, clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func validateTourDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrTourInvalidDateRange)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start date (%s) must be before end date (%s)",
			ErrTourInvalidDateRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}

func isValidTourStatusTransition(current, next models.TourStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TourStatus][]models.TourStatus{
		models.TourStatusDraft:     {models.TourStatusConfirmed, models.TourStatusCanceled},
		models.TourStatusConfirmed: {models.TourStatusCompleted, models.TourStatusCanceled},
		models.TourStatusCompleted: {},
		models.TourStatusCanceled:  {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}
