package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/repositories"
)

type CreateTourInput struct {
	Title       string    `json:"title"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CourseNames []string  `json:"course_names"`
	DriverName  *string   `json:"driver_name,omitempty"`
	DriverPhone *string   `json:"driver_phone,omitempty"`
}

type UpdateTourInput struct {
	Title       *string    `json:"title,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CourseNames *[]string  `json:"course_names,omitempty"`
	DriverName  *string    `json:"driver_name,omitempty"`
	DriverPhone *string    `json:"driver_phone,omitempty"`
}

type TourService interface {
	CreateTour(ctx context.Context, input CreateTourInput) (*models.Tour, error)
	GetTourByID(ctx context.Context, id int) (*models.Tour, error)
	ListTours(ctx context.Context, statusFilter *models.TourStatus) ([]*models.Tour, error)
	UpdateTour(ctx context.Context, id int, input UpdateTourInput) (*models.Tour, error)
	ChangeStatus(ctx context.Context, id int, status models.TourStatus) (*models.Tour, error)
	DeleteTour(ctx context.Context, id int) error
	AutoCompleteFinishedTours(ctx context.Context) error
}

type tourService struct {
	repo   repositories.TourRepository
	logger *slog.Logger
}

func NewTourService(repo repositories.TourRepository, logger *slog.Logger) TourService {
	return &tourService{repo: repo, logger: logger}
}

func (s *tourService) CreateTour(ctx context.Context, input CreateTourInput) (*models.Tour, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTourTitleRequired
	}
	if err := validateTourDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	tour := &models.Tour{
		Title:       title,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CourseNames: input.CourseNames,
		DriverName:  input.DriverName,
		DriverPhone: input.DriverPhone,
		Status:      models.TourStatusDraft,
	}
	if tour.CourseNames == nil {
		tour.CourseNames = []string{}
	}
	if err := s.repo.Create(ctx, tour); err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}
	return tour, nil
}

func (s *tourService) GetTourByID(ctx context.Context, id int) (*models.Tour, error) {
	tour, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to get tour %d: %w", id, err)
	}
	return tour, nil
}

func (s *tourService) ListTours(ctx context.Context, statusFilter *models.TourStatus) ([]*models.Tour, error) {
	if statusFilter != nil {
		switch *statusFilter {
		case models.TourStatusDraft, models.TourStatusConfirmed, models.TourStatusCompleted, models.TourStatusCanceled:
		default:
			return nil, fmt.Errorf("%w: %q", ErrTourInvalidStatus, *statusFilter)
		}
	}
	tours, err := s.repo.List(ctx, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}

func (s *tourService) UpdateTour(ctx context.Context, id int, input UpdateTourInput) (*models.Tour, error) {
	tour, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to get tour %d for update: %w", id, err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTourTitleRequired
		}
		tour.Title = title
	}
	if input.StartDate != nil {
		tour.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tour.EndDate = *input.EndDate
	}
	if err := validateTourDates(tour.StartDate, tour.EndDate); err != nil {
		return nil, err
	}
	if input.CourseNames != nil {
		tour.CourseNames = *input.CourseNames
		if tour.CourseNames == nil {
			tour.CourseNames = []string{}
		}
	}
	if input.DriverName != nil {
		tour.DriverName = input.DriverName
	}
	if input.DriverPhone != nil {
		tour.DriverPhone = input.DriverPhone
	}

	if err := s.repo.Update(ctx, tour); err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to update tour %d: %w", id, err)
	}
	return tour, nil
}

func (s *tourService) ChangeStatus(ctx context.Context, id int, status models.TourStatus) (*models.Tour, error) {
	switch status {
	case models.TourStatusDraft, models.TourStatusConfirmed, models.TourStatusCompleted, models.TourStatusCanceled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrTourInvalidStatus, status)
	}

	tour, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to get tour %d for status change: %w", id, err)
	}
	if !isValidTourStatusTransition(tour.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTourStatusTransition, tour.Status, status)
	}
	if tour.Status == status {
		return tour, nil
	}

	if err := s.repo.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to change status of tour %d: %w", id, err)
	}
	tour.Status = status
	return tour, nil
}

func (s *tourService) DeleteTour(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return ErrTourNotFound
		}
		return fmt.Errorf("failed to delete tour %d: %w", id, err)
	}
	return nil
}

// AutoCompleteFinishedTours переводит подтверждённые туры с прошедшей датой
// окончания в статус completed. Вызывается планировщиком из main.
func (s *tourService) AutoCompleteFinishedTours(ctx context.Context) error {
	tours, err := s.repo.ListForAutoCompletion(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to list tours for auto completion: %w", err)
	}
	for _, tour := range tours {
		if err := s.repo.UpdateStatus(ctx, nil, tour.ID, models.TourStatusCompleted); err != nil {
			s.logger.Error("failed to auto-complete tour",
				slog.Int("tour_id", tour.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tour auto-completed",
			slog.Int("tour_id", tour.ID), slog.String("title", tour.Title))
	}
	return nil
}
