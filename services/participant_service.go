package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/repositories"
)

type CreateParticipantInput struct {
	TourID    int     `json:"tour_id"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone,omitempty"`
	TeamLabel *string `json:"team_label,omitempty"`
}

type UpdateParticipantInput struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	TeamLabel *string `json:"team_label,omitempty"`
}

// ParticipantService — CRUD справочника участников. Назначение в номер
// сюда не входит: room_id участника пишет только RoomService.
type ParticipantService interface {
	CreateParticipant(ctx context.Context, input CreateParticipantInput) (*models.Participant, error)
	GetParticipantByID(ctx context.Context, id int) (*models.Participant, error)
	ListParticipantsByTour(ctx context.Context, tourID int) ([]*models.Participant, error)
	UpdateParticipant(ctx context.Context, id int, input UpdateParticipantInput) (*models.Participant, error)
	DeleteParticipant(ctx context.Context, id int) error
}

type participantService struct {
	repo     repositories.ParticipantRepository
	tourRepo repositories.TourRepository
}

func NewParticipantService(repo repositories.ParticipantRepository, tourRepo repositories.TourRepository) ParticipantService {
	return &participantService{repo: repo, tourRepo: tourRepo}
}

func (s *participantService) CreateParticipant(ctx context.Context, input CreateParticipantInput) (*models.Participant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrParticipantNameRequired
	}

	if _, err := s.tourRepo.GetByID(ctx, input.TourID); err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to check tour %d: %w", input.TourID, err)
	}

	participant := &models.Participant{
		TourID:    input.TourID,
		Name:      name,
		Phone:     input.Phone,
		TeamLabel: input.TeamLabel,
	}
	if err := s.repo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantTourInvalid) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	return participant, nil
}

func (s *participantService) GetParticipantByID(ctx context.Context, id int) (*models.Participant, error) {
	participant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant %d: %w", id, err)
	}
	return participant, nil
}

func (s *participantService) ListParticipantsByTour(ctx context.Context, tourID int) ([]*models.Participant, error) {
	participants, err := s.repo.ListByTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tour %d: %w", tourID, err)
	}
	return participants, nil
}

func (s *participantService) UpdateParticipant(ctx context.Context, id int, input UpdateParticipantInput) (*models.Participant, error) {
	participant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant %d for update: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrParticipantNameRequired
		}
		participant.Name = name
	}
	if input.Phone != nil {
		participant.Phone = input.Phone
	}
	if input.TeamLabel != nil {
		participant.TeamLabel = input.TeamLabel
	}

	if err := s.repo.Update(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to update participant %d: %w", id, err)
	}
	return participant, nil
}

func (s *participantService) DeleteParticipant(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to delete participant %d: %w", id, err)
	}
	return nil
}
