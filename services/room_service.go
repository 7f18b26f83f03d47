package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/repositories"
	"golang.org/x/sync/errgroup"
)

// RoomStatistics — сводка расселения по туру.
type RoomStatistics struct {
	TotalParticipants      int `json:"total_participants"`
	AssignedParticipants   int `json:"assigned_participants"`
	UnassignedParticipants int `json:"unassigned_participants"`
	TotalCapacity          int `json:"total_capacity"`
	OccupiedCapacity       int `json:"occupied_capacity"`
	EmptyRooms             int `json:"empty_rooms"`
	CompRooms              int `json:"comp_rooms"`
}

type CreateRoomInput struct {
	TourID     int              `json:"tour_id"`
	Label      string           `json:"label"`
	Kind       *models.RoomKind `json:"kind,omitempty"`
	Sequence   int              `json:"sequence"`
	RoomNumber string           `json:"room_number"`
	Capacity   int              `json:"capacity"`
}

type UpdateRoomInput struct {
	Label      *string          `json:"label,omitempty"`
	Kind       *models.RoomKind `json:"kind,omitempty"`
	Sequence   *int             `json:"sequence,omitempty"`
	RoomNumber *string          `json:"room_number,omitempty"`
	Capacity   *int             `json:"capacity,omitempty"`
}

// RoomService поддерживает связь номер↔участник и выводит статистику
// заполнения. Инвариант вместимости обеспечивает репозиторий: проверка и
// назначение выполняются одной транзакцией.
type RoomService interface {
	CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error)
	UpdateRoom(ctx context.Context, roomID int, input UpdateRoomInput) (*models.Room, error)
	ListRooms(ctx context.Context, tourID int) ([]*models.Room, error)
	AssignRoom(ctx context.Context, participantID int, roomID *int) error
	DeleteRoom(ctx context.Context, roomID int) error
	ComputeStatistics(ctx context.Context, tourID int) (*RoomStatistics, error)
}

type roomService struct {
	roomRepo        repositories.RoomRepository
	participantRepo repositories.ParticipantRepository
	tourRepo        repositories.TourRepository
}

func NewRoomService(
	roomRepo repositories.RoomRepository,
	participantRepo repositories.ParticipantRepository,
	tourRepo repositories.TourRepository,
) RoomService {
	return &roomService{
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		tourRepo:        tourRepo,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error) {
	if input.Label == "" {
		return nil, ErrRoomLabelRequired
	}
	if input.Capacity < 0 {
		return nil, ErrRoomCapacityInvalid
	}

	// Вид номера хранится явно; при отсутствии выводится из названия
	// один раз, здесь, и дальше текст названия не разбирается.
	kind := models.InferRoomKind(input.Label)
	if input.Kind != nil {
		if !input.Kind.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrRoomKindInvalid, *input.Kind)
		}
		kind = *input.Kind
	}

	if _, err := s.tourRepo.GetByID(ctx, input.TourID); err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to check tour %d: %w", input.TourID, err)
	}

	room := &models.Room{
		TourID:     input.TourID,
		Label:      input.Label,
		Kind:       kind,
		Sequence:   input.Sequence,
		RoomNumber: input.RoomNumber,
		Capacity:   input.Capacity,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrRoomTourInvalid) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, roomID int, input UpdateRoomInput) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room %d for update: %w", roomID, err)
	}

	if input.Label != nil {
		if *input.Label == "" {
			return nil, ErrRoomLabelRequired
		}
		room.Label = *input.Label
	}
	if input.Kind != nil {
		if !input.Kind.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrRoomKindInvalid, *input.Kind)
		}
		room.Kind = *input.Kind
	}
	if input.Sequence != nil {
		room.Sequence = *input.Sequence
	}
	if input.RoomNumber != nil {
		room.RoomNumber = *input.RoomNumber
	}
	if input.Capacity != nil {
		// Уменьшение вместимости ниже текущей занятости не ломает
		// инвариант задним числом: новые назначения просто будут
		// отклоняться, пока занятость не опустится ниже лимита.
		if *input.Capacity < 0 {
			return nil, ErrRoomCapacityInvalid
		}
		room.Capacity = *input.Capacity
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to update room %d: %w", roomID, err)
	}
	return room, nil
}

func (s *roomService) ListRooms(ctx context.Context, tourID int) ([]*models.Room, error) {
	rooms, err := s.roomRepo.ListByTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms for tour %d: %w", tourID, err)
	}
	return rooms, nil
}

// AssignRoom назначает участника в номер или (при roomID == nil) снимает
// назначение. Заполненный номер отклоняет назначение без каких-либо
// изменений состояния.
func (s *roomService) AssignRoom(ctx context.Context, participantID int, roomID *int) error {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to check participant %d: %w", participantID, err)
	}

	if roomID == nil {
		if err := s.roomRepo.ClearParticipantRoom(ctx, participantID); err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return ErrParticipantNotFound
			}
			return fmt.Errorf("failed to clear room of participant %d: %w", participantID, err)
		}
		return nil
	}

	room, err := s.roomRepo.GetByID(ctx, *roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to check room %d: %w", *roomID, err)
	}
	if room.TourID != participant.TourID {
		return fmt.Errorf("%w: participant and room belong to different tours", ErrValidationFailed)
	}

	if err := s.roomRepo.AssignParticipant(ctx, participantID, *roomID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomCapacityFull):
			return ErrRoomCapacityFull
		case errors.Is(err, repositories.ErrRoomNotFound):
			return ErrRoomNotFound
		case errors.Is(err, repositories.ErrParticipantNotFound):
			return ErrParticipantNotFound
		default:
			return fmt.Errorf("failed to assign participant %d to room %d: %w", participantID, *roomID, err)
		}
	}
	return nil
}

// DeleteRoom удаляет номер, предварительно сняв с него всех участников;
// обе операции — одна транзакция в репозитории.
func (s *roomService) DeleteRoom(ctx context.Context, roomID int) error {
	if err := s.roomRepo.DeleteCascade(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to delete room %d: %w", roomID, err)
	}
	return nil
}

func (s *roomService) ComputeStatistics(ctx context.Context, tourID int) (*RoomStatistics, error) {
	if _, err := s.tourRepo.GetByID(ctx, tourID); err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to check tour %d: %w", tourID, err)
	}

	stats := &RoomStatistics{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.participantRepo.CountByTour(gCtx, tourID)
		if err != nil {
			return err
		}
		stats.TotalParticipants = total
		return nil
	})
	g.Go(func() error {
		assigned, err := s.participantRepo.CountAssignedByTour(gCtx, tourID)
		if err != nil {
			return err
		}
		stats.AssignedParticipants = assigned
		return nil
	})
	g.Go(func() error {
		capacity, err := s.roomRepo.TotalCapacity(gCtx, tourID)
		if err != nil {
			return err
		}
		stats.TotalCapacity = capacity
		return nil
	})
	g.Go(func() error {
		empty, err := s.roomRepo.CountEmpty(gCtx, tourID)
		if err != nil {
			return err
		}
		stats.EmptyRooms = empty
		return nil
	})
	g.Go(func() error {
		comp, err := s.roomRepo.CountComp(gCtx, tourID)
		if err != nil {
			return err
		}
		stats.CompRooms = comp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute room statistics for tour %d: %w", tourID, err)
	}

	stats.UnassignedParticipants = stats.TotalParticipants - stats.AssignedParticipants
	stats.OccupiedCapacity = stats.AssignedParticipants
	return stats, nil
}
