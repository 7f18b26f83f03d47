package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/repositories"
)

// DefaultAdvisoryTeamSize — сколько игроков обычно составляют команду.
// Это рекомендация, а не жёсткий лимит: движок не отклоняет пятого игрока,
// но помечает такие слоты, чтобы UI мог предупредить оператора.
const DefaultAdvisoryTeamSize = 4

type CreateTeeTimeInput struct {
	TourID      int      `json:"tour_id"`
	PlayDate    string   `json:"play_date"`
	Course      string   `json:"course"`
	TeeTime     string   `json:"tee_time"`
	Players     []string `json:"players"`
	TeamOrdinal *int     `json:"team_ordinal,omitempty"`
}

type UpdateTeeTimeInput struct {
	PlayDate    *string   `json:"play_date,omitempty"`
	Course      *string   `json:"course,omitempty"`
	TeeTime     *string   `json:"tee_time,omitempty"`
	Players     *[]string `json:"players,omitempty"`
	TeamOrdinal *int      `json:"team_ordinal,omitempty"`
}

type BulkGenerateInput struct {
	TourID          int    `json:"tour_id"`
	PlayDate        string `json:"play_date"`
	Course          string `json:"course"`
	StartTime       string `json:"start_time"`
	IntervalMinutes int    `json:"interval_minutes"`
	Count           int    `json:"count"`
}

type MovePlayerInput struct {
	Player     string `json:"player"`
	FromSlotID int    `json:"from_slot_id"`
	ToSlotID   int    `json:"to_slot_id"`
}

// TeeTimeSlotView дополняет слот рекомендацией по размеру команды.
type TeeTimeSlotView struct {
	*models.TeeTimeSlot
	PlayerCount  int  `json:"player_count"`
	OverAdvisory bool `json:"over_advisory"`
}

// TeeTimeService ведёт командные слоты по (тур, дата, поле): выдача
// командных номеров, пакетная генерация расписания и перенос игроков
// между слотами.
type TeeTimeService interface {
	CreateSlot(ctx context.Context, input CreateTeeTimeInput) (*TeeTimeSlotView, error)
	UpdateSlot(ctx context.Context, slotID int, input UpdateTeeTimeInput) (*TeeTimeSlotView, error)
	DeleteSlot(ctx context.Context, slotID int) error
	DeleteSlotsForDate(ctx context.Context, tourID int, playDate string) (int, error)
	BulkGenerate(ctx context.Context, input BulkGenerateInput) ([]*TeeTimeSlotView, error)
	MovePlayer(ctx context.Context, input MovePlayerInput) error
	ListByTour(ctx context.Context, tourID int) ([]*TeeTimeSlotView, error)
	ListByTourAndDate(ctx context.Context, tourID int, playDate string) ([]*TeeTimeSlotView, error)
}

type teeTimeService struct {
	repo         repositories.TeeTimeRepository
	tourRepo     repositories.TourRepository
	advisorySize int
}

func NewTeeTimeService(repo repositories.TeeTimeRepository, tourRepo repositories.TourRepository, advisorySize int) TeeTimeService {
	if advisorySize <= 0 {
		advisorySize = DefaultAdvisoryTeamSize
	}
	return &teeTimeService{
		repo:         repo,
		tourRepo:     tourRepo,
		advisorySize: advisorySize,
	}
}

func (s *teeTimeService) view(slot *models.TeeTimeSlot) *TeeTimeSlotView {
	return &TeeTimeSlotView{
		TeeTimeSlot:  slot,
		PlayerCount:  len(slot.Players),
		OverAdvisory: len(slot.Players) > s.advisorySize,
	}
}

func (s *teeTimeService) views(slots []*models.TeeTimeSlot) []*TeeTimeSlotView {
	out := make([]*TeeTimeSlotView, len(slots))
	for i, slot := range slots {
		out[i] = s.view(slot)
	}
	return out
}

func parsePlayDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, ErrTeeTimeDateRequired
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: play date must be YYYY-MM-DD, got %q", ErrValidationFailed, raw)
	}
	return d, nil
}

func (s *teeTimeService) CreateSlot(ctx context.Context, input CreateTeeTimeInput) (*TeeTimeSlotView, error) {
	playDate, err := parsePlayDate(input.PlayDate)
	if err != nil {
		return nil, err
	}
	course := strings.TrimSpace(input.Course)
	if course == "" {
		return nil, ErrTeeTimeCourseRequired
	}
	teeMinutes, err := parseClock(input.TeeTime)
	if err != nil {
		return nil, err
	}

	slot := &models.TeeTimeSlot{
		TourID:   input.TourID,
		PlayDate: playDate,
		Course:   course,
		TeeTime:  formatClock(teeMinutes),
		Players:  input.Players,
	}
	if slot.Players == nil {
		slot.Players = []string{}
	}
	if input.TeamOrdinal != nil {
		if *input.TeamOrdinal < 1 {
			return nil, ErrTeeTimeInvalidOrdinal
		}
		slot.TeamOrdinal = *input.TeamOrdinal
	}

	if err := s.repo.CreateWithOrdinal(ctx, slot); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeeTimeOrdinalConflict):
			return nil, ErrTeamOrdinalConflict
		case errors.Is(err, repositories.ErrTeeTimeTourInvalid):
			return nil, ErrTourNotFound
		default:
			return nil, fmt.Errorf("failed to create tee time slot: %w", err)
		}
	}
	return s.view(slot), nil
}

func (s *teeTimeService) UpdateSlot(ctx context.Context, slotID int, input UpdateTeeTimeInput) (*TeeTimeSlotView, error) {
	slot, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeeTimeSlotNotFound) {
			return nil, ErrTeeTimeSlotNotFound
		}
		return nil, fmt.Errorf("failed to get tee time slot %d: %w", slotID, err)
	}

	if input.PlayDate != nil {
		playDate, err := parsePlayDate(*input.PlayDate)
		if err != nil {
			return nil, err
		}
		slot.PlayDate = playDate
	}
	if input.Course != nil {
		course := strings.TrimSpace(*input.Course)
		if course == "" {
			return nil, ErrTeeTimeCourseRequired
		}
		slot.Course = course
	}
	if input.TeeTime != nil {
		teeMinutes, err := parseClock(*input.TeeTime)
		if err != nil {
			return nil, err
		}
		slot.TeeTime = formatClock(teeMinutes)
	}
	if input.TeamOrdinal != nil {
		if *input.TeamOrdinal < 1 {
			return nil, ErrTeeTimeInvalidOrdinal
		}
		slot.TeamOrdinal = *input.TeamOrdinal
	}
	if input.Players != nil {
		slot.Players = *input.Players
		if slot.Players == nil {
			slot.Players = []string{}
		}
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeeTimeSlotNotFound):
			return nil, ErrTeeTimeSlotNotFound
		case errors.Is(err, repositories.ErrTeeTimeOrdinalConflict):
			return nil, ErrTeamOrdinalConflict
		default:
			return nil, fmt.Errorf("failed to update tee time slot %d: %w", slotID, err)
		}
	}
	return s.view(slot), nil
}

func (s *teeTimeService) DeleteSlot(ctx context.Context, slotID int) error {
	if err := s.repo.Delete(ctx, slotID); err != nil {
		if errors.Is(err, repositories.ErrTeeTimeSlotNotFound) {
			return ErrTeeTimeSlotNotFound
		}
		return fmt.Errorf("failed to delete tee time slot %d: %w", slotID, err)
	}
	return nil
}

func (s *teeTimeService) DeleteSlotsForDate(ctx context.Context, tourID int, playDate string) (int, error) {
	date, err := parsePlayDate(playDate)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByTourAndDate(ctx, tourID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tee time slots of tour %d for %s: %w", tourID, playDate, err)
	}
	return deleted, nil
}

// BulkGenerate создаёт count пустых слотов с шагом interval минут начиная
// со startTime. Командные номера продолжают текущий максимум даты и поля.
// Серия, уходящая за полночь, отклоняется целиком: суточного переноса у
// расписания нет, и частично сгенерированный день оператору не нужен.
func (s *teeTimeService) BulkGenerate(ctx context.Context, input BulkGenerateInput) ([]*TeeTimeSlotView, error) {
	playDate, err := parsePlayDate(input.PlayDate)
	if err != nil {
		return nil, err
	}
	course := strings.TrimSpace(input.Course)
	if course == "" {
		return nil, ErrTeeTimeCourseRequired
	}
	if input.IntervalMinutes <= 0 {
		return nil, ErrTeeTimeInvalidInterval
	}
	if input.Count <= 0 {
		return nil, ErrTeeTimeInvalidCount
	}
	start, err := parseClock(input.StartTime)
	if err != nil {
		return nil, err
	}
	if start+(input.Count-1)*input.IntervalMinutes >= 24*60 {
		return nil, ErrTeeTimePastMidnight
	}

	teeTimes := make([]string, input.Count)
	for i := 0; i < input.Count; i++ {
		teeTimes[i] = formatClock(start + i*input.IntervalMinutes)
	}

	slots, err := s.repo.BulkCreate(ctx, input.TourID, playDate, course, teeTimes)
	if err != nil {
		if errors.Is(err, repositories.ErrTeeTimeTourInvalid) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to bulk generate tee time slots: %w", err)
	}
	return s.views(slots), nil
}

// MovePlayer атомарно переносит игрока между слотами: удаление из
// исходного состава и добавление в целевой — одна транзакция, промежуточное
// состояние (игрок в обоих слотах или ни в одном) недостижимо.
func (s *teeTimeService) MovePlayer(ctx context.Context, input MovePlayerInput) error {
	player := strings.TrimSpace(input.Player)
	if player == "" {
		return ErrTeeTimePlayerRequired
	}

	if err := s.repo.MovePlayer(ctx, player, input.FromSlotID, input.ToSlotID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeeTimeSlotNotFound):
			return ErrTeeTimeSlotNotFound
		case errors.Is(err, repositories.ErrTeeTimePlayerNotFound):
			return ErrPlayerNotInSlot
		default:
			return fmt.Errorf("failed to move player %q from slot %d to slot %d: %w",
				player, input.FromSlotID, input.ToSlotID, err)
		}
	}
	return nil
}

func (s *teeTimeService) ListByTour(ctx context.Context, tourID int) ([]*TeeTimeSlotView, error) {
	slots, err := s.repo.ListByTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tee time slots for tour %d: %w", tourID, err)
	}
	return s.views(slots), nil
}

func (s *teeTimeService) ListByTourAndDate(ctx context.Context, tourID int, playDate string) ([]*TeeTimeSlotView, error) {
	date, err := parsePlayDate(playDate)
	if err != nil {
		return nil, err
	}
	slots, err := s.repo.ListByTourAndDate(ctx, tourID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list tee time slots of tour %d for %s: %w", tourID, playDate, err)
	}
	return s.views(slots), nil
}
