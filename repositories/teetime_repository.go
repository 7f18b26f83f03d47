package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/greenfee/tourops/models"
	"github.com/lib/pq"
)

var (
	ErrTeeTimeSlotNotFound    = errors.New("tee time slot not found")
	ErrTeeTimeTourInvalid     = errors.New("tee time slot tour conflict or invalid")
	ErrTeeTimeOrdinalConflict = errors.New("team ordinal already taken for this date and course")
	ErrTeeTimePlayerNotFound  = errors.New("player not found in source slot")
)

// TeeTimeRepository владеет слотами ти-таймов и счётчиками командных
// номеров. Номер команды выдаётся строкой team_counters в той же
// транзакции, что и вставка слота, поэтому параллельные вставки не могут
// получить одинаковый номер (и пересканирование max(ordinal) не нужно).
type TeeTimeRepository interface {
	CreateWithOrdinal(ctx context.Context, slot *models.TeeTimeSlot) error
	BulkCreate(ctx context.Context, tourID int, playDate time.Time, course string, teeTimes []string) ([]*models.TeeTimeSlot, error)
	GetByID(ctx context.Context, id int) (*models.TeeTimeSlot, error)
	ListByTour(ctx context.Context, tourID int) ([]*models.TeeTimeSlot, error)
	ListByTourAndDate(ctx context.Context, tourID int, playDate time.Time) ([]*models.TeeTimeSlot, error)
	Update(ctx context.Context, slot *models.TeeTimeSlot) error
	Delete(ctx context.Context, id int) error
	DeleteByTourAndDate(ctx context.Context, tourID int, playDate time.Time) (int, error)
	MovePlayer(ctx context.Context, player string, fromSlotID, toSlotID int) error
}

type postgresTeeTimeRepository struct {
	db *sql.DB
}

func NewPostgresTeeTimeRepository(db *sql.DB) TeeTimeRepository {
	return &postgresTeeTimeRepository{db: db}
}

const teeTimeColumns = `id, tour_id, play_date, course, team_ordinal, tee_time, players, created_at`

// nextOrdinal выдаёт следующий командный номер для (tour, date, course),
// атомарно сдвигая счётчик на count вперёд; возвращает первый номер блока.
func nextOrdinal(ctx context.Context, tx *sql.Tx, tourID int, playDate time.Time, course string, count int) (int, error) {
	query := `
		INSERT INTO team_counters (tour_id, play_date, course, next_ordinal)
		VALUES ($1, $2, $3, $4 + 1)
		ON CONFLICT (tour_id, play_date, course)
		DO UPDATE SET next_ordinal = team_counters.next_ordinal + $4
		RETURNING next_ordinal - $4`

	var first int
	if err := tx.QueryRowContext(ctx, query, tourID, playDate, course, count).Scan(&first); err != nil {
		return 0, fmt.Errorf("failed to reserve team ordinals: %w", err)
	}
	return first, nil
}

// bumpOrdinal поднимает счётчик как минимум до ordinal+1, чтобы явные
// номера команд не сталкивались с последующими автоматическими.
func bumpOrdinal(ctx context.Context, tx *sql.Tx, tourID int, playDate time.Time, course string, ordinal int) error {
	query := `
		INSERT INTO team_counters (tour_id, play_date, course, next_ordinal)
		VALUES ($1, $2, $3, $4 + 1)
		ON CONFLICT (tour_id, play_date, course)
		DO UPDATE SET next_ordinal = GREATEST(team_counters.next_ordinal, $4 + 1)`

	if _, err := tx.ExecContext(ctx, query, tourID, playDate, course, ordinal); err != nil {
		return fmt.Errorf("failed to bump team ordinal counter: %w", err)
	}
	return nil
}

func insertSlot(ctx context.Context, tx *sql.Tx, slot *models.TeeTimeSlot) error {
	query := `
		INSERT INTO tee_time_slots (tour_id, play_date, course, team_ordinal, tee_time, players)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := tx.QueryRowContext(ctx, query,
		slot.TourID,
		slot.PlayDate,
		slot.Course,
		slot.TeamOrdinal,
		slot.TeeTime,
		pq.Array(slot.Players),
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrTeeTimeOrdinalConflict
			case "23503":
				return ErrTeeTimeTourInvalid
			}
		}
		return fmt.Errorf("failed to create tee time slot: %w", err)
	}
	return nil
}

func (r *postgresTeeTimeRepository) CreateWithOrdinal(ctx context.Context, slot *models.TeeTimeSlot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	opErr := func() error {
		if slot.TeamOrdinal > 0 {
			if err := bumpOrdinal(ctx, tx, slot.TourID, slot.PlayDate, slot.Course, slot.TeamOrdinal); err != nil {
				return err
			}
		} else {
			ordinal, err := nextOrdinal(ctx, tx, slot.TourID, slot.PlayDate, slot.Course, 1)
			if err != nil {
				return err
			}
			slot.TeamOrdinal = ordinal
		}
		return insertSlot(ctx, tx, slot)
	}()

	return finishTx(tx, opErr)
}

// BulkCreate вставляет по слоту на каждое время из teeTimes, с пустыми
// составами и номерами команд, продолжающими текущий максимум.
func (r *postgresTeeTimeRepository) BulkCreate(ctx context.Context, tourID int, playDate time.Time, course string, teeTimes []string) ([]*models.TeeTimeSlot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	slots := make([]*models.TeeTimeSlot, 0, len(teeTimes))
	opErr := func() error {
		first, err := nextOrdinal(ctx, tx, tourID, playDate, course, len(teeTimes))
		if err != nil {
			return err
		}
		for i, teeTime := range teeTimes {
			slot := &models.TeeTimeSlot{
				TourID:      tourID,
				PlayDate:    playDate,
				Course:      course,
				TeamOrdinal: first + i,
				TeeTime:     teeTime,
				Players:     []string{},
			}
			if err := insertSlot(ctx, tx, slot); err != nil {
				return err
			}
			slots = append(slots, slot)
		}
		return nil
	}()

	if err := finishTx(tx, opErr); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *postgresTeeTimeRepository) scanSlot(rowScanner interface {
	Scan(dest ...interface{}) error
}, s *models.TeeTimeSlot) error {
	return rowScanner.Scan(
		&s.ID,
		&s.TourID,
		&s.PlayDate,
		&s.Course,
		&s.TeamOrdinal,
		&s.TeeTime,
		pq.Array(&s.Players),
		&s.CreatedAt,
	)
}

func (r *postgresTeeTimeRepository) GetByID(ctx context.Context, id int) (*models.TeeTimeSlot, error) {
	query := `SELECT ` + teeTimeColumns + ` FROM tee_time_slots WHERE id = $1`
	s := &models.TeeTimeSlot{}
	err := r.scanSlot(r.db.QueryRowContext(ctx, query, id), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeeTimeSlotNotFound
		}
		return nil, fmt.Errorf("failed to find tee time slot: %w", err)
	}
	return s, nil
}

func (r *postgresTeeTimeRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.TeeTimeSlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tee time slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*models.TeeTimeSlot, 0)
	for rows.Next() {
		var s models.TeeTimeSlot
		if err := r.scanSlot(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan tee time slot row: %w", err)
		}
		slots = append(slots, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tee time slot rows: %w", err)
	}
	return slots, nil
}

func (r *postgresTeeTimeRepository) ListByTour(ctx context.Context, tourID int) ([]*models.TeeTimeSlot, error) {
	query := `SELECT ` + teeTimeColumns + ` FROM tee_time_slots
		WHERE tour_id = $1
		ORDER BY play_date ASC, course ASC, team_ordinal ASC`
	return r.list(ctx, query, tourID)
}

func (r *postgresTeeTimeRepository) ListByTourAndDate(ctx context.Context, tourID int, playDate time.Time) ([]*models.TeeTimeSlot, error) {
	query := `SELECT ` + teeTimeColumns + ` FROM tee_time_slots
		WHERE tour_id = $1 AND play_date = $2
		ORDER BY course ASC, team_ordinal ASC`
	return r.list(ctx, query, tourID, playDate)
}

func (r *postgresTeeTimeRepository) Update(ctx context.Context, slot *models.TeeTimeSlot) error {
	query := `
		UPDATE tee_time_slots
		SET play_date = $1, course = $2, team_ordinal = $3, tee_time = $4, players = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		slot.PlayDate, slot.Course, slot.TeamOrdinal, slot.TeeTime, pq.Array(slot.Players), slot.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeeTimeOrdinalConflict
		}
		return fmt.Errorf("failed to update tee time slot: %w", err)
	}
	return checkAffectedRows(result, ErrTeeTimeSlotNotFound)
}

// Delete удаляет слот, не перенумеровывая оставшиеся команды.
func (r *postgresTeeTimeRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tee_time_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tee time slot: %w", err)
	}
	return checkAffectedRows(result, ErrTeeTimeSlotNotFound)
}

// DeleteByTourAndDate каскадно удаляет все слоты даты (по всем полям)
// вместе со счётчиками этой даты, чтобы следующая генерация начиналась с 1.
func (r *postgresTeeTimeRepository) DeleteByTourAndDate(ctx context.Context, tourID int, playDate time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var deleted int64
	opErr := func() error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM tee_time_slots WHERE tour_id = $1 AND play_date = $2`, tourID, playDate)
		if err != nil {
			return fmt.Errorf("failed to delete tee time slots for date: %w", err)
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM team_counters WHERE tour_id = $1 AND play_date = $2`, tourID, playDate); err != nil {
			return fmt.Errorf("failed to delete team counters for date: %w", err)
		}
		return nil
	}()

	if err := finishTx(tx, opErr); err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// MovePlayer переносит первое точное вхождение токена из исходного слота в
// конец состава целевого. Обе строки блокируются в порядке возрастания id
// (во избежание взаимной блокировки), обе записи — одна транзакция: токен
// не может оказаться ни в обоих слотах сразу, ни в одном из них.
func (r *postgresTeeTimeRepository) MovePlayer(ctx context.Context, player string, fromSlotID, toSlotID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	opErr := func() error {
		lockOrder := []int{fromSlotID, toSlotID}
		if toSlotID < fromSlotID {
			lockOrder = []int{toSlotID, fromSlotID}
		}

		rosters := make(map[int][]string, 2)
		for _, id := range lockOrder {
			if _, seen := rosters[id]; seen {
				continue
			}
			var players []string
			err := tx.QueryRowContext(ctx,
				`SELECT players FROM tee_time_slots WHERE id = $1 FOR UPDATE`, id).Scan(pq.Array(&players))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrTeeTimeSlotNotFound
				}
				return fmt.Errorf("failed to lock tee time slot %d: %w", id, err)
			}
			rosters[id] = players
		}

		source := rosters[fromSlotID]
		idx := -1
		for i, p := range source {
			if p == player {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrTeeTimePlayerNotFound
		}

		source = append(append([]string{}, source[:idx]...), source[idx+1:]...)
		rosters[fromSlotID] = source
		rosters[toSlotID] = append(rosters[toSlotID], player)

		for id, players := range rosters {
			if _, err := tx.ExecContext(ctx,
				`UPDATE tee_time_slots SET players = $1 WHERE id = $2`, pq.Array(players), id); err != nil {
				return fmt.Errorf("failed to update roster of slot %d: %w", id, err)
			}
		}
		return nil
	}()

	return finishTx(tx, opErr)
}
