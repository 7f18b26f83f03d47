package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greenfee/tourops/models"
	"github.com/lib/pq"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomTourInvalid  = errors.New("room tour conflict or invalid")
	ErrRoomCapacityFull = errors.New("room capacity exceeded")
)

// RoomRepository владеет таблицей rooms и единственным полем участника,
// которое пишет движок расселения — participants.room_id. Проверка
// вместимости и назначение выполняются одной транзакцией с блокировкой
// строки номера, чтобы два параллельных назначения не дали перелимит.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id int) (*models.Room, error)
	ListByTour(ctx context.Context, tourID int) ([]*models.Room, error)
	Update(ctx context.Context, room *models.Room) error

	AssignParticipant(ctx context.Context, participantID, roomID int) error
	ClearParticipantRoom(ctx context.Context, participantID int) error
	DeleteCascade(ctx context.Context, roomID int) error

	TotalCapacity(ctx context.Context, tourID int) (int, error)
	CountEmpty(ctx context.Context, tourID int) (int, error)
	CountComp(ctx context.Context, tourID int) (int, error)
}

type postgresRoomRepository struct {
	db *sql.DB
}

func NewPostgresRoomRepository(db *sql.DB) RoomRepository {
	return &postgresRoomRepository{db: db}
}

func (r *postgresRoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (tour_id, label, kind, sequence, room_number, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		room.TourID,
		room.Label,
		room.Kind,
		room.Sequence,
		room.RoomNumber,
		room.Capacity,
	).Scan(&room.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRoomTourInvalid
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *postgresRoomRepository) GetByID(ctx context.Context, id int) (*models.Room, error) {
	query := `SELECT id, tour_id, label, kind, sequence, room_number, capacity FROM rooms WHERE id = $1`
	room := &models.Room{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID, &room.TourID, &room.Label, &room.Kind, &room.Sequence, &room.RoomNumber, &room.Capacity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return room, nil
}

// ListByTour возвращает номера тура вместе с текущим числом жильцов.
func (r *postgresRoomRepository) ListByTour(ctx context.Context, tourID int) ([]*models.Room, error) {
	query := `
		SELECT r.id, r.tour_id, r.label, r.kind, r.sequence, r.room_number, r.capacity,
		       COUNT(p.id) AS occupants
		FROM rooms r
		LEFT JOIN participants p ON p.room_id = r.id
		WHERE r.tour_id = $1
		GROUP BY r.id
		ORDER BY r.sequence ASC, r.room_number ASC, r.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms by tour: %w", err)
	}
	defer rows.Close()

	rooms := make([]*models.Room, 0)
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(
			&room.ID, &room.TourID, &room.Label, &room.Kind, &room.Sequence,
			&room.RoomNumber, &room.Capacity, &room.Occupants,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		rooms = append(rooms, &room)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room rows: %w", err)
	}
	return rooms, nil
}

func (r *postgresRoomRepository) Update(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET label = $1, kind = $2, sequence = $3, room_number = $4, capacity = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		room.Label, room.Kind, room.Sequence, room.RoomNumber, room.Capacity, room.ID)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return checkAffectedRows(result, ErrRoomNotFound)
}

// AssignParticipant назначает участника в номер, если есть свободное место.
// Блокировка строки номера сериализует одновременные проверки вместимости:
// check-and-set выполняется атомарно, перелимит недостижим.
func (r *postgresRoomRepository) AssignParticipant(ctx context.Context, participantID, roomID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	opErr := func() error {
		var capacity int
		err := tx.QueryRowContext(ctx, `SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&capacity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		var occupants int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE room_id = $1`, roomID).Scan(&occupants)
		if err != nil {
			return fmt.Errorf("failed to count occupants: %w", err)
		}
		if occupants >= capacity {
			return ErrRoomCapacityFull
		}

		result, err := tx.ExecContext(ctx, `UPDATE participants SET room_id = $1 WHERE id = $2`, roomID, participantID)
		if err != nil {
			return fmt.Errorf("failed to assign participant to room: %w", err)
		}
		return checkAffectedRows(result, ErrParticipantNotFound)
	}()

	return finishTx(tx, opErr)
}

func (r *postgresRoomRepository) ClearParticipantRoom(ctx context.Context, participantID int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE participants SET room_id = NULL WHERE id = $1`, participantID)
	if err != nil {
		return fmt.Errorf("failed to clear participant room: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

// DeleteCascade снимает всех участников с номера и удаляет его одной
// транзакцией: висячих ссылок не остаётся ни в каком видимом состоянии.
func (r *postgresRoomRepository) DeleteCascade(ctx context.Context, roomID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	opErr := func() error {
		if _, err := tx.ExecContext(ctx, `UPDATE participants SET room_id = NULL WHERE room_id = $1`, roomID); err != nil {
			return fmt.Errorf("failed to detach participants from room: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
		if err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}
		return checkAffectedRows(result, ErrRoomNotFound)
	}()

	return finishTx(tx, opErr)
}

func (r *postgresRoomRepository) TotalCapacity(ctx context.Context, tourID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(capacity), 0) FROM rooms WHERE tour_id = $1`, tourID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum room capacity: %w", err)
	}
	return total, nil
}

// CountEmpty считает пустующие номера: вместимость больше нуля, жильцов нет.
// Номера с нулевой вместимостью (кладовые и т.п.) не учитываются.
func (r *postgresRoomRepository) CountEmpty(ctx context.Context, tourID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rooms r
		WHERE r.tour_id = $1
		  AND r.capacity > 0
		  AND NOT EXISTS (SELECT 1 FROM participants p WHERE p.room_id = r.id)`

	var count int
	if err := r.db.QueryRowContext(ctx, query, tourID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count empty rooms: %w", err)
	}
	return count, nil
}

func (r *postgresRoomRepository) CountComp(ctx context.Context, tourID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rooms WHERE tour_id = $1 AND kind <> $2`,
		tourID, models.RoomKindStandard).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comp rooms: %w", err)
	}
	return count, nil
}
