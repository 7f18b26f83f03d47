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
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrParticipantTourInvalid = errors.New("participant tour conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	ListByTour(ctx context.Context, tourID int) ([]*models.Participant, error)
	Update(ctx context.Context, p *models.Participant) error
	Delete(ctx context.Context, id int) error
	CountByTour(ctx context.Context, tourID int) (int, error)
	CountAssignedByTour(ctx context.Context, tourID int) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, tour_id, name, phone, team_label, room_id, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tour_id, name, phone, team_label)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.TourID,
		p.Name,
		p.Phone,
		p.TeamLabel,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrParticipantTourInvalid
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.TourID,
		&p.Name,
		&p.Phone,
		&p.TeamLabel,
		&p.RoomID,
		&p.CreatedAt,
	)
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p := &models.Participant{}
	err := r.scanParticipant(r.db.QueryRowContext(ctx, query, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTour(ctx context.Context, tourID int) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE tour_id = $1 ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by tour: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := r.scanParticipant(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

// Update не трогает room_id: его пишет только слой расселения (RoomRepository).
func (r *postgresParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	query := `UPDATE participants SET name = $1, phone = $2, team_label = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, p.Name, p.Phone, p.TeamLabel, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) CountByTour(ctx context.Context, tourID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE tour_id = $1`, tourID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) CountAssignedByTour(ctx context.Context, tourID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE tour_id = $1 AND room_id IS NOT NULL`, tourID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assigned participants: %w", err)
	}
	return count, nil
}
