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
	ErrTourNotFound = errors.New("tour not found")
)

type TourRepository interface {
	Create(ctx context.Context, tour *models.Tour) error
	GetByID(ctx context.Context, id int) (*models.Tour, error)
	List(ctx context.Context, statusFilter *models.TourStatus) ([]*models.Tour, error)
	Update(ctx context.Context, tour *models.Tour) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TourStatus) error
	Delete(ctx context.Context, id int) error
	ListForAutoCompletion(ctx context.Context, now time.Time) ([]*models.Tour, error)
}

type postgresTourRepository struct {
	db *sql.DB
}

func NewPostgresTourRepository(db *sql.DB) TourRepository {
	return &postgresTourRepository{db: db}
}

func (r *postgresTourRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tourColumns = `id, title, start_date, end_date, course_names, driver_name, driver_phone, status, created_at`

func (r *postgresTourRepository) Create(ctx context.Context, tour *models.Tour) error {
	query := `
		INSERT INTO tours (title, start_date, end_date, course_names, driver_name, driver_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tour.Title,
		tour.StartDate,
		tour.EndDate,
		pq.Array(tour.CourseNames),
		tour.DriverName,
		tour.DriverPhone,
		tour.Status,
	).Scan(&tour.ID, &tour.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

func (r *postgresTourRepository) scanTour(rowScanner interface {
	Scan(dest ...interface{}) error
}, t *models.Tour) error {
	return rowScanner.Scan(
		&t.ID,
		&t.Title,
		&t.StartDate,
		&t.EndDate,
		pq.Array(&t.CourseNames),
		&t.DriverName,
		&t.DriverPhone,
		&t.Status,
		&t.CreatedAt,
	)
}

func (r *postgresTourRepository) GetByID(ctx context.Context, id int) (*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1`
	t := &models.Tour{}
	err := r.scanTour(r.db.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to find tour: %w", err)
	}
	return t, nil
}

func (r *postgresTourRepository) List(ctx context.Context, statusFilter *models.TourStatus) ([]*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours`
	args := []interface{}{}
	if statusFilter != nil {
		query += ` WHERE status = $1`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	defer rows.Close()

	tours := make([]*models.Tour, 0)
	for rows.Next() {
		var t models.Tour
		if err := r.scanTour(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tour row: %w", err)
		}
		tours = append(tours, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tour rows: %w", err)
	}
	return tours, nil
}

func (r *postgresTourRepository) Update(ctx context.Context, tour *models.Tour) error {
	query := `
		UPDATE tours
		SET title = $1, start_date = $2, end_date = $3, course_names = $4,
		    driver_name = $5, driver_phone = $6, status = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		tour.Title,
		tour.StartDate,
		tour.EndDate,
		pq.Array(tour.CourseNames),
		tour.DriverName,
		tour.DriverPhone,
		tour.Status,
		tour.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}
	return checkAffectedRows(result, ErrTourNotFound)
}

func (r *postgresTourRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TourStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tours SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tour status: %w", err)
	}
	return checkAffectedRows(result, ErrTourNotFound)
}

func (r *postgresTourRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	return checkAffectedRows(result, ErrTourNotFound)
}

// ListForAutoCompletion возвращает подтверждённые туры, чья дата окончания
// уже прошла; их статус переводится планировщиком в completed.
func (r *postgresTourRepository) ListForAutoCompletion(ctx context.Context, now time.Time) ([]*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE status = $1 AND end_date < $2`
	rows, err := r.db.QueryContext(ctx, query, models.TourStatusConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours for auto completion: %w", err)
	}
	defer rows.Close()

	tours := make([]*models.Tour, 0)
	for rows.Next() {
		var t models.Tour
		if err := r.scanTour(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tour row: %w", err)
		}
		tours = append(tours, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tour rows: %w", err)
	}
	return tours, nil
}
