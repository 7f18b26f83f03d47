package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/report"
	"github.com/greenfee/tourops/repositories"
	"github.com/greenfee/tourops/storage"
	"golang.org/x/sync/errgroup"
)

// ExportResult — отрендеренный отчёт и, если архивирование удалось,
// публичная ссылка на его копию в объектном хранилище.
type ExportResult struct {
	Document   string `json:"document"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

// ReportService снимает текущее состояние расселения и метаданных тура и
// отдаёт его генератору отчёта. Сам генератор (пакет report) чистый; здесь
// только сбор снимка и архивирование результата.
type ReportService interface {
	Render(ctx context.Context, tourID int, override report.StaffOverride) (string, error)
	Export(ctx context.Context, tourID int, override report.StaffOverride) (*ExportResult, error)
}

type reportService struct {
	tourRepo        repositories.TourRepository
	participantRepo repositories.ParticipantRepository
	roomRepo        repositories.RoomRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewReportService(
	tourRepo repositories.TourRepository,
	participantRepo repositories.ParticipantRepository,
	roomRepo repositories.RoomRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		tourRepo:        tourRepo,
		participantRepo: participantRepo,
		roomRepo:        roomRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *reportService) snapshot(ctx context.Context, tourID int) (*report.Input, error) {
	tour, err := s.tourRepo.GetByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, repositories.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to get tour %d for report: %w", tourID, err)
	}

	input := &report.Input{Tour: *tour}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTour(gCtx, tourID)
		if err != nil {
			return err
		}
		input.Participants = make([]models.Participant, len(participants))
		for i, p := range participants {
			input.Participants[i] = *p
		}
		return nil
	})
	g.Go(func() error {
		rooms, err := s.roomRepo.ListByTour(gCtx, tourID)
		if err != nil {
			return err
		}
		input.Rooms = make([]models.Room, len(rooms))
		for i, r := range rooms {
			input.Rooms[i] = *r
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to snapshot tour %d for report: %w", tourID, err)
	}
	return input, nil
}

func (s *reportService) Render(ctx context.Context, tourID int, override report.StaffOverride) (string, error) {
	input, err := s.snapshot(ctx, tourID)
	if err != nil {
		return "", err
	}
	input.Override = override
	return report.Generate(*input)
}

// Export рендерит отчёт и складывает его копию в объектное хранилище.
// Неудачное архивирование не блокирует экспорт: документ возвращается
// в любом случае, ошибка записи только логируется.
func (s *reportService) Export(ctx context.Context, tourID int, override report.StaffOverride) (*ExportResult, error) {
	document, err := s.Render(ctx, tourID, override)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Document: document}
	if s.uploader == nil {
		return result, nil
	}

	key := fmt.Sprintf("reports/tour-%d/%s.html", tourID, uuid.NewString())
	uploaded, err := s.uploader.Upload(ctx, key, "text/html; charset=utf-8", strings.NewReader(document))
	if err != nil {
		s.logger.Warn("failed to archive allocation report",
			slog.Int("tour_id", tourID), slog.Any("error", err))
		return result, nil
	}
	result.ArchiveURL = uploaded.Location
	return result, nil
}
