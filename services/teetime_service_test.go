package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfee/tourops/models"
)

func newTeeTimeFixture(t *testing.T) (TeeTimeService, *fakeTeeTimeRepo, *fakeTourRepo) {
	t.Helper()
	tourRepo := newFakeTourRepo()
	tour := &models.Tour{
		Title:     "제주 3박4일",
		StartDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC),
		Status:    models.TourStatusConfirmed,
	}
	require.NoError(t, tourRepo.Create(context.Background(), tour))

	repo := newFakeTeeTimeRepo(tour.ID)
	svc := NewTeeTimeService(repo, tourRepo, DefaultAdvisoryTeamSize)
	return svc, repo, tourRepo
}

func TestCreateSlot_AssignsSequentialOrdinals(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	first, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID:   1,
		PlayDate: "2026-04-11",
		Course:   "Ora",
		TeeTime:  "06:40",
		Players:  []string{"홍길동", "김철수"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.TeamOrdinal)
	assert.Equal(t, 2, first.PlayerCount)
	assert.False(t, first.OverAdvisory)

	second, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID:   1,
		PlayDate: "2026-04-11",
		Course:   "Ora",
		TeeTime:  "06:48",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.TeamOrdinal)
	assert.Empty(t, second.Players)
}

func TestCreateSlot_OrdinalsAreScopedByDateAndCourse(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
	})
	require.NoError(t, err)

	otherCourse, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Pinx", TeeTime: "07:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, otherCourse.TeamOrdinal)

	otherDate, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-12", Course: "Ora", TeeTime: "06:40",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, otherDate.TeamOrdinal)
}

func TestCreateSlot_ExplicitOrdinalConflict(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	ordinal := 3
	_, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
		TeamOrdinal: &ordinal,
	})
	require.NoError(t, err)

	_, err = svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:48",
		TeamOrdinal: &ordinal,
	})
	assert.ErrorIs(t, err, ErrTeamOrdinalConflict)

	// Счётчик продолжает после явного номера, пропуски не уплотняются.
	next, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:56",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, next.TeamOrdinal)
}

func TestCreateSlot_Validation(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, CreateTeeTimeInput{TourID: 1, Course: "Ora", TeeTime: "06:40"})
	assert.ErrorIs(t, err, ErrTeeTimeDateRequired)

	_, err = svc.CreateSlot(ctx, CreateTeeTimeInput{TourID: 1, PlayDate: "2026-04-11", TeeTime: "06:40"})
	assert.ErrorIs(t, err, ErrTeeTimeCourseRequired)

	_, err = svc.CreateSlot(ctx, CreateTeeTimeInput{TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "25:99"})
	assert.ErrorIs(t, err, ErrTeeTimeInvalidClock)

	bad := 0
	_, err = svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40", TeamOrdinal: &bad,
	})
	assert.ErrorIs(t, err, ErrTeeTimeInvalidOrdinal)

	_, err = svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 99, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
	})
	assert.ErrorIs(t, err, ErrTourNotFound)
}

func TestCreateSlot_OverAdvisoryFlagOnly(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)

	slot, err := svc.CreateSlot(context.Background(), CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
		Players: []string{"A", "B", "C", "D", "E"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, slot.PlayerCount)
	assert.True(t, slot.OverAdvisory)
}

func TestBulkGenerate_EvenIntervals(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)

	slots, err := svc.BulkGenerate(context.Background(), BulkGenerateInput{
		TourID:          1,
		PlayDate:        "2026-04-11",
		Course:          "Ora",
		StartTime:       "06:00",
		IntervalMinutes: 8,
		Count:           5,
	})
	require.NoError(t, err)
	require.Len(t, slots, 5)

	wantTimes := []string{"06:00", "06:08", "06:16", "06:24", "06:32"}
	for i, slot := range slots {
		assert.Equal(t, wantTimes[i], slot.TeeTime)
		assert.Equal(t, i+1, slot.TeamOrdinal)
		assert.Empty(t, slot.Players)
	}
}

func TestBulkGenerate_ContinuesExistingOrdinals(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
	})
	require.NoError(t, err)

	slots, err := svc.BulkGenerate(ctx, BulkGenerateInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora",
		StartTime: "07:00", IntervalMinutes: 10, Count: 3,
	})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, 2, slots[0].TeamOrdinal)
	assert.Equal(t, 4, slots[2].TeamOrdinal)
}

func TestBulkGenerate_RejectsSeriesPastMidnight(t *testing.T) {
	svc, repo, _ := newTeeTimeFixture(t)

	_, err := svc.BulkGenerate(context.Background(), BulkGenerateInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora",
		StartTime: "23:30", IntervalMinutes: 15, Count: 4,
	})
	assert.ErrorIs(t, err, ErrTeeTimePastMidnight)
	assert.Empty(t, repo.slots, "отклонённая серия не должна оставлять слотов")
}

func TestBulkGenerate_Validation(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	_, err := svc.BulkGenerate(ctx, BulkGenerateInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora",
		StartTime: "06:00", IntervalMinutes: 0, Count: 3,
	})
	assert.ErrorIs(t, err, ErrTeeTimeInvalidInterval)

	_, err = svc.BulkGenerate(ctx, BulkGenerateInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora",
		StartTime: "06:00", IntervalMinutes: 8, Count: 0,
	})
	assert.ErrorIs(t, err, ErrTeeTimeInvalidCount)
}

func TestMovePlayer_ConservesRosters(t *testing.T) {
	svc, repo, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	from, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
		Players: []string{"홍길동", "김철수"},
	})
	require.NoError(t, err)
	to, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:48",
		Players: []string{"이영희"},
	})
	require.NoError(t, err)

	err = svc.MovePlayer(ctx, MovePlayerInput{
		Player: "김철수", FromSlotID: from.ID, ToSlotID: to.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"홍길동"}, repo.slots[from.ID].Players)
	assert.Equal(t, []string{"이영희", "김철수"}, repo.slots[to.ID].Players)
}

func TestMovePlayer_Errors(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	from, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
		Players: []string{"홍길동"},
	})
	require.NoError(t, err)
	to, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:48",
	})
	require.NoError(t, err)

	err = svc.MovePlayer(ctx, MovePlayerInput{Player: " ", FromSlotID: from.ID, ToSlotID: to.ID})
	assert.ErrorIs(t, err, ErrTeeTimePlayerRequired)

	err = svc.MovePlayer(ctx, MovePlayerInput{Player: "김철수", FromSlotID: from.ID, ToSlotID: to.ID})
	assert.ErrorIs(t, err, ErrPlayerNotInSlot)

	err = svc.MovePlayer(ctx, MovePlayerInput{Player: "홍길동", FromSlotID: 999, ToSlotID: to.ID})
	assert.ErrorIs(t, err, ErrTeeTimeSlotNotFound)
}

func TestDeleteSlotsForDate_ResetsOrdinalCounter(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	_, err := svc.BulkGenerate(ctx, BulkGenerateInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora",
		StartTime: "06:00", IntervalMinutes: 8, Count: 3,
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteSlotsForDate(ctx, 1, "2026-04-11")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	// После очистки дня генерация начинается с первой команды.
	slots, err := svc.BulkGenerate(ctx, BulkGenerateInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora",
		StartTime: "07:00", IntervalMinutes: 8, Count: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, slots[0].TeamOrdinal)
}

func TestUpdateSlot_ReplacesRosterAndOrdinal(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	slot, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
		Players: []string{"홍길동"},
	})
	require.NoError(t, err)

	newTime := "07:12"
	newPlayers := []string{"홍길동", "김철수", "이영희"}
	updated, err := svc.UpdateSlot(ctx, slot.ID, UpdateTeeTimeInput{
		TeeTime: &newTime,
		Players: &newPlayers,
	})
	require.NoError(t, err)
	assert.Equal(t, "07:12", updated.TeeTime)
	assert.Equal(t, 3, updated.PlayerCount)
	assert.Equal(t, slot.TeamOrdinal, updated.TeamOrdinal)
}

func TestListByTourAndDate_FiltersByDay(t *testing.T) {
	svc, _, _ := newTeeTimeFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-11", Course: "Ora", TeeTime: "06:40",
	})
	require.NoError(t, err)
	_, err = svc.CreateSlot(ctx, CreateTeeTimeInput{
		TourID: 1, PlayDate: "2026-04-12", Course: "Ora", TeeTime: "06:40",
	})
	require.NoError(t, err)

	day, err := svc.ListByTourAndDate(ctx, 1, "2026-04-11")
	require.NoError(t, err)
	assert.Len(t, day, 1)

	all, err := svc.ListByTour(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
