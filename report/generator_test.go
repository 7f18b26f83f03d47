package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfee/tourops/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func sampleInput() Input {
	return Input{
		Tour: models.Tour{
			ID:          1,
			Title:       "제주 3박4일",
			StartDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC),
			DriverName:  strPtr("박기사"),
			DriverPhone: strPtr("010-1234-5678"),
		},
		Rooms: []models.Room{
			{ID: 3, TourID: 1, Label: "기사님 방", Kind: models.RoomKindDriver, Sequence: 3, RoomNumber: "103", Capacity: 1},
			{ID: 1, TourID: 1, Label: "101호", Kind: models.RoomKindStandard, Sequence: 1, RoomNumber: "101", Capacity: 2},
			{ID: 2, TourID: 1, Label: "102호", Kind: models.RoomKindStandard, Sequence: 2, RoomNumber: "102", Capacity: 2},
		},
		Participants: []models.Participant{
			{ID: 1, TourID: 1, Name: "홍길동", Phone: strPtr("010-1111-2222"), RoomID: intPtr(1)},
			{ID: 2, TourID: 1, Name: "김철수", RoomID: intPtr(1)},
			{ID: 3, TourID: 1, Name: "이영희", RoomID: intPtr(2)},
			{ID: 4, TourID: 1, Name: "박기사", RoomID: intPtr(3)},
			{ID: 5, TourID: 1, Name: "최미배정"},
		},
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	input := sampleInput()

	first, err := Generate(input)
	require.NoError(t, err)
	second, err := Generate(input)
	require.NoError(t, err)

	assert.Equal(t, first, second, "один снимок данных должен давать байт-в-байт тот же документ")
}

func TestGenerate_GroupsAndNumbersOccupants(t *testing.T) {
	doc := buildView(sampleInput())

	require.Len(t, doc.Rooms, 3)
	// Комнаты упорядочены по sequence, не по ID из снимка.
	assert.Equal(t, "101호", doc.Rooms[0].Label)
	assert.Equal(t, "102호", doc.Rooms[1].Label)
	assert.Equal(t, "기사님 방", doc.Rooms[2].Label)

	// Жильцы внутри комнаты отсортированы по имени, нумерация сквозная.
	require.Len(t, doc.Rooms[0].Occupants, 2)
	assert.Equal(t, "김철수", doc.Rooms[0].Occupants[0].Name)
	assert.Equal(t, 1, doc.Rooms[0].Occupants[0].Number)
	assert.Equal(t, "홍길동", doc.Rooms[0].Occupants[1].Name)
	assert.Equal(t, 2, doc.Rooms[0].Occupants[1].Number)
	require.Len(t, doc.Rooms[1].Occupants, 1)
	assert.Equal(t, 3, doc.Rooms[1].Occupants[0].Number)
	require.Len(t, doc.Rooms[2].Occupants, 1)
	assert.Equal(t, 4, doc.Rooms[2].Occupants[0].Number)
}

func TestGenerate_CompRosterAndUnassigned(t *testing.T) {
	doc := buildView(sampleInput())

	require.Len(t, doc.CompRoster, 1)
	assert.Equal(t, "박기사", doc.CompRoster[0].Name)

	require.Len(t, doc.Unassigned, 1)
	assert.Equal(t, "최미배정", doc.Unassigned[0].Name)

	assert.Equal(t, 5, doc.Summary.TotalParticipants)
	assert.Equal(t, 4, doc.Summary.Assigned)
	assert.Equal(t, 1, doc.Summary.Unassigned)
	assert.Equal(t, 5, doc.Summary.TotalCapacity)
	assert.Equal(t, 1, doc.Summary.CompRooms)
}

func TestGenerate_DriverOverride(t *testing.T) {
	input := sampleInput()
	input.Override = StaffOverride{DriverName: "임시기사"}

	doc := buildView(input)
	assert.Equal(t, "임시기사", doc.DriverName)
	// Телефон не переопределён — берётся из тура.
	assert.Equal(t, "010-1234-5678", doc.DriverPhone)

	html, err := Generate(input)
	require.NoError(t, err)
	assert.Contains(t, html, "기사: 임시기사")
	assert.NotContains(t, html, "기사: 박기사")
}

func TestGenerate_RendersSections(t *testing.T) {
	html, err := Generate(sampleInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "객실 배정표")
	assert.Contains(t, html, "2026-04-10 ~ 2026-04-13")
	assert.Contains(t, html, "미배정")
	assert.Contains(t, html, "스태프 (무료 객실)")
}

func TestGenerate_EmptyTour(t *testing.T) {
	html, err := Generate(Input{Tour: models.Tour{Title: "빈 투어"}})
	require.NoError(t, err)

	assert.Contains(t, html, "빈 투어")
	assert.NotContains(t, html, `<th colspan="3">미배정</th>`)
	assert.NotContains(t, html, "스태프")
}
