package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/greenfee/tourops/models"
	"github.com/greenfee/tourops/repositories"
)

// Фейки повторяют контракт Postgres-репозиториев в памяти, включая
// транзакционные составные операции (назначение с проверкой вместимости,
// выдача командных номеров, перенос игрока).

type fakeTourRepo struct {
	tours  map[int]*models.Tour
	nextID int
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{tours: make(map[int]*models.Tour), nextID: 1}
}

func (r *fakeTourRepo) Create(_ context.Context, tour *models.Tour) error {
	tour.ID = r.nextID
	tour.CreatedAt = time.Now()
	r.nextID++
	cp := *tour
	r.tours[tour.ID] = &cp
	return nil
}

func (r *fakeTourRepo) GetByID(_ context.Context, id int) (*models.Tour, error) {
	tour, ok := r.tours[id]
	if !ok {
		return nil, repositories.ErrTourNotFound
	}
	cp := *tour
	return &cp, nil
}

func (r *fakeTourRepo) List(_ context.Context, statusFilter *models.TourStatus) ([]*models.Tour, error) {
	var out []*models.Tour
	for _, tour := range r.tours {
		if statusFilter != nil && tour.Status != *statusFilter {
			continue
		}
		cp := *tour
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTourRepo) Update(_ context.Context, tour *models.Tour) error {
	if _, ok := r.tours[tour.ID]; !ok {
		return repositories.ErrTourNotFound
	}
	cp := *tour
	r.tours[tour.ID] = &cp
	return nil
}

func (r *fakeTourRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TourStatus) error {
	tour, ok := r.tours[id]
	if !ok {
		return repositories.ErrTourNotFound
	}
	tour.Status = status
	return nil
}

func (r *fakeTourRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tours[id]; !ok {
		return repositories.ErrTourNotFound
	}
	delete(r.tours, id)
	return nil
}

func (r *fakeTourRepo) ListForAutoCompletion(_ context.Context, now time.Time) ([]*models.Tour, error) {
	var out []*models.Tour
	for _, tour := range r.tours {
		if tour.Status == models.TourStatusConfirmed && tour.EndDate.Before(now) {
			cp := *tour
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeParticipantRepo struct {
	participants map[int]*models.Participant
	nextID       int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant), nextID: 1}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.Participant) error {
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.nextID++
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) ListByTour(_ context.Context, tourID int) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range r.participants {
		if p.TourID == tourID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeParticipantRepo) Update(_ context.Context, p *models.Participant) error {
	stored, ok := r.participants[p.ID]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	// room_id этим методом не меняется, как и в SQL-реализации
	roomID := stored.RoomID
	cp := *p
	cp.RoomID = roomID
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeParticipantRepo) CountByTour(_ context.Context, tourID int) (int, error) {
	count := 0
	for _, p := range r.participants {
		if p.TourID == tourID {
			count++
		}
	}
	return count, nil
}

func (r *fakeParticipantRepo) CountAssignedByTour(_ context.Context, tourID int) (int, error) {
	count := 0
	for _, p := range r.participants {
		if p.TourID == tourID && p.RoomID != nil {
			count++
		}
	}
	return count, nil
}

type fakeRoomRepo struct {
	rooms        map[int]*models.Room
	nextID       int
	participants *fakeParticipantRepo
}

func newFakeRoomRepo(participants *fakeParticipantRepo) *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:        make(map[int]*models.Room),
		nextID:       1,
		participants: participants,
	}
}

func (r *fakeRoomRepo) Create(_ context.Context, room *models.Room) error {
	room.ID = r.nextID
	r.nextID++
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id int) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, repositories.ErrRoomNotFound
	}
	cp := *room
	cp.Occupants = r.occupants(id)
	return &cp, nil
}

func (r *fakeRoomRepo) ListByTour(_ context.Context, tourID int) ([]*models.Room, error) {
	var out []*models.Room
	for _, room := range r.rooms {
		if room.TourID == tourID {
			cp := *room
			cp.Occupants = r.occupants(room.ID)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		if out[i].RoomNumber != out[j].RoomNumber {
			return out[i].RoomNumber < out[j].RoomNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRoomRepo) Update(_ context.Context, room *models.Room) error {
	if _, ok := r.rooms[room.ID]; !ok {
		return repositories.ErrRoomNotFound
	}
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) occupants(roomID int) int {
	count := 0
	for _, p := range r.participants.participants {
		if p.RoomID != nil && *p.RoomID == roomID {
			count++
		}
	}
	return count
}

func (r *fakeRoomRepo) AssignParticipant(_ context.Context, participantID, roomID int) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return repositories.ErrRoomNotFound
	}
	p, ok := r.participants.participants[participantID]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	if p.RoomID != nil && *p.RoomID == roomID {
		return nil
	}
	if r.occupants(roomID) >= room.Capacity {
		return repositories.ErrRoomCapacityFull
	}
	id := roomID
	p.RoomID = &id
	return nil
}

func (r *fakeRoomRepo) ClearParticipantRoom(_ context.Context, participantID int) error {
	p, ok := r.participants.participants[participantID]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.RoomID = nil
	return nil
}

func (r *fakeRoomRepo) DeleteCascade(_ context.Context, roomID int) error {
	if _, ok := r.rooms[roomID]; !ok {
		return repositories.ErrRoomNotFound
	}
	for _, p := range r.participants.participants {
		if p.RoomID != nil && *p.RoomID == roomID {
			p.RoomID = nil
		}
	}
	delete(r.rooms, roomID)
	return nil
}

func (r *fakeRoomRepo) TotalCapacity(_ context.Context, tourID int) (int, error) {
	total := 0
	for _, room := range r.rooms {
		if room.TourID == tourID {
			total += room.Capacity
		}
	}
	return total, nil
}

func (r *fakeRoomRepo) CountEmpty(_ context.Context, tourID int) (int, error) {
	count := 0
	for _, room := range r.rooms {
		if room.TourID == tourID && room.Capacity > 0 && r.occupants(room.ID) == 0 {
			count++
		}
	}
	return count, nil
}

func (r *fakeRoomRepo) CountComp(_ context.Context, tourID int) (int, error) {
	count := 0
	for _, room := range r.rooms {
		if room.TourID == tourID && room.Kind.IsComp() {
			count++
		}
	}
	return count, nil
}

type fakeTeeTimeRepo struct {
	slots    map[int]*models.TeeTimeSlot
	counters map[string]int
	nextID   int
	tourIDs  map[int]bool
}

func newFakeTeeTimeRepo(tourIDs ...int) *fakeTeeTimeRepo {
	known := make(map[int]bool, len(tourIDs))
	for _, id := range tourIDs {
		known[id] = true
	}
	return &fakeTeeTimeRepo{
		slots:    make(map[int]*models.TeeTimeSlot),
		counters: make(map[string]int),
		nextID:   1,
		tourIDs:  known,
	}
}

func counterKey(tourID int, playDate time.Time, course string) string {
	return fmt.Sprintf("%d/%s/%s", tourID, playDate.Format(time.DateOnly), course)
}

func (r *fakeTeeTimeRepo) ordinalTaken(slot *models.TeeTimeSlot) bool {
	for _, existing := range r.slots {
		if existing.ID != slot.ID &&
			existing.TourID == slot.TourID &&
			existing.PlayDate.Equal(slot.PlayDate) &&
			existing.Course == slot.Course &&
			existing.TeamOrdinal == slot.TeamOrdinal {
			return true
		}
	}
	return false
}

func (r *fakeTeeTimeRepo) insert(slot *models.TeeTimeSlot) error {
	if !r.tourIDs[slot.TourID] {
		return repositories.ErrTeeTimeTourInvalid
	}
	if r.ordinalTaken(slot) {
		return repositories.ErrTeeTimeOrdinalConflict
	}
	slot.ID = r.nextID
	slot.CreatedAt = time.Now()
	r.nextID++
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeTeeTimeRepo) CreateWithOrdinal(_ context.Context, slot *models.TeeTimeSlot) error {
	key := counterKey(slot.TourID, slot.PlayDate, slot.Course)
	if slot.TeamOrdinal == 0 {
		r.counters[key]++
		slot.TeamOrdinal = r.counters[key]
	} else if slot.TeamOrdinal > r.counters[key] {
		r.counters[key] = slot.TeamOrdinal
	}
	return r.insert(slot)
}

func (r *fakeTeeTimeRepo) BulkCreate(_ context.Context, tourID int, playDate time.Time, course string, teeTimes []string) ([]*models.TeeTimeSlot, error) {
	key := counterKey(tourID, playDate, course)
	base := r.counters[key]
	r.counters[key] += len(teeTimes)

	out := make([]*models.TeeTimeSlot, len(teeTimes))
	for i, teeTime := range teeTimes {
		slot := &models.TeeTimeSlot{
			TourID:      tourID,
			PlayDate:    playDate,
			Course:      course,
			TeamOrdinal: base + i + 1,
			TeeTime:     teeTime,
			Players:     []string{},
		}
		if err := r.insert(slot); err != nil {
			return nil, err
		}
		out[i] = slot
	}
	return out, nil
}

func (r *fakeTeeTimeRepo) GetByID(_ context.Context, id int) (*models.TeeTimeSlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, repositories.ErrTeeTimeSlotNotFound
	}
	cp := *slot
	cp.Players = append([]string(nil), slot.Players...)
	return &cp, nil
}

func (r *fakeTeeTimeRepo) list(filter func(*models.TeeTimeSlot) bool) []*models.TeeTimeSlot {
	var out []*models.TeeTimeSlot
	for _, slot := range r.slots {
		if filter(slot) {
			cp := *slot
			cp.Players = append([]string(nil), slot.Players...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.PlayDate.Equal(b.PlayDate) {
			return a.PlayDate.Before(b.PlayDate)
		}
		if a.Course != b.Course {
			return a.Course < b.Course
		}
		return a.TeamOrdinal < b.TeamOrdinal
	})
	return out
}

func (r *fakeTeeTimeRepo) ListByTour(_ context.Context, tourID int) ([]*models.TeeTimeSlot, error) {
	return r.list(func(s *models.TeeTimeSlot) bool { return s.TourID == tourID }), nil
}

func (r *fakeTeeTimeRepo) ListByTourAndDate(_ context.Context, tourID int, playDate time.Time) ([]*models.TeeTimeSlot, error) {
	return r.list(func(s *models.TeeTimeSlot) bool {
		return s.TourID == tourID && s.PlayDate.Equal(playDate)
	}), nil
}

func (r *fakeTeeTimeRepo) Update(_ context.Context, slot *models.TeeTimeSlot) error {
	if _, ok := r.slots[slot.ID]; !ok {
		return repositories.ErrTeeTimeSlotNotFound
	}
	if r.ordinalTaken(slot) {
		return repositories.ErrTeeTimeOrdinalConflict
	}
	cp := *slot
	cp.Players = append([]string(nil), slot.Players...)
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeTeeTimeRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.slots[id]; !ok {
		return repositories.ErrTeeTimeSlotNotFound
	}
	delete(r.slots, id)
	return nil
}

func (r *fakeTeeTimeRepo) DeleteByTourAndDate(_ context.Context, tourID int, playDate time.Time) (int, error) {
	deleted := 0
	for id, slot := range r.slots {
		if slot.TourID == tourID && slot.PlayDate.Equal(playDate) {
			delete(r.slots, id)
			deleted++
		}
	}
	prefix := fmt.Sprintf("%d/%s/", tourID, playDate.Format(time.DateOnly))
	for key := range r.counters {
		if strings.HasPrefix(key, prefix) {
			delete(r.counters, key)
		}
	}
	return deleted, nil
}

func (r *fakeTeeTimeRepo) MovePlayer(_ context.Context, player string, fromSlotID, toSlotID int) error {
	from, ok := r.slots[fromSlotID]
	if !ok {
		return repositories.ErrTeeTimeSlotNotFound
	}
	to, ok := r.slots[toSlotID]
	if !ok {
		return repositories.ErrTeeTimeSlotNotFound
	}

	idx := -1
	for i, name := range from.Players {
		if name == player {
			idx = i
			break
		}
	}
	if idx < 0 {
		return repositories.ErrTeeTimePlayerNotFound
	}
	from.Players = append(from.Players[:idx], from.Players[idx+1:]...)
	to.Players = append(to.Players, player)
	return nil
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
