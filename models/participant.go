package models

import "time"

// Participant — участник тура. RoomID меняется только через RoomService,
// остальные поля — через ParticipantService.
type Participant struct {
	ID        int       `json:"id" db:"id"`
	TourID    int       `json:"tour_id" db:"tour_id"`
	Name      string    `json:"name" db:"name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	TeamLabel *string   `json:"team_label,omitempty" db:"team_label"`
	RoomID    *int      `json:"room_id,omitempty" db:"room_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
