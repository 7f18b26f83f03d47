package models

import "time"

// TeeTimeSlot — командный слот на дату и поле. TeamOrdinal — порядковый
// номер команды внутри (tour, date, course), начинается с 1; после удалений
// допускаются пропуски, перенумерация не выполняется.
//
// Players — упорядоченный список имён-токенов. Это свободный текст, а не
// внешний ключ на Participant: движок не дедуплицирует токены между слотами.
type TeeTimeSlot struct {
	ID          int       `json:"id" db:"id"`
	TourID      int       `json:"tour_id" db:"tour_id"`
	PlayDate    time.Time `json:"play_date" db:"play_date"`
	Course      string    `json:"course" db:"course"`
	TeamOrdinal int       `json:"team_ordinal" db:"team_ordinal"`
	TeeTime     string    `json:"tee_time" db:"tee_time"`
	Players     []string  `json:"players" db:"players"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
