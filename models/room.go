package models

import "strings"

// RoomKind представляет назначение номера, соответствует ENUM в БД.
// Kind хранится явно и назначается при создании; запросы не должны
// повторно разбирать текст названия.
type RoomKind string

const (
	RoomKindStandard RoomKind = "standard"
	RoomKindGuide    RoomKind = "guide"
	RoomKindDriver   RoomKind = "driver"
	RoomKindComp     RoomKind = "comp"
)

func (k RoomKind) Valid() bool {
	switch k {
	case RoomKindStandard, RoomKindGuide, RoomKindDriver, RoomKindComp:
		return true
	}
	return false
}

// IsComp сообщает, является ли номер служебным (гид/водитель/бесплатный) —
// такие номера исключаются из учёта гостевой вместимости.
func (k RoomKind) IsComp() bool {
	return k != RoomKindStandard
}

// InferRoomKind выводит вид номера из свободного текста названия.
// Используется один раз, при создании номера без явного kind; словарь
// унаследован от прежних названий в проде: guide, driver/기사, comp, free/무료.
func InferRoomKind(label string) RoomKind {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "guide"):
		return RoomKindGuide
	case strings.Contains(l, "driver"), strings.Contains(l, "기사"):
		return RoomKindDriver
	case strings.Contains(l, "comp"), strings.Contains(l, "free"), strings.Contains(l, "무료"):
		return RoomKindComp
	default:
		return RoomKindStandard
	}
}

// Room — номер проживания в рамках одного тура.
// Инвариант: число участников с RoomID == ID никогда не превышает Capacity.
type Room struct {
	ID         int      `json:"id" db:"id"`
	TourID     int      `json:"tour_id" db:"tour_id"`
	Label      string   `json:"label" db:"label"`
	Kind       RoomKind `json:"kind" db:"kind"`
	Sequence   int      `json:"sequence" db:"sequence"`
	RoomNumber string   `json:"room_number" db:"room_number"`
	Capacity   int      `json:"capacity" db:"capacity"`

	// Occupants заполняется списочными запросами, в БД не хранится.
	Occupants int `json:"occupants" db:"-"`
}
