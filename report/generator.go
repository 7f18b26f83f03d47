// Package report строит печатный отчёт о расселении тура.
//
// Генератор — чистая функция: никакого состояния, никаких обращений к
// хранилищу. Один и тот же снимок данных всегда даёт байт-в-байт тот же
// документ, поэтому отчёт удобно проверять снапшот-тестами.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/greenfee/tourops/models"
)

// StaffOverride подменяет контакты водителя на момент печати, не трогая
// сохранённую запись тура. Пустые поля означают «взять из тура».
type StaffOverride struct {
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
}

// Input — снимок данных для одного отчёта.
type Input struct {
	Tour         models.Tour
	Participants []models.Participant
	Rooms        []models.Room
	Override     StaffOverride
}

type occupantView struct {
	Number    int
	Name      string
	Phone     string
	TeamLabel string
}

type roomView struct {
	Label      string
	RoomNumber string
	Kind       models.RoomKind
	Capacity   int
	Occupants  []occupantView
}

type summaryView struct {
	TotalParticipants int
	Assigned          int
	Unassigned        int
	TotalCapacity     int
	CompRooms         int
}

type documentView struct {
	Title       string
	DateRange   string
	DriverName  string
	DriverPhone string
	Rooms       []roomView
	Unassigned  []occupantView
	CompRoster  []occupantView
	Summary     summaryView
}

// Generate рендерит автономный печатный HTML-документ по снимку данных.
func Generate(input Input) (string, error) {
	view := buildView(input)

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render allocation report: %w", err)
	}
	return buf.String(), nil
}

func buildView(input Input) documentView {
	rooms := make([]models.Room, len(input.Rooms))
	copy(rooms, input.Rooms)
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Sequence != rooms[j].Sequence {
			return rooms[i].Sequence < rooms[j].Sequence
		}
		if rooms[i].RoomNumber != rooms[j].RoomNumber {
			return rooms[i].RoomNumber < rooms[j].RoomNumber
		}
		return rooms[i].ID < rooms[j].ID
	})

	byRoom := make(map[int][]models.Participant)
	var unassigned []models.Participant
	for _, p := range input.Participants {
		if p.RoomID == nil {
			unassigned = append(unassigned, p)
			continue
		}
		byRoom[*p.RoomID] = append(byRoom[*p.RoomID], p)
	}

	doc := documentView{
		Title:       input.Tour.Title,
		DateRange:   formatDateRange(input.Tour.StartDate, input.Tour.EndDate),
		DriverName:  input.Override.DriverName,
		DriverPhone: input.Override.DriverPhone,
	}
	if doc.DriverName == "" && input.Tour.DriverName != nil {
		doc.DriverName = *input.Tour.DriverName
	}
	if doc.DriverPhone == "" && input.Tour.DriverPhone != nil {
		doc.DriverPhone = *input.Tour.DriverPhone
	}

	number := 0
	for _, room := range rooms {
		rv := roomView{
			Label:      room.Label,
			RoomNumber: room.RoomNumber,
			Kind:       room.Kind,
			Capacity:   room.Capacity,
		}
		for _, p := range sortOccupants(byRoom[room.ID]) {
			number++
			ov := occupantView{
				Number:    number,
				Name:      p.Name,
				Phone:     derefOr(p.Phone, ""),
				TeamLabel: derefOr(p.TeamLabel, ""),
			}
			rv.Occupants = append(rv.Occupants, ov)
			if room.Kind.IsComp() {
				doc.CompRoster = append(doc.CompRoster, ov)
			}
		}
		doc.Rooms = append(doc.Rooms, rv)
		doc.Summary.TotalCapacity += room.Capacity
		doc.Summary.Assigned += len(rv.Occupants)
		if room.Kind.IsComp() {
			doc.Summary.CompRooms++
		}
	}

	for _, p := range sortOccupants(unassigned) {
		doc.Unassigned = append(doc.Unassigned, occupantView{
			Name:      p.Name,
			Phone:     derefOr(p.Phone, ""),
			TeamLabel: derefOr(p.TeamLabel, ""),
		})
	}

	doc.Summary.TotalParticipants = len(input.Participants)
	doc.Summary.Unassigned = len(doc.Unassigned)
	return doc
}

func sortOccupants(participants []models.Participant) []models.Participant {
	sorted := make([]models.Participant, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func formatDateRange(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return ""
	}
	return start.Format(time.DateOnly) + " ~ " + end.Format(time.DateOnly)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

var documentTemplate = template.Must(template.New("allocation-report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} — 객실 배정표</title>
<style>
body { font-family: "Malgun Gothic", sans-serif; margin: 24px; color: #222; }
h1 { font-size: 20px; margin-bottom: 4px; }
.meta { color: #555; margin-bottom: 16px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 16px; }
th, td { border: 1px solid #999; padding: 4px 8px; font-size: 13px; text-align: left; }
th { background: #eee; }
.room-head { background: #f5f5f5; font-weight: bold; }
.kind { color: #777; font-size: 12px; }
.summary td { border: none; padding: 2px 8px; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}} — 객실 배정표</h1>
<div class="meta">
{{if .DateRange}}<div>{{.DateRange}}</div>{{end}}
{{if .DriverName}}<div>기사: {{.DriverName}}{{if .DriverPhone}} ({{.DriverPhone}}){{end}}</div>{{end}}
</div>
<table>
<tr><th>No.</th><th>이름</th><th>전화</th><th>팀</th></tr>
{{range .Rooms}}<tr class="room-head"><td colspan="4">{{.Label}}{{if .RoomNumber}} · {{.RoomNumber}}호{{end}} <span class="kind">({{.Kind}}, 정원 {{.Capacity}})</span></td></tr>
{{range .Occupants}}<tr><td>{{.Number}}</td><td>{{.Name}}</td><td>{{.Phone}}</td><td>{{.TeamLabel}}</td></tr>
{{end}}{{end}}</table>
{{if .Unassigned}}<table>
<tr><th colspan="3">미배정</th></tr>
{{range .Unassigned}}<tr><td>{{.Name}}</td><td>{{.Phone}}</td><td>{{.TeamLabel}}</td></tr>
{{end}}</table>
{{end}}{{if .CompRoster}}<table>
<tr><th colspan="2">스태프 (무료 객실)</th></tr>
{{range .CompRoster}}<tr><td>{{.Name}}</td><td>{{.Phone}}</td></tr>
{{end}}</table>
{{end}}<table class="summary">
<tr><td>총 인원</td><td>{{.Summary.TotalParticipants}}</td></tr>
<tr><td>배정</td><td>{{.Summary.Assigned}}</td></tr>
<tr><td>미배정</td><td>{{.Summary.Unassigned}}</td></tr>
<tr><td>총 정원</td><td>{{.Summary.TotalCapacity}}</td></tr>
<tr><td>무료 객실</td><td>{{.Summary.CompRooms}}</td></tr>
</table>
</body>
</html>
`))
