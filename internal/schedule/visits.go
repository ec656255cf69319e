package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
)

// ReturnsGroupKey labels the group holding follow-up returns. It always
// sorts after every specialty group.
const ReturnsGroupKey = "returns"

// VisitItem is one computed trackable visit: either the initial
// appointment or its follow-up return, merged with the attendance log.
type VisitItem struct {
	Key appointment.VisitKey `json:"key"`

	AppointmentID uuid.UUID             `json:"appointment_id"`
	ResidentID    uuid.UUID             `json:"resident_id"`
	ResidentName  string                `json:"resident_name"`
	Specialty     string                `json:"specialty"`
	Provider      string                `json:"provider,omitempty"`
	Location      string                `json:"location,omitempty"`
	Kind          appointment.VisitKind `json:"kind"`

	Date      time.Time `json:"date"`
	TimeOfDay string    `json:"time_of_day,omitempty"`

	LogID        *uuid.UUID `json:"log_id,omitempty"`
	Attended     bool       `json:"attended"`
	AttendedAt   *time.Time `json:"attended_at,omitempty"`
	ActorID      *uuid.UUID `json:"actor_id,omitempty"`
	ActorName    string     `json:"actor_name,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	MissedReason string     `json:"missed_reason,omitempty"`
}

// Pending reports whether no attendance has been logged yet.
func (i *VisitItem) Pending() bool {
	return i.LogID == nil
}

// ReconcileVisits expands appointments into trackable visits over
// [from, to] inclusive and merges them with attendance logs. An
// appointment contributes a visit of kind initial when its scheduled
// date falls in the range, and a visit of kind follow_up when its
// return date does; the same record can contribute both.
func ReconcileVisits(entries []appointment.VisitEntry, logs []appointment.AttendanceLog, from, to time.Time) []VisitItem {
	byKey := make(map[appointment.VisitKey]*appointment.AttendanceLog, len(logs))
	for idx := range logs {
		byKey[logs[idx].Key()] = &logs[idx]
	}

	fromDay := dayOf(from)
	toDay := dayOf(to)
	inRange := func(d time.Time) bool {
		dd := dayOf(d)
		return !dd.Before(fromDay) && !dd.After(toDay)
	}

	var items []VisitItem
	for idx := range entries {
		e := &entries[idx]
		a := &e.Appointment

		if inRange(a.ScheduledDate) {
			items = append(items, newVisitItem(e, a.ScheduledDate, appointment.KindInitial, byKey))
		}
		if a.ReturnDate != nil && inRange(*a.ReturnDate) {
			items = append(items, newVisitItem(e, *a.ReturnDate, appointment.KindFollowUp, byKey))
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if !items[a].Date.Equal(items[b].Date) {
			return items[a].Date.Before(items[b].Date)
		}
		if items[a].Specialty != items[b].Specialty {
			return items[a].Specialty < items[b].Specialty
		}
		return items[a].ResidentName < items[b].ResidentName
	})

	return items
}

func newVisitItem(e *appointment.VisitEntry, day time.Time, kind appointment.VisitKind, byKey map[appointment.VisitKey]*appointment.AttendanceLog) VisitItem {
	a := &e.Appointment
	item := VisitItem{
		Key:           appointment.NewVisitKey(a.ID, day, kind),
		AppointmentID: a.ID,
		ResidentID:    a.ResidentID,
		ResidentName:  e.ResidentName,
		Specialty:     a.Specialty,
		Provider:      a.Provider,
		Location:      a.Location,
		Kind:          kind,
		Date:          dayOf(day),
	}
	if kind == appointment.KindInitial {
		item.TimeOfDay = a.ScheduledTime
	}

	if log, ok := byKey[item.Key]; ok {
		id := log.ID
		item.LogID = &id
		item.Attended = log.Attended
		item.AttendedAt = log.AttendedAt
		actor := log.ActorID
		item.ActorID = &actor
		item.Notes = log.Notes
		item.MissedReason = log.MissedReason
	}

	return item
}

// GroupVisits groups visit items by specialty, with all follow-up
// returns collected under ReturnsGroupKey. Specialty groups are ordered
// alphabetically and the returns group is always last.
func GroupVisits(items []VisitItem) []Group[VisitItem] {
	groups := GroupBy(items,
		func(i VisitItem) string {
			if i.Kind == appointment.KindFollowUp {
				return ReturnsGroupKey
			}
			return i.Specialty
		},
		func(i VisitItem) bool { return i.Attended },
	)
	sortGroupsWithLast(groups, ReturnsGroupKey)
	return groups
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
