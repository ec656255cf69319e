package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
)

// DueItem is one computed occurrence of a schedule on a specific date,
// merged with its logged disposition. It is derived fresh on every
// query and never persisted; its identity is the DoseKey, not a
// database id.
type DueItem struct {
	Key medication.DoseKey `json:"key"`

	ScheduleID   uuid.UUID `json:"schedule_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	ResidentID   uuid.UUID `json:"resident_id"`

	ResidentName   string `json:"resident_name"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Route          string `json:"route,omitempty"`
	Instructions   string `json:"instructions,omitempty"`

	Date      time.Time `json:"date"`
	TimeOfDay string    `json:"time_of_day"`

	// Disposition. A nil LogID means pending: absence of a log is never
	// inferred as administered.
	LogID          *uuid.UUID `json:"log_id,omitempty"`
	Administered   bool       `json:"administered"`
	AdministeredAt *time.Time `json:"administered_at,omitempty"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	ActorName      string     `json:"actor_name,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	NotGivenReason string     `json:"not_given_reason,omitempty"`
}

// Pending reports whether no disposition has been logged yet.
func (i *DueItem) Pending() bool {
	return i.LogID == nil
}

// Overdue reports whether the dose is still pending after its scheduled
// moment has passed. now is injected so the answer is deterministic.
func (i *DueItem) Overdue(now time.Time) bool {
	if !i.Pending() {
		return false
	}
	t, err := time.Parse("15:04", i.TimeOfDay)
	if err != nil {
		return false
	}
	at := time.Date(i.Date.Year(), i.Date.Month(), i.Date.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	return now.After(at)
}

// Reconcile joins the active schedule catalog with the recorded dose
// logs over [from, to] inclusive. For every date in the range and every
// catalog entry, the treatment-window check runs first, then the
// recurrence predicate; candidates that pass both are merged with their
// log row by DoseKey. The output order is deterministic: date, then
// time of day, then resident name, then medication name.
func Reconcile(entries []medication.ScheduleEntry, logs []medication.DoseLog, from, to time.Time) []DueItem {
	byKey := make(map[medication.DoseKey]*medication.DoseLog, len(logs))
	for idx := range logs {
		byKey[logs[idx].Key()] = &logs[idx]
	}

	var items []DueItem
	eachDay(from, to, func(day time.Time) {
		for idx := range entries {
			e := &entries[idx]
			if !e.InWindow(day) {
				continue
			}
			if !IsDue(&e.Schedule, e.StartDate, day) {
				continue
			}

			item := DueItem{
				Key:            medication.NewDoseKey(e.Schedule.ID, day, e.Schedule.TimeOfDay),
				ScheduleID:     e.Schedule.ID,
				MedicationID:   e.MedicationID,
				ResidentID:     e.ResidentID,
				ResidentName:   e.ResidentName,
				MedicationName: e.MedicationName,
				Dosage:         e.Dosage,
				Route:          e.Route,
				Instructions:   e.Schedule.Instructions,
				Date:           medication.DateOf(day),
				TimeOfDay:      e.Schedule.TimeOfDay,
			}

			if log, ok := byKey[item.Key]; ok {
				id := log.ID
				item.LogID = &id
				item.Administered = log.Administered
				item.AdministeredAt = log.AdministeredAt
				actor := log.ActorID
				item.ActorID = &actor
				item.Notes = log.Notes
				item.NotGivenReason = log.NotGivenReason
			}

			items = append(items, item)
		}
	})

	sort.SliceStable(items, func(a, b int) bool {
		if !items[a].Date.Equal(items[b].Date) {
			return items[a].Date.Before(items[b].Date)
		}
		if items[a].TimeOfDay != items[b].TimeOfDay {
			return items[a].TimeOfDay < items[b].TimeOfDay
		}
		if items[a].ResidentName != items[b].ResidentName {
			return items[a].ResidentName < items[b].ResidentName
		}
		return items[a].MedicationName < items[b].MedicationName
	})

	return items
}
