package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
)

func newEntry(resident, med string, freq medication.Frequency, timeOfDay string, start, end *time.Time) medication.ScheduleEntry {
	return medication.ScheduleEntry{
		Schedule: medication.Schedule{
			ID:        uuid.New(),
			TimeOfDay: timeOfDay,
			Frequency: freq,
			Active:    true,
		},
		MedicationID:   uuid.New(),
		MedicationName: med,
		Dosage:         "500mg",
		StartDate:      start,
		EndDate:        end,
		ResidentID:     uuid.New(),
		ResidentName:   resident,
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestReconcileSingleDayPending(t *testing.T) {
	start := date(2024, 1, 1)
	entry := newEntry("Ana Souza", "Amoxicillin", medication.FrequencyDaily, "08:00", &start, nil)

	items := Reconcile([]medication.ScheduleEntry{entry}, nil, date(2024, 1, 5), date(2024, 1, 5))

	if len(items) != 1 {
		t.Fatalf("expected 1 due item, got %d", len(items))
	}
	item := items[0]
	if item.Administered {
		t.Error("pending item must not be administered")
	}
	if item.LogID != nil {
		t.Error("pending item must have no log id")
	}
	if !item.Pending() {
		t.Error("item with no log must be pending")
	}
	if item.Key != medication.NewDoseKey(entry.Schedule.ID, date(2024, 1, 5), "08:00") {
		t.Errorf("unexpected key %+v", item.Key)
	}
}

func TestReconcileMergesLog(t *testing.T) {
	start := date(2024, 1, 1)
	entry := newEntry("Ana Souza", "Amoxicillin", medication.FrequencyDaily, "08:00", &start, nil)

	now := time.Date(2024, 1, 5, 8, 12, 0, 0, time.UTC)
	actor := uuid.New()
	log := medication.DoseLog{
		ID:             uuid.New(),
		ScheduleID:     entry.Schedule.ID,
		ResidentID:     entry.ResidentID,
		ScheduledDate:  date(2024, 1, 5),
		ScheduledTime:  "08:00",
		Administered:   true,
		AdministeredAt: &now,
		ActorID:        actor,
		Notes:          "taken with food",
	}

	items := Reconcile([]medication.ScheduleEntry{entry}, []medication.DoseLog{log}, date(2024, 1, 5), date(2024, 1, 5))

	if len(items) != 1 {
		t.Fatalf("expected 1 due item, got %d", len(items))
	}
	item := items[0]
	if !item.Administered {
		t.Error("expected administered item")
	}
	if item.LogID == nil || *item.LogID != log.ID {
		t.Error("log id not copied onto due item")
	}
	if item.ActorID == nil || *item.ActorID != actor {
		t.Error("actor not copied onto due item")
	}
	if item.Notes != "taken with food" {
		t.Errorf("notes = %q", item.Notes)
	}
}

func TestReconcileWindowExcludesDates(t *testing.T) {
	start := date(2024, 1, 10)
	end := date(2024, 1, 12)
	entry := newEntry("Ana Souza", "Amoxicillin", medication.FrequencyDaily, "08:00", &start, &end)

	// Range entirely outside the window contributes zero items, not an error.
	items := Reconcile([]medication.ScheduleEntry{entry}, nil, date(2024, 1, 1), date(2024, 1, 5))
	if len(items) != 0 {
		t.Fatalf("expected no items outside window, got %d", len(items))
	}

	// Range straddling the window only yields the in-window dates.
	items = Reconcile([]medication.ScheduleEntry{entry}, nil, date(2024, 1, 8), date(2024, 1, 15))
	if len(items) != 3 {
		t.Fatalf("expected 3 items inside window, got %d", len(items))
	}
	for _, item := range items {
		if item.Date.Before(start) || item.Date.After(end) {
			t.Errorf("item on %s is outside the window", item.Date.Format(time.DateOnly))
		}
	}
}

func TestReconcileAlternateParityAcrossRange(t *testing.T) {
	start := date(2024, 3, 1)
	entry := newEntry("Bruno Lima", "Prednisone", medication.FrequencyAlternateDays, "12:00", &start, nil)

	items := Reconcile([]medication.ScheduleEntry{entry}, nil, date(2024, 3, 1), date(2024, 3, 3))

	want := []string{"2024-03-01", "2024-03-03"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, w := range want {
		if got := items[i].Date.Format(time.DateOnly); got != w {
			t.Errorf("item %d on %s, want %s", i, got, w)
		}
	}
}

func TestReconcileDeterministicOrder(t *testing.T) {
	start := date(2024, 1, 1)
	entries := []medication.ScheduleEntry{
		newEntry("Carla Nunes", "Ibuprofen", medication.FrequencyDaily, "12:00", &start, nil),
		newEntry("Ana Souza", "Amoxicillin", medication.FrequencyDaily, "08:00", &start, nil),
		newEntry("Bruno Lima", "Paracetamol", medication.FrequencyDaily, "08:00", &start, nil),
	}

	items := Reconcile(entries, nil, date(2024, 1, 5), date(2024, 1, 6))

	if len(items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(items))
	}
	// Date ascending, then time, then resident name.
	wantOrder := []string{"Ana Souza", "Bruno Lima", "Carla Nunes", "Ana Souza", "Bruno Lima", "Carla Nunes"}
	for i, w := range wantOrder {
		if items[i].ResidentName != w {
			t.Errorf("position %d: got %s, want %s", i, items[i].ResidentName, w)
		}
	}
	if !items[0].Date.Before(items[3].Date) {
		t.Error("second day items must come after first day items")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	start := date(2024, 1, 1)
	entries := []medication.ScheduleEntry{
		newEntry("Ana Souza", "Amoxicillin", medication.FrequencyDaily, "08:00", &start, nil),
		newEntry("Bruno Lima", "Prednisone", medication.FrequencyAlternateDays, "12:00", &start, nil),
	}
	logs := []medication.DoseLog{{
		ID:            uuid.New(),
		ScheduleID:    entries[0].Schedule.ID,
		ScheduledDate: date(2024, 1, 2),
		ScheduledTime: "08:00",
		Administered:  true,
		ActorID:       uuid.New(),
	}}

	first := Reconcile(entries, logs, date(2024, 1, 1), date(2024, 1, 7))
	second := Reconcile(entries, logs, date(2024, 1, 1), date(2024, 1, 7))

	if !reflect.DeepEqual(first, second) {
		t.Error("reconcile is not idempotent for unchanged inputs")
	}
}

func TestDueItemOverdue(t *testing.T) {
	item := DueItem{Date: date(2024, 1, 5), TimeOfDay: "08:00"}

	if item.Overdue(time.Date(2024, 1, 5, 7, 0, 0, 0, time.UTC)) {
		t.Error("not overdue before the scheduled time")
	}
	if !item.Overdue(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Error("overdue after the scheduled time")
	}

	logID := uuid.New()
	item.LogID = &logID
	if item.Overdue(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Error("logged item is never overdue")
	}
}
