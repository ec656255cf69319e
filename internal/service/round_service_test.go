package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/schedule"
)

// ---------- Fakes ----------

type fakeCatalog struct {
	entries []medication.ScheduleEntry
}

func (f *fakeCatalog) Create(ctx context.Context, m *medication.Medication) error { return nil }
func (f *fakeCatalog) GetByID(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	return nil, medication.ErrMedicationNotFound
}
func (f *fakeCatalog) List(ctx context.Context, q *medication.ListMedicationsQuery) (*medication.PagedMedications, error) {
	return &medication.PagedMedications{}, nil
}
func (f *fakeCatalog) Deactivate(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeCatalog) ActiveEntries(ctx context.Context) ([]medication.ScheduleEntry, error) {
	return f.entries, nil
}

type fakeDoseLogs struct {
	byKey  map[medication.DoseKey]*medication.DoseLog
	writes int
}

func newFakeDoseLogs() *fakeDoseLogs {
	return &fakeDoseLogs{byKey: make(map[medication.DoseKey]*medication.DoseLog)}
}

func (f *fakeDoseLogs) ListByDateRange(ctx context.Context, from, to time.Time) ([]medication.DoseLog, error) {
	var out []medication.DoseLog
	for _, l := range f.byKey {
		d := l.ScheduledDate
		if !d.Before(medication.DateOf(from)) && !d.After(medication.DateOf(to)) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeDoseLogs) GetByKey(ctx context.Context, key medication.DoseKey) (*medication.DoseLog, error) {
	l, ok := f.byKey[key]
	if !ok {
		return nil, medication.ErrDoseLogNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeDoseLogs) Create(ctx context.Context, l *medication.DoseLog) error {
	f.writes++
	l.ID = uuid.New()
	cp := *l
	f.byKey[cp.Key()] = &cp
	return nil
}

func (f *fakeDoseLogs) Update(ctx context.Context, l *medication.DoseLog) error {
	f.writes++
	cp := *l
	f.byKey[cp.Key()] = &cp
	return nil
}

func (f *fakeDoseLogs) Delete(ctx context.Context, id uuid.UUID) error {
	f.writes++
	for k, l := range f.byKey {
		if l.ID == id {
			delete(f.byKey, k)
			return nil
		}
	}
	return medication.ErrDoseLogNotFound
}

type fakeDirectory struct {
	names map[uuid.UUID]string
	calls int
}

func (f *fakeDirectory) DisplayNamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.calls++
	return f.names, nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error { return nil }

// ---------- Helpers ----------

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailyEntry(resident string, start time.Time, timeOfDay string) medication.ScheduleEntry {
	return medication.ScheduleEntry{
		Schedule: medication.Schedule{
			ID:        uuid.New(),
			TimeOfDay: timeOfDay,
			Frequency: medication.FrequencyDaily,
			Active:    true,
		},
		MedicationID:   uuid.New(),
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		StartDate:      &start,
		ResidentID:     uuid.New(),
		ResidentName:   resident,
	}
}

func newTestRoundService(catalog *fakeCatalog, logs *fakeDoseLogs, dir *fakeDirectory, now time.Time) *RoundService {
	log := zap.NewNop()
	audit := NewAuditService(fakeAuditRepo{}, log)
	return NewRoundService(catalog, logs, dir, audit, log, func() time.Time { return now })
}

func singlePendingItem(t *testing.T, sheet *RoundSheet) schedule.DueItem {
	t.Helper()
	if len(sheet.Groups) != 1 || len(sheet.Groups[0].Items) != 1 {
		t.Fatalf("expected exactly one due item, got %d groups", len(sheet.Groups))
	}
	return sheet.Groups[0].Items[0]
}

// ---------- Tests ----------

func TestRoundLifecycleDoneUndo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC)
	actor := uuid.New()

	catalog := &fakeCatalog{entries: []medication.ScheduleEntry{dailyEntry("Ana Souza", testDate(2024, 1, 1), "08:00")}}
	logs := newFakeDoseLogs()
	dir := &fakeDirectory{names: map[uuid.UUID]string{actor: "Nurse Joy"}}
	svc := newTestRoundService(catalog, logs, dir, now)

	// Fresh query: one pending item.
	sheet, err := svc.DaySheet(ctx, testDate(2024, 1, 5))
	if err != nil {
		t.Fatal(err)
	}
	item := singlePendingItem(t, sheet)
	if item.Administered || item.LogID != nil {
		t.Fatal("expected pending item before any transition")
	}
	if sheet.Pending != 1 || sheet.Due != 1 {
		t.Fatalf("sheet counts: %+v", sheet)
	}

	// Mark done: the returned sheet reflects the new disposition.
	sheet, err = svc.MarkDone(ctx, &medication.MarkDoneCommand{
		Key:        item.Key,
		ResidentID: item.ResidentID,
		ActorID:    actor,
		Notes:      "with breakfast",
	}, "nurse", "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	item = singlePendingItem(t, sheet)
	if !item.Administered || item.LogID == nil {
		t.Fatal("expected administered item after MarkDone")
	}
	if item.ActorID == nil || *item.ActorID != actor {
		t.Error("actor not stamped on log")
	}
	if item.ActorName != "Nurse Joy" {
		t.Errorf("actor name = %q", item.ActorName)
	}
	if item.AdministeredAt == nil || !item.AdministeredAt.Equal(now) {
		t.Error("administered_at should come from the injected clock")
	}
	if sheet.Completed != 1 || sheet.Pending != 0 {
		t.Fatalf("sheet counts after done: %+v", sheet)
	}

	// Undo: back to pending with no residual log fields.
	sheet, err = svc.Undo(ctx, &medication.UndoCommand{Key: item.Key, ActorID: actor}, "nurse", "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	item = singlePendingItem(t, sheet)
	if item.LogID != nil || item.Administered || item.AdministeredAt != nil || item.Notes != "" {
		t.Fatalf("residual log fields after undo: %+v", item)
	}
	if sheet.Pending != 1 {
		t.Fatalf("sheet counts after undo: %+v", sheet)
	}
}

func TestMarkNotDoneRequiresReason(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{entries: []medication.ScheduleEntry{dailyEntry("Ana Souza", testDate(2024, 1, 1), "08:00")}}
	logs := newFakeDoseLogs()
	svc := newTestRoundService(catalog, logs, &fakeDirectory{}, time.Now())

	key := medication.NewDoseKey(catalog.entries[0].Schedule.ID, testDate(2024, 1, 5), "08:00")
	_, err := svc.MarkNotDone(ctx, &medication.MarkNotDoneCommand{
		Key:     key,
		ActorID: uuid.New(),
		Reason:  "   ",
	}, "nurse", "10.0.0.1")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if logs.writes != 0 {
		t.Errorf("expected zero storage writes, got %d", logs.writes)
	}
}

func TestRemarkingUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()
	catalog := &fakeCatalog{entries: []medication.ScheduleEntry{dailyEntry("Ana Souza", testDate(2024, 1, 1), "08:00")}}
	logs := newFakeDoseLogs()
	svc := newTestRoundService(catalog, logs, &fakeDirectory{}, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))

	key := medication.NewDoseKey(catalog.entries[0].Schedule.ID, testDate(2024, 1, 5), "08:00")
	resident := catalog.entries[0].ResidentID

	if _, err := svc.MarkNotDone(ctx, &medication.MarkNotDoneCommand{
		Key: key, ResidentID: resident, ActorID: actor, Reason: "refused",
	}, "nurse", ""); err != nil {
		t.Fatal(err)
	}
	if len(logs.byKey) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs.byKey))
	}

	// not-done -> done overwrites the same row and clears the reason.
	sheet, err := svc.MarkDone(ctx, &medication.MarkDoneCommand{
		Key: key, ResidentID: resident, ActorID: actor,
	}, "nurse", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs.byKey) != 1 {
		t.Fatalf("re-marking must not insert a second row, got %d", len(logs.byKey))
	}
	item := singlePendingItem(t, sheet)
	if !item.Administered || item.NotGivenReason != "" {
		t.Errorf("overwrite did not clear the not-given reason: %+v", item)
	}

	// done -> not-done again.
	sheet, err = svc.MarkNotDone(ctx, &medication.MarkNotDoneCommand{
		Key: key, ResidentID: resident, ActorID: actor, Reason: "vomited",
	}, "nurse", "")
	if err != nil {
		t.Fatal(err)
	}
	item = singlePendingItem(t, sheet)
	if item.Administered || item.NotGivenReason != "vomited" || item.AdministeredAt != nil {
		t.Errorf("overwrite back to not-done incomplete: %+v", item)
	}
}

func TestUndoWithoutLog(t *testing.T) {
	ctx := context.Background()
	catalog := &fakeCatalog{entries: []medication.ScheduleEntry{dailyEntry("Ana Souza", testDate(2024, 1, 1), "08:00")}}
	svc := newTestRoundService(catalog, newFakeDoseLogs(), &fakeDirectory{}, time.Now())

	key := medication.NewDoseKey(catalog.entries[0].Schedule.ID, testDate(2024, 1, 5), "08:00")
	_, err := svc.Undo(ctx, &medication.UndoCommand{Key: key, ActorID: uuid.New()}, "nurse", "")
	if !errors.Is(err, medication.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestAlternateDaysAcrossRange(t *testing.T) {
	ctx := context.Background()
	start := testDate(2024, 3, 1)
	entry := dailyEntry("Bruno Lima", start, "12:00")
	entry.Schedule.Frequency = medication.FrequencyAlternateDays
	catalog := &fakeCatalog{entries: []medication.ScheduleEntry{entry}}
	svc := newTestRoundService(catalog, newFakeDoseLogs(), &fakeDirectory{}, time.Now())

	wantDue := map[string]bool{"2024-03-01": true, "2024-03-02": false, "2024-03-03": true}
	for day, due := range wantDue {
		d, _ := time.Parse(time.DateOnly, day)
		sheet, err := svc.DaySheet(ctx, d)
		if err != nil {
			t.Fatal(err)
		}
		if got := sheet.Due == 1; got != due {
			t.Errorf("due on %s = %v, want %v", day, got, due)
		}
	}
}

func TestActorLookupIsBatched(t *testing.T) {
	ctx := context.Background()
	actorA, actorB := uuid.New(), uuid.New()
	start := testDate(2024, 1, 1)

	entries := []medication.ScheduleEntry{
		dailyEntry("Ana Souza", start, "08:00"),
		dailyEntry("Bruno Lima", start, "08:00"),
	}
	catalog := &fakeCatalog{entries: entries}
	logs := newFakeDoseLogs()
	for i, actor := range []uuid.UUID{actorA, actorB} {
		logs.byKey[medication.NewDoseKey(entries[i].Schedule.ID, testDate(2024, 1, 5), "08:00")] = &medication.DoseLog{
			ID:            uuid.New(),
			ScheduleID:    entries[i].Schedule.ID,
			ScheduledDate: testDate(2024, 1, 5),
			ScheduledTime: "08:00",
			Administered:  true,
			ActorID:       actor,
		}
	}
	dir := &fakeDirectory{names: map[uuid.UUID]string{actorA: "A", actorB: "B"}}
	svc := newTestRoundService(catalog, logs, dir, time.Now())

	if _, err := svc.DaySheet(ctx, testDate(2024, 1, 5)); err != nil {
		t.Fatal(err)
	}
	if dir.calls != 1 {
		t.Errorf("expected one batched name lookup, got %d", dir.calls)
	}
}
