package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/schedule"
)

type fakeAppointments struct {
	byID map[uuid.UUID]*appointment.Appointment
}

func newFakeAppointments(apps ...*appointment.Appointment) *fakeAppointments {
	f := &fakeAppointments{byID: make(map[uuid.UUID]*appointment.Appointment)}
	for _, a := range apps {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAppointments) Create(ctx context.Context, a *appointment.Appointment) error {
	a.ID = uuid.New()
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointments) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, nil
}

func (f *fakeAppointments) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	return &appointment.PagedAppointments{}, nil
}

func (f *fakeAppointments) EntriesInRange(ctx context.Context, from, to time.Time) ([]appointment.VisitEntry, error) {
	var entries []appointment.VisitEntry
	for _, a := range f.byID {
		inRange := func(d *time.Time) bool {
			return d != nil && !d.Before(from) && !d.After(to)
		}
		sd := a.ScheduledDate
		if inRange(&sd) || inRange(a.ReturnDate) {
			entries = append(entries, appointment.VisitEntry{Appointment: *a, ResidentName: "Ana Souza"})
		}
	}
	return entries, nil
}

type fakeAttendance struct {
	byKey  map[appointment.VisitKey]*appointment.AttendanceLog
	writes int
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{byKey: make(map[appointment.VisitKey]*appointment.AttendanceLog)}
}

func (f *fakeAttendance) ListByDateRange(ctx context.Context, from, to time.Time) ([]appointment.AttendanceLog, error) {
	var out []appointment.AttendanceLog
	for _, l := range f.byKey {
		if !l.ScheduledDate.Before(from) && !l.ScheduledDate.After(to) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeAttendance) GetByKey(ctx context.Context, key appointment.VisitKey) (*appointment.AttendanceLog, error) {
	l, ok := f.byKey[key]
	if !ok {
		return nil, appointment.ErrAttendanceNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeAttendance) Create(ctx context.Context, l *appointment.AttendanceLog) error {
	f.writes++
	l.ID = uuid.New()
	cp := *l
	f.byKey[cp.Key()] = &cp
	return nil
}

func (f *fakeAttendance) Update(ctx context.Context, l *appointment.AttendanceLog) error {
	f.writes++
	cp := *l
	f.byKey[cp.Key()] = &cp
	return nil
}

func (f *fakeAttendance) Delete(ctx context.Context, id uuid.UUID) error {
	f.writes++
	for k, l := range f.byKey {
		if l.ID == id {
			delete(f.byKey, k)
			return nil
		}
	}
	return appointment.ErrAttendanceNotFound
}

type fakeResidents struct {
	byID map[uuid.UUID]*resident.Resident
}

func (f *fakeResidents) Create(ctx context.Context, r *resident.Resident) error { return nil }
func (f *fakeResidents) GetByID(ctx context.Context, id uuid.UUID) (*resident.Resident, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, resident.ErrResidentNotFound
	}
	return r, nil
}
func (f *fakeResidents) Update(ctx context.Context, id uuid.UUID, cmd *resident.UpdateResidentCommand) (*resident.Resident, error) {
	return nil, resident.ErrResidentNotFound
}
func (f *fakeResidents) SoftDelete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeResidents) List(ctx context.Context, q *resident.ListResidentsQuery) (*resident.PagedResidents, error) {
	return &resident.PagedResidents{}, nil
}
func (f *fakeResidents) ExistsByNationalID(ctx context.Context, nationalID string, excludeID *uuid.UUID) (bool, error) {
	return false, nil
}

func newTestAppointmentService(repo *fakeAppointments, att *fakeAttendance, now time.Time) *AppointmentService {
	log := zap.NewNop()
	audit := NewAuditService(fakeAuditRepo{}, log)
	residents := &fakeResidents{byID: map[uuid.UUID]*resident.Resident{}}
	return NewAppointmentService(repo, att, residents, &fakeDirectory{}, audit, log, func() time.Time { return now })
}

func visitWithReturn(specialty string, visit, ret time.Time) *appointment.Appointment {
	return &appointment.Appointment{
		ID:            uuid.New(),
		ResidentID:    uuid.New(),
		Specialty:     specialty,
		ScheduledDate: visit,
		ReturnDate:    &ret,
		Active:        true,
	}
}

func TestTrackingSplitsVisitAndReturn(t *testing.T) {
	ctx := context.Background()
	visit := testDate(2024, 2, 5)
	ret := testDate(2024, 2, 19)
	repo := newFakeAppointments(visitWithReturn("dentist", visit, ret))
	svc := newTestAppointmentService(repo, newFakeAttendance(), time.Now())

	sheet, err := svc.Tracking(ctx, visit, ret)
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Due != 2 || sheet.Pending != 2 {
		t.Fatalf("expected 2 pending visits, got %+v", sheet)
	}

	kinds := map[appointment.VisitKind]bool{}
	for _, g := range sheet.Groups {
		for _, item := range g.Items {
			kinds[item.Key.Kind] = true
		}
	}
	if !kinds[appointment.KindInitial] || !kinds[appointment.KindFollowUp] {
		t.Errorf("expected one initial and one follow_up visit, got %v", kinds)
	}
}

func TestTrackingReturnsGroupLast(t *testing.T) {
	ctx := context.Background()
	day := testDate(2024, 2, 19)
	repo := newFakeAppointments(
		visitWithReturn("dentist", testDate(2024, 2, 5), day),
		visitWithReturn("cardiology", day, testDate(2024, 3, 1)),
	)
	svc := newTestAppointmentService(repo, newFakeAttendance(), time.Now())

	sheet, err := svc.Tracking(ctx, day, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(sheet.Groups))
	}
	if sheet.Groups[0].Key != "cardiology" {
		t.Errorf("specialty group should come first, got %q", sheet.Groups[0].Key)
	}
	if sheet.Groups[1].Key != schedule.ReturnsGroupKey {
		t.Errorf("returns group must be last, got %q", sheet.Groups[1].Key)
	}
}

func TestMarkAttendedThenUndo(t *testing.T) {
	ctx := context.Background()
	day := testDate(2024, 2, 5)
	now := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	a := visitWithReturn("dentist", day, testDate(2024, 2, 19))
	repo := newFakeAppointments(a)
	att := newFakeAttendance()
	svc := newTestAppointmentService(repo, att, now)
	actor := uuid.New()

	key := appointment.NewVisitKey(a.ID, day, appointment.KindInitial)
	sheet, err := svc.MarkAttended(ctx, &appointment.MarkAttendanceCommand{Key: key, ActorID: actor}, "nurse", "")
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Attended != 1 {
		t.Fatalf("expected 1 attended visit, got %+v", sheet)
	}
	stored := att.byKey[key]
	if stored == nil || !stored.Attended || stored.AttendedAt == nil || !stored.AttendedAt.Equal(now) {
		t.Fatalf("stored log incomplete: %+v", stored)
	}
	if stored.ResidentID != a.ResidentID {
		t.Error("log should carry the appointment's resident")
	}

	sheet, err = svc.UndoAttendance(ctx, &appointment.MarkAttendanceCommand{Key: key, ActorID: actor}, "nurse", "")
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Pending != 1 || len(att.byKey) != 0 {
		t.Fatalf("undo should remove the log, got %+v", sheet)
	}

	_, err = svc.UndoAttendance(ctx, &appointment.MarkAttendanceCommand{Key: key, ActorID: actor}, "nurse", "")
	if !errors.Is(err, appointment.ErrNothingToUndo) {
		t.Fatalf("second undo should fail with ErrNothingToUndo, got %v", err)
	}
}

func TestMarkMissedRequiresReason(t *testing.T) {
	ctx := context.Background()
	day := testDate(2024, 2, 5)
	a := visitWithReturn("dentist", day, testDate(2024, 2, 19))
	att := newFakeAttendance()
	svc := newTestAppointmentService(newFakeAppointments(a), att, time.Now())

	key := appointment.NewVisitKey(a.ID, day, appointment.KindInitial)
	_, err := svc.MarkMissed(ctx, &appointment.MarkAttendanceCommand{
		Key: key, ActorID: uuid.New(), Reason: "  ",
	}, "nurse", "")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if att.writes != 0 {
		t.Errorf("expected zero storage writes, got %d", att.writes)
	}
}

func TestMarkMissedThenAttendedOverwrites(t *testing.T) {
	ctx := context.Background()
	day := testDate(2024, 2, 5)
	a := visitWithReturn("dentist", day, testDate(2024, 2, 19))
	att := newFakeAttendance()
	svc := newTestAppointmentService(newFakeAppointments(a), att, time.Now())
	actor := uuid.New()

	key := appointment.NewVisitKey(a.ID, day, appointment.KindInitial)
	if _, err := svc.MarkMissed(ctx, &appointment.MarkAttendanceCommand{
		Key: key, ActorID: actor, Reason: "transport unavailable",
	}, "nurse", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.MarkAttended(ctx, &appointment.MarkAttendanceCommand{
		Key: key, ActorID: actor,
	}, "nurse", ""); err != nil {
		t.Fatal(err)
	}

	if len(att.byKey) != 1 {
		t.Fatalf("re-marking must not insert a second row, got %d", len(att.byKey))
	}
	stored := att.byKey[key]
	if !stored.Attended || stored.MissedReason != "" {
		t.Errorf("overwrite did not clear the missed reason: %+v", stored)
	}
}

func TestCreateAppointmentReturnBeforeVisit(t *testing.T) {
	ctx := context.Background()
	svc := newTestAppointmentService(newFakeAppointments(), newFakeAttendance(), time.Now())

	ret := testDate(2024, 2, 1)
	_, err := svc.CreateAppointment(ctx, &appointment.CreateAppointmentCommand{
		ResidentID:    uuid.New(),
		Specialty:     "dentist",
		ScheduledDate: testDate(2024, 2, 10),
		ReturnDate:    &ret,
	}, "coordinator", "")
	if !errors.Is(err, appointment.ErrReturnBeforeVisit) {
		t.Fatalf("expected ErrReturnBeforeVisit, got %v", err)
	}
}

func TestCreateAppointmentInPast(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestAppointmentService(newFakeAppointments(), newFakeAttendance(), now)

	_, err := svc.CreateAppointment(ctx, &appointment.CreateAppointmentCommand{
		ResidentID:    uuid.New(),
		Specialty:     "dentist",
		ScheduledDate: testDate(2024, 2, 1),
	}, "coordinator", "")
	if !errors.Is(err, appointment.ErrScheduledInPast) {
		t.Fatalf("expected ErrScheduledInPast, got %v", err)
	}
}
