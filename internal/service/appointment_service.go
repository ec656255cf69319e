package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/schedule"
)

// TrackingSheet is the due/return view over a date range: visits
// grouped by specialty, with the returns group always last.
type TrackingSheet struct {
	From   time.Time                            `json:"from"`
	To     time.Time                            `json:"to"`
	Groups []schedule.Group[schedule.VisitItem] `json:"groups"`

	Due      int `json:"due"`
	Attended int `json:"attended"`
	Missed   int `json:"missed"`
	Pending  int `json:"pending"`
}

type AppointmentService struct {
	repo         appointment.Repository
	attendance   appointment.AttendanceLogRepository
	residentRepo resident.Repository
	users        UserDirectory
	auditSvc     *AuditService
	log          *zap.Logger
	clock        func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	attendance appointment.AttendanceLogRepository,
	residentRepo resident.Repository,
	users UserDirectory,
	auditSvc *AuditService,
	log *zap.Logger,
	clock func() time.Time,
) *AppointmentService {
	if clock == nil {
		clock = time.Now
	}
	return &AppointmentService{
		repo:         repo,
		attendance:   attendance,
		residentRepo: residentRepo,
		users:        users,
		auditSvc:     auditSvc,
		log:          log,
		clock:        clock,
	}
}

func (s *AppointmentService) CreateAppointment(ctx context.Context, cmd *appointment.CreateAppointmentCommand, callerRole string, ip string) (*appointment.Appointment, error) {
	var errs []string
	if strings.TrimSpace(cmd.Specialty) == "" {
		errs = append(errs, "specialty is required")
	}
	if cmd.ScheduledDate.IsZero() {
		errs = append(errs, "scheduled_date is required")
	}
	if cmd.ScheduledTime != "" {
		if _, err := time.Parse("15:04", cmd.ScheduledTime); err != nil {
			errs = append(errs, "scheduled_time must be in HH:MM format")
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if cmd.ReturnDate != nil && cmd.ReturnDate.Before(cmd.ScheduledDate) {
		return nil, appointment.ErrReturnBeforeVisit
	}
	if cmd.ScheduledDate.Before(dayStart(s.clock())) {
		return nil, appointment.ErrScheduledInPast
	}

	r, err := s.residentRepo.GetByID(ctx, cmd.ResidentID)
	if err != nil {
		return nil, fmt.Errorf("verifying resident: %w", err)
	}
	if !r.IsActive() {
		return nil, fmt.Errorf("resident is not active")
	}

	a := &appointment.Appointment{
		ResidentID:    cmd.ResidentID,
		Specialty:     strings.TrimSpace(cmd.Specialty),
		Provider:      cmd.Provider,
		Location:      cmd.Location,
		ScheduledDate: cmd.ScheduledDate,
		ScheduledTime: cmd.ScheduledTime,
		ReturnDate:    cmd.ReturnDate,
		Notes:         cmd.Notes,
		Active:        true,
		CreatedBy:     cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.CreatedBy, UserRole: callerRole,
		Action: "create", ResourceType: "appointment", ResourceID: a.ID.String(), IPAddress: ip,
	})

	return a, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

// Tracking computes the due/return sheet over [from, to] inclusive.
func (s *AppointmentService) Tracking(ctx context.Context, from, to time.Time) (*TrackingSheet, error) {
	entries, err := s.repo.EntriesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading appointment catalog: %w", err)
	}

	logs, err := s.attendance.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading attendance logs: %w", err)
	}

	items := schedule.ReconcileVisits(entries, logs, from, to)
	if err := s.annotateActors(ctx, items); err != nil {
		return nil, err
	}

	sheet := &TrackingSheet{
		From:   from,
		To:     to,
		Groups: schedule.GroupVisits(items),
	}
	for i := range items {
		sheet.Due++
		switch {
		case items[i].Attended:
			sheet.Attended++
		case items[i].LogID != nil:
			sheet.Missed++
		default:
			sheet.Pending++
		}
	}

	return sheet, nil
}

func (s *AppointmentService) annotateActors(ctx context.Context, items []schedule.VisitItem) error {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for i := range items {
		if items[i].ActorID == nil {
			continue
		}
		if _, ok := seen[*items[i].ActorID]; ok {
			continue
		}
		seen[*items[i].ActorID] = struct{}{}
		ids = append(ids, *items[i].ActorID)
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := s.users.DisplayNamesByID(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolving actor names: %w", err)
	}
	for i := range items {
		if items[i].ActorID != nil {
			items[i].ActorName = names[*items[i].ActorID]
		}
	}
	return nil
}

// MarkAttended records a visit as attended, updating in place when a
// log already exists for the visit key.
func (s *AppointmentService) MarkAttended(ctx context.Context, cmd *appointment.MarkAttendanceCommand, callerRole string, ip string) (*TrackingSheet, error) {
	day, err := validateVisitKey(cmd.Key)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	apply := func(l *appointment.AttendanceLog) {
		l.Attended = true
		l.AttendedAt = &now
		l.ActorID = cmd.ActorID
		l.Notes = cmd.Notes
		l.MissedReason = ""
	}
	if err := s.upsertAttendance(ctx, cmd.Key, day, apply); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.ActorID, UserRole: callerRole,
		Action: "update", ResourceType: "attendance_log",
		ResourceID: visitKeyString(cmd.Key), IPAddress: ip,
		Changes: `{"attended":true}`,
	})

	return s.Tracking(ctx, day, day)
}

// MarkMissed records a visit as missed; the reason is mandatory and an
// empty one fails before any storage call.
func (s *AppointmentService) MarkMissed(ctx context.Context, cmd *appointment.MarkAttendanceCommand, callerRole string, ip string) (*TrackingSheet, error) {
	day, err := validateVisitKey(cmd.Key)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, &ValidationError{Fields: []string{"reason is required"}}
	}

	apply := func(l *appointment.AttendanceLog) {
		l.Attended = false
		l.AttendedAt = nil
		l.ActorID = cmd.ActorID
		l.Notes = cmd.Notes
		l.MissedReason = cmd.Reason
	}
	if err := s.upsertAttendance(ctx, cmd.Key, day, apply); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.ActorID, UserRole: callerRole,
		Action: "update", ResourceType: "attendance_log",
		ResourceID: visitKeyString(cmd.Key), IPAddress: ip,
		Changes: `{"attended":false}`,
	})

	return s.Tracking(ctx, day, day)
}

// UndoAttendance deletes the attendance log, returning the visit to
// pending on the next reconciliation.
func (s *AppointmentService) UndoAttendance(ctx context.Context, cmd *appointment.MarkAttendanceCommand, callerRole string, ip string) (*TrackingSheet, error) {
	day, err := validateVisitKey(cmd.Key)
	if err != nil {
		return nil, err
	}

	existing, err := s.attendance.GetByKey(ctx, cmd.Key)
	if err != nil {
		if errors.Is(err, appointment.ErrAttendanceNotFound) {
			return nil, appointment.ErrNothingToUndo
		}
		return nil, fmt.Errorf("looking up attendance log: %w", err)
	}

	if err := s.attendance.Delete(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("deleting attendance log: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.ActorID, UserRole: callerRole,
		Action: "delete", ResourceType: "attendance_log",
		ResourceID: visitKeyString(cmd.Key), IPAddress: ip,
	})

	return s.Tracking(ctx, day, day)
}

func (s *AppointmentService) upsertAttendance(ctx context.Context, key appointment.VisitKey, day time.Time, apply func(*appointment.AttendanceLog)) error {
	existing, err := s.attendance.GetByKey(ctx, key)
	switch {
	case err == nil:
		apply(existing)
		if err := s.attendance.Update(ctx, existing); err != nil {
			return fmt.Errorf("updating attendance log: %w", err)
		}
		return nil
	case errors.Is(err, appointment.ErrAttendanceNotFound):
		a, err := s.repo.GetByID(ctx, key.AppointmentID)
		if err != nil {
			return fmt.Errorf("verifying appointment: %w", err)
		}
		l := &appointment.AttendanceLog{
			AppointmentID: key.AppointmentID,
			ResidentID:    a.ResidentID,
			ScheduledDate: day,
			Kind:          key.Kind,
		}
		apply(l)
		if err := s.attendance.Create(ctx, l); err != nil {
			return fmt.Errorf("creating attendance log: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("looking up attendance log: %w", err)
	}
}

func validateVisitKey(key appointment.VisitKey) (time.Time, error) {
	var errs []string
	if key.AppointmentID == uuid.Nil {
		errs = append(errs, "appointment_id is required")
	}
	day, err := time.Parse(time.DateOnly, key.Date)
	if err != nil {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	if !key.Kind.IsValid() {
		errs = append(errs, "kind must be initial or follow_up")
	}
	if len(errs) > 0 {
		return time.Time{}, &ValidationError{Fields: errs}
	}
	return day, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func visitKeyString(key appointment.VisitKey) string {
	return key.AppointmentID.String() + "-" + key.Date + "-" + string(key.Kind)
}
