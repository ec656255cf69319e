package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/schedule"
)

// UserDirectory resolves actor display names in one batched query to
// avoid an N+1 lookup per due item.
type UserDirectory interface {
	DisplayNamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// RoundSheet is the authoritative view of one day's medication round:
// due items grouped by time slot with overall counts.
type RoundSheet struct {
	Date   time.Time                          `json:"date"`
	Groups []schedule.Group[schedule.DueItem] `json:"groups"`

	Due          int `json:"due"`
	Completed    int `json:"completed"`
	NotCompleted int `json:"not_completed"`
	Pending      int `json:"pending"`
}

// RoundService resolves recurring medication schedules against the dose
// log and performs the three disposition transitions. Every transition
// re-runs the full load and reconciliation rather than patching the
// previous view, so the caller always sees a state consistent with
// concurrent edits.
type RoundService struct {
	catalog  medication.Repository
	doseLogs medication.DoseLogRepository
	users    UserDirectory
	auditSvc *AuditService
	log      *zap.Logger
	clock    func() time.Time
}

func NewRoundService(
	catalog medication.Repository,
	doseLogs medication.DoseLogRepository,
	users UserDirectory,
	auditSvc *AuditService,
	log *zap.Logger,
	clock func() time.Time,
) *RoundService {
	if clock == nil {
		clock = time.Now
	}
	return &RoundService{
		catalog:  catalog,
		doseLogs: doseLogs,
		users:    users,
		auditSvc: auditSvc,
		log:      log,
		clock:    clock,
	}
}

// DaySheet computes the round sheet for a single calendar date.
func (s *RoundService) DaySheet(ctx context.Context, day time.Time) (*RoundSheet, error) {
	items, err := s.Items(ctx, day, day)
	if err != nil {
		return nil, err
	}

	sheet := &RoundSheet{
		Date:   medication.DateOf(day),
		Groups: schedule.GroupByTime(items),
	}
	for i := range items {
		sheet.Due++
		switch {
		case items[i].Administered:
			sheet.Completed++
		case items[i].LogID != nil:
			sheet.NotCompleted++
		default:
			sheet.Pending++
		}
	}

	return sheet, nil
}

// Items reconciles the active catalog with the dose log over an
// inclusive date range and annotates actor display names.
func (s *RoundService) Items(ctx context.Context, from, to time.Time) ([]schedule.DueItem, error) {
	entries, err := s.catalog.ActiveEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule catalog: %w", err)
	}

	logs, err := s.doseLogs.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading dose logs: %w", err)
	}

	items := schedule.Reconcile(entries, logs, from, to)
	if err := s.annotateActors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RoundService) annotateActors(ctx context.Context, items []schedule.DueItem) error {
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

// MarkDone records a dose as administered. If a log already exists for
// the dose key it is updated in place, so re-marking converges instead
// of duplicating rows. Returns the re-reconciled sheet for the dose's
// date.
func (s *RoundService) MarkDone(ctx context.Context, cmd *medication.MarkDoneCommand, callerRole string, ip string) (*RoundSheet, error) {
	day, err := validateDoseKey(cmd.Key)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	existing, err := s.doseLogs.GetByKey(ctx, cmd.Key)
	switch {
	case err == nil:
		existing.Administered = true
		existing.AdministeredAt = &now
		existing.ActorID = cmd.ActorID
		existing.Notes = cmd.Notes
		existing.NotGivenReason = ""
		if err := s.doseLogs.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("updating dose log: %w", err)
		}
	case errors.Is(err, medication.ErrDoseLogNotFound):
		log := &medication.DoseLog{
			ScheduleID:     cmd.Key.ScheduleID,
			ResidentID:     cmd.ResidentID,
			ScheduledDate:  day,
			ScheduledTime:  cmd.Key.Time,
			Administered:   true,
			AdministeredAt: &now,
			ActorID:        cmd.ActorID,
			Notes:          cmd.Notes,
		}
		if err := s.doseLogs.Create(ctx, log); err != nil {
			return nil, fmt.Errorf("creating dose log: %w", err)
		}
	default:
		return nil, fmt.Errorf("looking up dose log: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.ActorID, UserRole: callerRole,
		Action: "update", ResourceType: "dose_log",
		ResourceID: doseKeyString(cmd.Key), IPAddress: ip,
		Changes: `{"administered":true}`,
	})

	return s.DaySheet(ctx, day)
}

// MarkNotDone records a dose as deliberately not administered. The
// reason is mandatory; an empty reason fails before any storage call.
func (s *RoundService) MarkNotDone(ctx context.Context, cmd *medication.MarkNotDoneCommand, callerRole string, ip string) (*RoundSheet, error) {
	day, err := validateDoseKey(cmd.Key)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, &ValidationError{Fields: []string{"reason is required"}}
	}

	existing, err := s.doseLogs.GetByKey(ctx, cmd.Key)
	switch {
	case err == nil:
		existing.Administered = false
		existing.AdministeredAt = nil
		existing.ActorID = cmd.ActorID
		existing.Notes = cmd.Notes
		existing.NotGivenReason = cmd.Reason
		if err := s.doseLogs.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("updating dose log: %w", err)
		}
	case errors.Is(err, medication.ErrDoseLogNotFound):
		log := &medication.DoseLog{
			ScheduleID:     cmd.Key.ScheduleID,
			ResidentID:     cmd.ResidentID,
			ScheduledDate:  day,
			ScheduledTime:  cmd.Key.Time,
			Administered:   false,
			ActorID:        cmd.ActorID,
			Notes:          cmd.Notes,
			NotGivenReason: cmd.Reason,
		}
		if err := s.doseLogs.Create(ctx, log); err != nil {
			return nil, fmt.Errorf("creating dose log: %w", err)
		}
	default:
		return nil, fmt.Errorf("looking up dose log: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.ActorID, UserRole: callerRole,
		Action: "update", ResourceType: "dose_log",
		ResourceID: doseKeyString(cmd.Key), IPAddress: ip,
		Changes: `{"administered":false}`,
	})

	return s.DaySheet(ctx, day)
}

// Undo deletes the dose log entirely, returning the dose to pending on
// the next reconciliation. Undoing a pending dose fails with
// medication.ErrNothingToUndo so the caller can render a specific
// message instead of a generic storage failure.
func (s *RoundService) Undo(ctx context.Context, cmd *medication.UndoCommand, callerRole string, ip string) (*RoundSheet, error) {
	day, err := validateDoseKey(cmd.Key)
	if err != nil {
		return nil, err
	}

	existing, err := s.doseLogs.GetByKey(ctx, cmd.Key)
	if err != nil {
		if errors.Is(err, medication.ErrDoseLogNotFound) {
			return nil, medication.ErrNothingToUndo
		}
		return nil, fmt.Errorf("looking up dose log: %w", err)
	}

	if err := s.doseLogs.Delete(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("deleting dose log: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.ActorID, UserRole: callerRole,
		Action: "delete", ResourceType: "dose_log",
		ResourceID: doseKeyString(cmd.Key), IPAddress: ip,
	})

	return s.DaySheet(ctx, day)
}

func validateDoseKey(key medication.DoseKey) (time.Time, error) {
	var errs []string
	if key.ScheduleID == uuid.Nil {
		errs = append(errs, "schedule_id is required")
	}
	day, err := time.Parse(time.DateOnly, key.Date)
	if err != nil {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", key.Time); err != nil {
		errs = append(errs, "time must be in HH:MM format")
	}
	if len(errs) > 0 {
		return time.Time{}, &ValidationError{Fields: errs}
	}
	return day, nil
}

func doseKeyString(key medication.DoseKey) string {
	return key.ScheduleID.String() + "-" + key.Date + "-" + key.Time
}
