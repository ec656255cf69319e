package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
)

type MedicationService struct {
	repo         medication.Repository
	residentRepo resident.Repository
	auditSvc     *AuditService
	log          *zap.Logger
}

func NewMedicationService(repo medication.Repository, residentRepo resident.Repository, auditSvc *AuditService, log *zap.Logger) *MedicationService {
	return &MedicationService{repo: repo, residentRepo: residentRepo, auditSvc: auditSvc, log: log}
}

// CreateMedication persists a medication together with its dosing
// schedules in a single transaction. Schedule invariants (weekly rules
// need a weekday set, valid HH:MM times) are enforced before storage.
func (s *MedicationService) CreateMedication(ctx context.Context, cmd *medication.CreateMedicationCommand, callerRole string, ip string) (*medication.Medication, error) {
	var errs []string
	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if len(cmd.Schedules) == 0 {
		errs = append(errs, "at least one schedule is required")
	}
	if cmd.StartDate != nil && cmd.EndDate != nil && cmd.EndDate.Before(*cmd.StartDate) {
		errs = append(errs, "end_date cannot precede start_date")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	r, err := s.residentRepo.GetByID(ctx, cmd.ResidentID)
	if err != nil {
		return nil, fmt.Errorf("verifying resident: %w", err)
	}
	if !r.IsActive() {
		return nil, fmt.Errorf("resident is not active")
	}

	m := &medication.Medication{
		ResidentID:  cmd.ResidentID,
		Name:        strings.TrimSpace(cmd.Name),
		GenericName: cmd.GenericName,
		Dosage:      cmd.Dosage,
		Route:       cmd.Route,
		Prescriber:  cmd.Prescriber,
		StartDate:   cmd.StartDate,
		EndDate:     cmd.EndDate,
		Active:      true,
		CreatedBy:   cmd.CreatedBy,
	}

	for _, sc := range cmd.Schedules {
		sched := medication.Schedule{
			TimeOfDay:    sc.TimeOfDay,
			Frequency:    sc.Frequency,
			Weekdays:     sc.Weekdays,
			Instructions: sc.Instructions,
			DepartmentID: sc.DepartmentID,
			Active:       true,
		}
		if err := sched.Validate(); err != nil {
			return nil, err
		}
		m.Schedules = append(m.Schedules, sched)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		s.log.Error("failed to create medication", zap.Error(err))
		return nil, fmt.Errorf("creating medication: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: cmd.CreatedBy, UserRole: callerRole,
		Action: "create", ResourceType: "medication", ResourceID: m.ID.String(), IPAddress: ip,
	})

	return m, nil
}

func (s *MedicationService) GetMedication(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MedicationService) ListMedications(ctx context.Context, q *medication.ListMedicationsQuery) (*medication.PagedMedications, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

// DeactivateMedication soft-disables a medication and its schedules.
// Existing dose logs stay untouched so history remains queryable.
func (s *MedicationService) DeactivateMedication(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivating medication: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "delete", ResourceType: "medication", ResourceID: id.String(), IPAddress: ip,
	})

	return nil
}
