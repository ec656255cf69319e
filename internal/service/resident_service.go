package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
)

type ResidentService struct {
	repo     resident.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewResidentService(repo resident.Repository, auditSvc *AuditService, log *zap.Logger) *ResidentService {
	return &ResidentService{
		repo:     repo,
		auditSvc: auditSvc,
		log:      log,
	}
}

func (s *ResidentService) CreateResident(ctx context.Context, cmd *resident.CreateResidentCommand, callerID uuid.UUID, callerRole string, ip string) (*resident.Resident, error) {
	if err := validateCreateResident(cmd); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNationalID(ctx, cmd.NationalID, nil)
	if err != nil {
		s.log.Error("failed to check national ID uniqueness", zap.Error(err))
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, resident.ErrResidentAlreadyExists
	}

	r := &resident.Resident{
		FirstName:   strings.TrimSpace(cmd.FirstName),
		LastName:    strings.TrimSpace(cmd.LastName),
		DateOfBirth: cmd.DateOfBirth,
		NationalID:  strings.TrimSpace(cmd.NationalID),
		ContactInfo: resident.ContactInfo{
			Phone:   strings.TrimSpace(cmd.Phone),
			Email:   strings.ToLower(strings.TrimSpace(cmd.Email)),
			Address: cmd.Address,
			City:    cmd.City,
			State:   cmd.State,
			ZipCode: cmd.ZipCode,
		},
		Guardian:          cmd.Guardian,
		Allergies:         cmd.Allergies,
		ChronicConditions: cmd.ChronicConditions,
		AdmittedAt:        cmd.AdmittedAt,
		RoomNumber:        cmd.RoomNumber,
		Notes:             cmd.Notes,
		Status:            resident.StatusActive,
		CreatedBy:         cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to create resident", zap.Error(err))
		return nil, fmt.Errorf("creating resident: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "resident",
		ResourceID:   r.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("resident created",
		zap.String("resident_id", r.ID.String()),
		zap.String("created_by", callerID.String()),
	)

	return r, nil
}

func (s *ResidentService) GetResident(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) (*resident.Resident, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "read",
		ResourceType: "resident",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return r, nil
}

func (s *ResidentService) UpdateResident(ctx context.Context, id uuid.UUID, cmd *resident.UpdateResidentCommand, callerID uuid.UUID, callerRole string, ip string) (*resident.Resident, error) {
	r, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: "update", ResourceType: "resident", ResourceID: id.String(), IPAddress: ip,
	})

	return r, nil
}

func (s *ResidentService) DeactivateResident(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string, ip string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.Deactivate(); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     callerRole,
		Action:       "delete",
		ResourceType: "resident",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return s.repo.SoftDelete(ctx, id)
}

func (s *ResidentService) ListResidents(ctx context.Context, q *resident.ListResidentsQuery) (*resident.PagedResidents, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	return s.repo.List(ctx, q)
}

func validateCreateResident(cmd *resident.CreateResidentCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	if cmd.DateOfBirth.IsZero() {
		errs = append(errs, "date_of_birth is required")
	}
	if cmd.DateOfBirth.After(time.Now()) {
		errs = append(errs, "date_of_birth cannot be in the future")
	}
	if strings.TrimSpace(cmd.NationalID) == "" {
		errs = append(errs, "national_id is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
