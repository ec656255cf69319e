package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
)

type residentRepository struct {
	db *gorm.DB
}

func NewResidentRepository(db *gorm.DB) resident.Repository {
	return &residentRepository{db: db}
}

func (r *residentRepository) Create(ctx context.Context, res *resident.Resident) error {
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return resident.ErrResidentAlreadyExists
		}
		return fmt.Errorf("inserting resident: %w", err)
	}
	return nil
}

func (r *residentRepository) GetByID(ctx context.Context, id uuid.UUID) (*resident.Resident, error) {
	var res resident.Resident
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resident.ErrResidentNotFound
		}
		return nil, fmt.Errorf("fetching resident: %w", err)
	}
	return &res, nil
}

func (r *residentRepository) Update(ctx context.Context, id uuid.UUID, cmd *resident.UpdateResidentCommand) (*resident.Resident, error) {
	res, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&res.FirstName, cmd.FirstName)
	applyString(&res.LastName, cmd.LastName)
	applyString(&res.Phone, cmd.Phone)
	applyString(&res.Email, cmd.Email)
	applyString(&res.Address, cmd.Address)
	applyString(&res.City, cmd.City)
	applyString(&res.State, cmd.State)
	applyString(&res.ZipCode, cmd.ZipCode)
	applyString(&res.RoomNumber, cmd.RoomNumber)
	applyString(&res.Notes, cmd.Notes)
	if cmd.Guardian != nil {
		res.Guardian = cmd.Guardian
	}
	if cmd.Allergies != nil {
		res.Allergies = *cmd.Allergies
	}

	if err := r.db.WithContext(ctx).Save(res).Error; err != nil {
		return nil, fmt.Errorf("updating resident: %w", err)
	}
	return res, nil
}

func (r *residentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&resident.Resident{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"deleted_at": time.Now(),
			"status":     resident.StatusInactive,
		})
	if result.Error != nil {
		return fmt.Errorf("soft-deleting resident: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return resident.ErrResidentNotFound
	}
	return nil
}

func (r *residentRepository) List(ctx context.Context, q *resident.ListResidentsQuery) (*resident.PagedResidents, error) {
	query := r.db.WithContext(ctx).
		Model(&resident.Resident{}).
		Where("deleted_at IS NULL")

	if q.Search != "" {
		query = query.Where("first_name || ' ' || last_name ILIKE ?", "%"+q.Search+"%")
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting residents: %w", err)
	}

	sortBy := "created_at"
	switch q.SortBy {
	case "last_name", "admitted_at", "room_number":
		sortBy = q.SortBy
	}
	order := "desc"
	if q.SortOrder == "asc" {
		order = "asc"
	}

	var residents []*resident.Resident
	err := query.
		Order(sortBy + " " + order).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&residents).Error
	if err != nil {
		return nil, fmt.Errorf("listing residents: %w", err)
	}

	return &resident.PagedResidents{
		Residents:  residents,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
	}, nil
}

func (r *residentRepository) ExistsByNationalID(ctx context.Context, nationalID string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&resident.Resident{}).
		Where("national_id = ? AND deleted_at IS NULL", nationalID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking national ID: %w", err)
	}
	return count > 0, nil
}
