package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
)

type medicationRepository struct {
	db *gorm.DB
}

func NewMedicationRepository(db *gorm.DB) medication.Repository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, m *medication.Medication) error {
	// A single Create cascades into the schedules association; gorm wraps
	// the inserts in one transaction.
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("inserting medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	var m medication.Medication
	err := r.db.WithContext(ctx).
		Preload("Schedules", "deleted_at IS NULL").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medication.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("fetching medication: %w", err)
	}
	return &m, nil
}

func (r *medicationRepository) List(ctx context.Context, q *medication.ListMedicationsQuery) (*medication.PagedMedications, error) {
	query := r.db.WithContext(ctx).
		Model(&medication.Medication{}).
		Where("deleted_at IS NULL")

	if q.ResidentID != nil {
		query = query.Where("resident_id = ?", *q.ResidentID)
	}
	if q.Active != nil {
		query = query.Where("active = ?", *q.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting medications: %w", err)
	}

	var meds []*medication.Medication
	err := query.
		Preload("Schedules", "deleted_at IS NULL").
		Order("created_at desc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}

	return &medication.PagedMedications{
		Medications: meds,
		TotalCount:  total,
		Page:        q.Page,
		PageSize:    q.PageSize,
		TotalPages:  int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
	}, nil
}

func (r *medicationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&medication.Medication{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Update("active", false)
		if result.Error != nil {
			return fmt.Errorf("deactivating medication: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return medication.ErrMedicationNotFound
		}

		if err := tx.Model(&medication.Schedule{}).
			Where("medication_id = ?", id).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("deactivating schedules: %w", err)
		}
		return nil
	})
}

// ActiveEntries loads the schedule catalog in two queries: active
// medications with their active schedules, then the active residents
// they belong to. The join happens in memory so the serialized weekday
// sets come back through the model layer intact.
func (r *medicationRepository) ActiveEntries(ctx context.Context) ([]medication.ScheduleEntry, error) {
	var meds []medication.Medication
	err := r.db.WithContext(ctx).
		Preload("Schedules", "active = ? AND deleted_at IS NULL", true).
		Where("active = ? AND deleted_at IS NULL", true).
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("loading active medications: %w", err)
	}

	residentIDs := make([]uuid.UUID, 0, len(meds))
	seen := make(map[uuid.UUID]struct{}, len(meds))
	for i := range meds {
		if _, ok := seen[meds[i].ResidentID]; ok {
			continue
		}
		seen[meds[i].ResidentID] = struct{}{}
		residentIDs = append(residentIDs, meds[i].ResidentID)
	}
	if len(residentIDs) == 0 {
		return nil, nil
	}

	var residents []resident.Resident
	err = r.db.WithContext(ctx).
		Select("id", "first_name", "last_name").
		Where("id IN ? AND status = ? AND deleted_at IS NULL", residentIDs, resident.StatusActive).
		Find(&residents).Error
	if err != nil {
		return nil, fmt.Errorf("loading residents: %w", err)
	}

	names := make(map[uuid.UUID]string, len(residents))
	for i := range residents {
		names[residents[i].ID] = residents[i].FullName()
	}

	var entries []medication.ScheduleEntry
	for i := range meds {
		m := &meds[i]
		name, active := names[m.ResidentID]
		if !active {
			continue
		}
		for _, s := range m.Schedules {
			entries = append(entries, medication.ScheduleEntry{
				Schedule:       s,
				MedicationID:   m.ID,
				MedicationName: m.Name,
				Dosage:         m.Dosage,
				Route:          m.Route,
				StartDate:      m.StartDate,
				EndDate:        m.EndDate,
				ResidentID:     m.ResidentID,
				ResidentName:   name,
			})
		}
	}
	return entries, nil
}
