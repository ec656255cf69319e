package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
)

type doseLogRepository struct {
	db *gorm.DB
}

func NewDoseLogRepository(db *gorm.DB) medication.DoseLogRepository {
	return &doseLogRepository{db: db}
}

func (r *doseLogRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]medication.DoseLog, error) {
	var logs []medication.DoseLog
	err := r.db.WithContext(ctx).
		Where("scheduled_date BETWEEN ? AND ?", medication.DateOf(from), medication.DateOf(to)).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("listing dose logs: %w", err)
	}
	return logs, nil
}

func (r *doseLogRepository) GetByKey(ctx context.Context, key medication.DoseKey) (*medication.DoseLog, error) {
	day, err := time.Parse(time.DateOnly, key.Date)
	if err != nil {
		return nil, medication.ErrDoseLogNotFound
	}

	var log medication.DoseLog
	err = r.db.WithContext(ctx).
		Where("schedule_id = ? AND scheduled_date = ? AND scheduled_time = ?",
			key.ScheduleID, day, key.Time).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medication.ErrDoseLogNotFound
		}
		return nil, fmt.Errorf("fetching dose log: %w", err)
	}
	return &log, nil
}

func (r *doseLogRepository) Create(ctx context.Context, l *medication.DoseLog) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("inserting dose log: %w", err)
	}
	return nil
}

func (r *doseLogRepository) Update(ctx context.Context, l *medication.DoseLog) error {
	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return fmt.Errorf("updating dose log: %w", err)
	}
	return nil
}

func (r *doseLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&medication.DoseLog{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting dose log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return medication.ErrDoseLogNotFound
	}
	return nil
}
