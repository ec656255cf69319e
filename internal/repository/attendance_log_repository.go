package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
)

type attendanceLogRepository struct {
	db *gorm.DB
}

func NewAttendanceLogRepository(db *gorm.DB) appointment.AttendanceLogRepository {
	return &attendanceLogRepository{db: db}
}

func (r *attendanceLogRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]appointment.AttendanceLog, error) {
	var logs []appointment.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("scheduled_date BETWEEN ? AND ?", from, to).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("listing attendance logs: %w", err)
	}
	return logs, nil
}

func (r *attendanceLogRepository) GetByKey(ctx context.Context, key appointment.VisitKey) (*appointment.AttendanceLog, error) {
	day, err := time.Parse(time.DateOnly, key.Date)
	if err != nil {
		return nil, appointment.ErrAttendanceNotFound
	}

	var log appointment.AttendanceLog
	err = r.db.WithContext(ctx).
		Where("appointment_id = ? AND scheduled_date = ? AND kind = ?",
			key.AppointmentID, day, key.Kind).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("fetching attendance log: %w", err)
	}
	return &log, nil
}

func (r *attendanceLogRepository) Create(ctx context.Context, l *appointment.AttendanceLog) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("inserting attendance log: %w", err)
	}
	return nil
}

func (r *attendanceLogRepository) Update(ctx context.Context, l *appointment.AttendanceLog) error {
	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return fmt.Errorf("updating attendance log: %w", err)
	}
	return nil
}

func (r *attendanceLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&appointment.AttendanceLog{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting attendance log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appointment.ErrAttendanceNotFound
	}
	return nil
}
