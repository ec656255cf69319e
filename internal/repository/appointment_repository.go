package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) appointment.Repository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	query := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("deleted_at IS NULL")

	if q.ResidentID != nil {
		query = query.Where("resident_id = ?", *q.ResidentID)
	}
	if q.Specialty != nil {
		query = query.Where("specialty = ?", *q.Specialty)
	}
	if q.DateFrom != nil {
		query = query.Where("scheduled_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("scheduled_date <= ?", *q.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var appointments []*appointment.Appointment
	err := query.
		Order("scheduled_date asc, scheduled_time asc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	return &appointment.PagedAppointments{
		Appointments: appointments,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
	}, nil
}

// EntriesInRange matches an appointment when either its visit date or
// its return date falls inside the range; the reconciler decides which
// of the two visits is actually due.
func (r *appointmentRepository) EntriesInRange(ctx context.Context, from, to time.Time) ([]appointment.VisitEntry, error) {
	var appointments []appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("active = ? AND deleted_at IS NULL", true).
		Where("(scheduled_date BETWEEN ? AND ?) OR (return_date BETWEEN ? AND ?)", from, to, from, to).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("loading appointments in range: %w", err)
	}
	if len(appointments) == 0 {
		return nil, nil
	}

	residentIDs := make([]uuid.UUID, 0, len(appointments))
	seen := make(map[uuid.UUID]struct{}, len(appointments))
	for i := range appointments {
		if _, ok := seen[appointments[i].ResidentID]; ok {
			continue
		}
		seen[appointments[i].ResidentID] = struct{}{}
		residentIDs = append(residentIDs, appointments[i].ResidentID)
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

	var entries []appointment.VisitEntry
	for i := range appointments {
		name, active := names[appointments[i].ResidentID]
		if !active {
			continue
		}
		entries = append(entries, appointment.VisitEntry{
			Appointment:  appointments[i],
			ResidentName: name,
		})
	}
	return entries, nil
}
