package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// EntriesInRange returns active appointments of active residents whose
	// scheduled date or return date falls in [from, to] inclusive, joined
	// with the resident display name.
	EntriesInRange(ctx context.Context, from, to time.Time) ([]VisitEntry, error)
}

type AttendanceLogRepository interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]AttendanceLog, error)

	// GetByKey retrieves the single log for a visit key. Returns
	// ErrAttendanceNotFound when the visit is still pending.
	GetByKey(ctx context.Context, key VisitKey) (*AttendanceLog, error)

	Create(ctx context.Context, l *AttendanceLog) error
	Update(ctx context.Context, l *AttendanceLog) error
	Delete(ctx context.Context, id uuid.UUID) error
}
