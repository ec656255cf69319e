package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a medication together with its schedules in one
	// transaction.
	Create(ctx context.Context, m *Medication) error

	// GetByID retrieves a medication with its schedules preloaded.
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)

	// List returns a paginated, filtered list of medications.
	List(ctx context.Context, q *ListMedicationsQuery) (*PagedMedications, error)

	// Deactivate soft-disables a medication and its schedules. Dose logs
	// referencing them are never deleted.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ActiveEntries returns the schedule catalog: every active schedule
	// joined with its active medication and active resident. Treatment
	// window fields are passed through unfiltered.
	ActiveEntries(ctx context.Context) ([]ScheduleEntry, error)
}

type DoseLogRepository interface {
	// ListByDateRange returns all dose logs whose scheduled date falls in
	// [from, to] inclusive.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]DoseLog, error)

	// GetByKey retrieves the single log for a dose key. Returns
	// ErrDoseLogNotFound when the dose is still pending.
	GetByKey(ctx context.Context, key DoseKey) (*DoseLog, error)

	Create(ctx context.Context, l *DoseLog) error
	Update(ctx context.Context, l *DoseLog) error
	Delete(ctx context.Context, id uuid.UUID) error
}
