package resident

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new resident. Returns ErrResidentAlreadyExists on duplicate NationalID.
	Create(ctx context.Context, r *Resident) error

	// GetByID retrieves a resident by primary key. Returns ErrResidentNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Resident, error)

	// Update applies partial updates to an existing resident record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateResidentCommand) (*Resident, error)

	// SoftDelete marks the resident as deleted; history stays queryable.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// List returns a paginated, filtered list of residents.
	List(ctx context.Context, q *ListResidentsQuery) (*PagedResidents, error)

	// ExistsByNationalID checks for uniqueness without fetching the full record.
	ExistsByNationalID(ctx context.Context, nationalID string, excludeID *uuid.UUID) (bool, error)
}
