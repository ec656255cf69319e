package resident

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a resident record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	}
	return false
}

type ContactInfo struct {
	Phone   string `gorm:"column:phone;type:varchar(20)"`
	Email   string `gorm:"column:email;type:varchar(255)"`
	Address string `gorm:"column:address;type:text"`
	City    string `gorm:"column:city;type:varchar(100)"`
	State   string `gorm:"column:state;type:varchar(50)"`
	ZipCode string `gorm:"column:zip_code;type:varchar(20)"`
}

// Guardian is the legal guardian or family contact for a resident.
type Guardian struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type Resident struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"` // Soft delete

	FirstName   string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName    string    `gorm:"column:last_name;type:varchar(100);not null"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;not null"`
	NationalID  string    `gorm:"column:national_id;type:varchar(50);uniqueIndex"`

	ContactInfo

	Guardian *Guardian `gorm:"column:guardian;serializer:json"`

	Allergies         []string `gorm:"column:allergies;serializer:json"`
	ChronicConditions []string `gorm:"column:chronic_conditions;serializer:json"`

	AdmittedAt time.Time  `gorm:"column:admitted_at;not null"`
	Status     Status     `gorm:"column:status;type:varchar(20);default:'active';index"`
	RoomNumber string     `gorm:"column:room_number;type:varchar(20)"`
	Notes      string     `gorm:"column:notes;type:text"`

	// Audit: who registered this resident
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Resident) TableName() string {
	return "care.residents"
}

func (r *Resident) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

func (r *Resident) Age() int {
	now := time.Now()
	years := now.Year() - r.DateOfBirth.Year()
	if now.Month() < r.DateOfBirth.Month() ||
		(now.Month() == r.DateOfBirth.Month() && now.Day() < r.DateOfBirth.Day()) {
		years--
	}
	return years
}

func (r *Resident) IsActive() bool {
	return r.Status == StatusActive && r.DeletedAt == nil
}

func (r *Resident) Deactivate() error {
	if r.Status == StatusArchived {
		return ErrResidentArchived
	}
	r.Status = StatusInactive
	return nil
}

type CreateResidentCommand struct {
	FirstName         string
	LastName          string
	DateOfBirth       time.Time
	NationalID        string
	Phone             string
	Email             string
	Address           string
	City              string
	State             string
	ZipCode           string
	Guardian          *Guardian
	Allergies         []string
	ChronicConditions []string
	AdmittedAt        time.Time
	RoomNumber        string
	Notes             string
	CreatedBy         uuid.UUID
}

type UpdateResidentCommand struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	Email      *string
	Address    *string
	City       *string
	State      *string
	ZipCode    *string
	Guardian   *Guardian
	Allergies  *[]string
	RoomNumber *string
	Notes      *string
	UpdatedBy  uuid.UUID
}

// ListResidentsQuery defines filtering and pagination for resident list queries.
type ListResidentsQuery struct {
	Search    string // Full-text search on name
	Status    *Status
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string // "asc" | "desc"
}

type PagedResidents struct {
	Residents  []*Resident
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
