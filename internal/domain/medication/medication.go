package medication

import (
	"time"

	"github.com/google/uuid"
)

// Frequency is the recurrence rule of a dosing schedule.
type Frequency string

const (
	// FrequencyDaily is due every day inside the medication window.
	FrequencyDaily Frequency = "daily"
	// FrequencyAlternateDays is due on even day offsets from the medication start date.
	FrequencyAlternateDays Frequency = "alternate_days"
	// FrequencyWeekly is due on the weekdays listed in Schedule.Weekdays.
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyAlternateDays, FrequencyWeekly:
		return true
	}
	return false
}

type Medication struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	ResidentID uuid.UUID `gorm:"column:resident_id;type:uuid;not null;index"`

	Name        string `gorm:"column:name;type:varchar(255);not null;index"`
	GenericName string `gorm:"column:generic_name;type:varchar(255)"`
	Dosage      string `gorm:"column:dosage;type:varchar(100)"` // e.g. "500mg"
	Route       string `gorm:"column:route;type:varchar(50)"`   // e.g. "oral"
	Prescriber  string `gorm:"column:prescriber;type:varchar(255)"`

	// Treatment window. A nil EndDate means continuous use; doses are
	// never due outside [StartDate, EndDate] when both are set.
	StartDate *time.Time `gorm:"column:start_date;type:date;index"`
	EndDate   *time.Time `gorm:"column:end_date;type:date;index"`

	Active bool `gorm:"column:active;default:true;index"`

	Schedules []Schedule `gorm:"foreignKey:MedicationID"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Medication) TableName() string {
	return "care.medications"
}

// InWindow reports whether day falls inside the treatment window.
// Comparison is on calendar dates, never instants.
func (m *Medication) InWindow(day time.Time) bool {
	d := DateOf(day)
	if m.StartDate != nil && d.Before(DateOf(*m.StartDate)) {
		return false
	}
	if m.EndDate != nil && d.After(DateOf(*m.EndDate)) {
		return false
	}
	return true
}

// Schedule is a recurring dosing rule attached to one medication.
type Schedule struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	MedicationID uuid.UUID `gorm:"column:medication_id;type:uuid;not null;index"`

	// TimeOfDay is the scheduled clock time in "HH:MM" (24h).
	TimeOfDay string    `gorm:"column:time_of_day;type:varchar(5);not null"`
	Frequency Frequency `gorm:"column:frequency;type:varchar(20);not null"`

	// Weekdays is only meaningful for FrequencyWeekly. Sunday-first
	// numbering, matching time.Weekday.
	Weekdays []time.Weekday `gorm:"column:weekdays;serializer:json"`

	Instructions string     `gorm:"column:instructions;type:text"`
	DepartmentID *uuid.UUID `gorm:"column:department_id;type:uuid;index"`

	Active bool `gorm:"column:active;default:true;index"`
}

func (Schedule) TableName() string {
	return "care.medication_schedules"
}

// Validate enforces schedule invariants at creation/edit time.
func (s *Schedule) Validate() error {
	if _, err := time.Parse("15:04", s.TimeOfDay); err != nil {
		return ErrInvalidTimeOfDay
	}
	if !s.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if s.Frequency == FrequencyWeekly && len(s.Weekdays) == 0 {
		return ErrWeeklyWithoutWeekdays
	}
	return nil
}

// HasWeekday reports whether d is in the schedule's weekday set.
func (s *Schedule) HasWeekday(d time.Weekday) bool {
	for _, wd := range s.Weekdays {
		if wd == d {
			return true
		}
	}
	return false
}

// ScheduleEntry is one row of the active schedule catalog: a schedule
// joined with its owning medication and resident. The treatment window
// is passed through unfiltered; window filtering happens during
// reconciliation.
type ScheduleEntry struct {
	Schedule Schedule

	MedicationID   uuid.UUID
	MedicationName string
	Dosage         string
	Route          string
	StartDate      *time.Time
	EndDate        *time.Time

	ResidentID   uuid.UUID
	ResidentName string
}

// InWindow reports whether day falls inside the entry's treatment window.
func (e *ScheduleEntry) InWindow(day time.Time) bool {
	m := Medication{StartDate: e.StartDate, EndDate: e.EndDate}
	return m.InWindow(day)
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateScheduleCommand struct {
	TimeOfDay    string
	Frequency    Frequency
	Weekdays     []time.Weekday
	Instructions string
	DepartmentID *uuid.UUID
}

type CreateMedicationCommand struct {
	ResidentID  uuid.UUID
	Name        string
	GenericName string
	Dosage      string
	Route       string
	Prescriber  string
	StartDate   *time.Time
	EndDate     *time.Time
	Schedules   []CreateScheduleCommand
	CreatedBy   uuid.UUID
}

type ListMedicationsQuery struct {
	ResidentID *uuid.UUID
	Active     *bool
	Page       int
	PageSize   int
}

type PagedMedications struct {
	Medications []*Medication
	TotalCount  int64
	Page        int
	PageSize    int
	TotalPages  int
}
