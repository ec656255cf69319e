package medication

import (
	"time"

	"github.com/google/uuid"
)

// DoseKey is the natural identity of a scheduled dose. A dose has no
// stored identity until a log row exists, so the key substitutes for a
// generated id; it is a value type with structural equality and is used
// directly as a map key during reconciliation.
type DoseKey struct {
	ScheduleID uuid.UUID
	Date       string // "2006-01-02"
	Time       string // "15:04"
}

func NewDoseKey(scheduleID uuid.UUID, day time.Time, timeOfDay string) DoseKey {
	return DoseKey{
		ScheduleID: scheduleID,
		Date:       DateOf(day).Format(time.DateOnly),
		Time:       timeOfDay,
	}
}

// DoseLog is the only persisted fact about a scheduled dose's outcome.
// At most one row exists per DoseKey; transitions update the existing
// row in place rather than inserting a duplicate.
type DoseLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ScheduleID uuid.UUID `gorm:"column:schedule_id;type:uuid;not null;index:idx_dose_logs_key,unique,priority:1"`
	ResidentID uuid.UUID `gorm:"column:resident_id;type:uuid;not null;index"`

	ScheduledDate time.Time `gorm:"column:scheduled_date;type:date;not null;index:idx_dose_logs_key,unique,priority:2;index"`
	ScheduledTime string    `gorm:"column:scheduled_time;type:varchar(5);not null;index:idx_dose_logs_key,unique,priority:3"`

	Administered   bool       `gorm:"column:administered;not null"`
	AdministeredAt *time.Time `gorm:"column:administered_at"`

	ActorID uuid.UUID `gorm:"column:actor_id;type:uuid;not null;index"`

	Notes string `gorm:"column:notes;type:text"`
	// NotGivenReason is only set while Administered is false; marking the
	// dose done clears it.
	NotGivenReason string `gorm:"column:not_given_reason;type:text"`
}

func (DoseLog) TableName() string {
	return "care.dose_logs"
}

func (l *DoseLog) Key() DoseKey {
	return NewDoseKey(l.ScheduleID, l.ScheduledDate, l.ScheduledTime)
}

// MarkDoneCommand records a dose as administered.
type MarkDoneCommand struct {
	Key        DoseKey
	ResidentID uuid.UUID
	ActorID    uuid.UUID
	Notes      string
}

// MarkNotDoneCommand records a dose as deliberately not administered.
// Reason is mandatory.
type MarkNotDoneCommand struct {
	Key        DoseKey
	ResidentID uuid.UUID
	ActorID    uuid.UUID
	Reason     string
	Notes      string
}

// UndoCommand removes the log row, returning the dose to pending.
type UndoCommand struct {
	Key     DoseKey
	ActorID uuid.UUID
}
