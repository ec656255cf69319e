package appointment

import (
	"time"

	"github.com/google/uuid"
)

// VisitKind distinguishes the initial visit from the follow-up return
// that shares the same appointment record.
type VisitKind string

const (
	KindInitial  VisitKind = "initial"
	KindFollowUp VisitKind = "follow_up"
)

func (k VisitKind) IsValid() bool {
	return k == KindInitial || k == KindFollowUp
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	ResidentID uuid.UUID `gorm:"column:resident_id;type:uuid;not null;index"`

	Specialty string `gorm:"column:specialty;type:varchar(100);not null;index"` // e.g. "dentist", "cardiology"
	Provider  string `gorm:"column:provider;type:varchar(255)"`
	Location  string `gorm:"column:location;type:varchar(255)"`

	ScheduledDate time.Time `gorm:"column:scheduled_date;type:date;not null;index"`
	ScheduledTime string    `gorm:"column:scheduled_time;type:varchar(5)"` // "HH:MM", optional

	// ReturnDate, when set, creates a second trackable visit of kind
	// follow_up on that date.
	ReturnDate *time.Time `gorm:"column:return_date;type:date;index"`

	Notes string `gorm:"column:notes;type:text"`

	Active bool `gorm:"column:active;default:true;index"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Appointment) TableName() string {
	return "care.appointments"
}

// VisitKey is the natural identity of one trackable visit. Structural
// equality makes it usable directly as a map key.
type VisitKey struct {
	AppointmentID uuid.UUID
	Date          string // "2006-01-02"
	Kind          VisitKind
}

func NewVisitKey(appointmentID uuid.UUID, day time.Time, kind VisitKind) VisitKey {
	return VisitKey{
		AppointmentID: appointmentID,
		Date:          dateOf(day).Format(time.DateOnly),
		Kind:          kind,
	}
}

// AttendanceLog records whether a visit happened. At most one row per
// VisitKey; transitions update in place.
type AttendanceLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index:idx_attendance_key,unique,priority:1"`
	ResidentID    uuid.UUID `gorm:"column:resident_id;type:uuid;not null;index"`

	ScheduledDate time.Time `gorm:"column:scheduled_date;type:date;not null;index:idx_attendance_key,unique,priority:2;index"`
	Kind          VisitKind `gorm:"column:kind;type:varchar(20);not null;index:idx_attendance_key,unique,priority:3"`

	Attended   bool       `gorm:"column:attended;not null"`
	AttendedAt *time.Time `gorm:"column:attended_at"`

	ActorID uuid.UUID `gorm:"column:actor_id;type:uuid;not null;index"`

	Notes        string `gorm:"column:notes;type:text"`
	MissedReason string `gorm:"column:missed_reason;type:text"`
}

func (AttendanceLog) TableName() string {
	return "care.appointment_attendance_logs"
}

func (l *AttendanceLog) Key() VisitKey {
	return NewVisitKey(l.AppointmentID, l.ScheduledDate, l.Kind)
}

// VisitEntry is one row of the tracking catalog: an appointment joined
// with its resident display name.
type VisitEntry struct {
	Appointment  Appointment
	ResidentName string
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateAppointmentCommand struct {
	ResidentID    uuid.UUID
	Specialty     string
	Provider      string
	Location      string
	ScheduledDate time.Time
	ScheduledTime string
	ReturnDate    *time.Time
	Notes         string
	CreatedBy     uuid.UUID
}

type MarkAttendanceCommand struct {
	Key     VisitKey
	ActorID uuid.UUID
	Notes   string
	// Reason is required when marking a visit as missed.
	Reason string
}

type ListAppointmentsQuery struct {
	ResidentID *uuid.UUID
	Specialty  *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
