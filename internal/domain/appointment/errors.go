package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAttendanceNotFound  = errors.New("attendance log not found")
	ErrNothingToUndo       = errors.New("no attendance log to undo")
	ErrScheduledInPast     = errors.New("cannot schedule appointment in the past")
	ErrReturnBeforeVisit   = errors.New("return date cannot precede the appointment date")
	ErrInvalidVisitKind    = errors.New("invalid visit kind")
)
