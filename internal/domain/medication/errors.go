package medication

import "errors"

var (
	ErrMedicationNotFound    = errors.New("medication not found")
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrDoseLogNotFound       = errors.New("dose log not found")
	ErrNothingToUndo         = errors.New("no dose log to undo")
	ErrInvalidTimeOfDay      = errors.New("time of day must be in HH:MM 24h format")
	ErrInvalidFrequency      = errors.New("invalid schedule frequency")
	ErrWeeklyWithoutWeekdays = errors.New("weekly schedule requires at least one weekday")
	ErrNoSchedules           = errors.New("medication requires at least one schedule")
)
