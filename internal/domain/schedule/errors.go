package schedule

import "errors"

var (
	ErrWindowNotFound       = errors.New("availability window not found")
	ErrDuplicateWindow      = errors.New("schedule for this day already exists")
	ErrInvalidWindow        = errors.New("invalid availability window")
	ErrWindowOutOfHours     = errors.New("availability must be between 09:00 and 17:00 with start before end")
	ErrWindowNotHourAligned = errors.New("availability times must be on the hour (e.g. 09:00, 10:00)")

	ErrInvalidTimeFormat = errors.New("invalid date or time format")

	// Slot validation taxonomy
	ErrOutsideBusinessHours     = errors.New("appointments allowed only between 09:00 AM and 5:00 PM")
	ErrDoctorUnavailableThisDay = errors.New("doctor is not available on this day")
	ErrOutsideDoctorWindow      = errors.New("requested time is outside the doctor's available hours")
)
