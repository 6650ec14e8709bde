package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrDoctorNotFound          = errors.New("doctor not found or invalid role")
	ErrAlreadyTerminal         = errors.New("cannot modify a cancelled or completed appointment")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidAppointmentType  = errors.New("invalid appointment type")
)
