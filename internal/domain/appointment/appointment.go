package appointment

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentType string

const (
	TypeConsultation   AppointmentType = "consultation"
	TypeFollowUp       AppointmentType = "follow_up"
	TypeRoutineCheckup AppointmentType = "routine_checkup"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeRoutineCheckup:
		return true
	}
	return false
}

// State transitions:
//
//	upcoming → approved (doctor confirms)
//	upcoming/approved → cancelled (terminal)
//	approved → completed (housekeeping only, terminal)
//
// A reschedule is not a plain status transition: it rewrites the date and
// forces the status back to upcoming, re-opening the approval step even when
// the doctor reschedules an approved appointment.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusApproved  Status = "approved"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusApproved, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

var allowedTransitions = map[Status][]Status{
	StatusUpcoming:  {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Identity references into the user directory; immutable after creation.
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index:idx_appointments_patient_date" json:"patientId"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index:idx_appointments_doctor_date" json:"doctorId"`

	// ScheduledAt is the canonical zoned instant of the consultation.
	// No uniqueness is enforced on (doctor_id, scheduled_at): two concurrent
	// bookings for the same slot can both land.
	ScheduledAt time.Time `gorm:"column:scheduled_at;not null;index:idx_appointments_doctor_date;index:idx_appointments_patient_date" json:"date"`

	Status Status          `gorm:"column:status;type:varchar(20);not null;default:'upcoming';index" json:"status"`
	Type   AppointmentType `gorm:"column:type;type:varchar(30)" json:"type,omitempty"`
	Notes  string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// Cancel moves the appointment to its cancelled terminal state.
func (a *Appointment) Cancel() error {
	if a.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	a.Status = StatusCancelled
	return nil
}

// Approve confirms an upcoming appointment. Only the upcoming state is
// approvable; an already-approved or terminal appointment is rejected.
func (a *Appointment) Approve() error {
	if a.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	if !a.Status.CanTransitionTo(StatusApproved) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusApproved
	return nil
}

// Reschedule moves the appointment to a new instant and resets it to
// upcoming, regardless of who initiated it.
func (a *Appointment) Reschedule(newAt time.Time) error {
	if a.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	a.ScheduledAt = newAt
	a.Status = StatusUpcoming
	return nil
}

type BookCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Datetime  string // raw combined date-time, normalized by the service
	Type      AppointmentType
	Notes     string
}

type RescheduleCommand struct {
	NewDate string // "2006-01-02"
	NewTime string // "HH:MM"
}

// DoctorUpdateCommand carries the doctor's status-update request: approve,
// cancel, or reschedule (status "upcoming" with a new date and time).
type DoctorUpdateCommand struct {
	Status  Status
	NewDate string
	NewTime string
}

// ListQuery filters the admin appointment listing.
type ListQuery struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *Status
}
