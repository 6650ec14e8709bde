package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus persists a status change.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// UpdateSchedule persists a reschedule: new instant plus status.
	UpdateSchedule(ctx context.Context, a *Appointment) error

	// ListByPatient and ListByDoctor return appointments ordered by date.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	// List serves the admin listing with optional filters.
	List(ctx context.Context, q *ListQuery) ([]*Appointment, error)

	// CountByStatus feeds the admin dashboard.
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// CountByUser counts appointments referencing the user as doctor or
	// patient. Used by the admin directory listings.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkCompletedBefore flips approved appointments scheduled before the
	// cutoff to completed. Returns the number of rows changed.
	MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteByUser removes every appointment referencing the user as doctor
	// or patient. Used by the admin user-removal cascade.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
