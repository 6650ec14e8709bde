package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new window. Returns ErrDuplicateWindow if the doctor
	// already has one for that day.
	Create(ctx context.Context, w *AvailabilityWindow) error

	// GetByID returns ErrWindowNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error)

	// FindByDoctorAndDay returns the single window for that weekday, or
	// ErrWindowNotFound.
	FindByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day Weekday) (*AvailabilityWindow, error)

	// ListByDoctor returns the doctor's windows ordered by day name.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityWindow, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateWindowCommand) (*AvailabilityWindow, error)
	Delete(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error)

	// DeleteByDoctor removes all of a doctor's windows. Used by the admin
	// user-removal cascade.
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error
}
