package service

import (
	"context"
	"testing"
	"time"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/docease/docease-api/internal/timeutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type appointmentFixture struct {
	svc       *AppointmentService
	repo      *fakeAppointmentRepo
	users     *fakeUserRepo
	schedules *ScheduleService
	doctorID  uuid.UUID
	patientID uuid.UUID
}

// newAppointmentFixture wires the service against in-memory repos with one
// doctor available Mondays 10:00 to 14:00 and one registered patient.
func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	ctx := context.Background()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	users := newFakeUserRepo()
	doctor := &domain.User{Name: "Dr. Mehta", Email: "mehta@docease.io", Role: domain.RoleDoctor}
	patient := &domain.User{Name: "Asha", Email: "asha@example.com", Role: domain.RolePatient}
	require.NoError(t, users.Create(ctx, doctor))
	require.NoError(t, users.Create(ctx, patient))

	schedules := newScheduleService(newFakeScheduleRepo())
	_, err = schedules.AddWindow(ctx, &schedule.CreateWindowCommand{
		DoctorID: doctor.ID, Day: schedule.Monday, StartTime: hm(10), EndTime: hm(14),
	}, doctor.ID, "")
	require.NoError(t, err)

	repo := newFakeAppointmentRepo()
	svc := NewAppointmentService(
		repo, users, schedules, timeutil.NewNormalizer(loc),
		testAuditService(), testCollector(), zap.NewNop(),
	)

	return &appointmentFixture{
		svc:       svc,
		repo:      repo,
		users:     users,
		schedules: schedules,
		doctorID:  doctor.ID,
		patientID: patient.ID,
	}
}

func (f *appointmentFixture) book(t *testing.T, datetime string) *appointment.Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), &appointment.BookCommand{
		PatientID: f.patientID,
		DoctorID:  f.doctorID,
		Datetime:  datetime,
	}, "")
	require.NoError(t, err)
	return a
}

// 2026-03-02 is a Monday inside the fixture doctor's window.
const mondaySlot = "2026-03-02T11:00"

func TestBook(t *testing.T) {
	ctx := context.Background()

	t.Run("valid slot books as upcoming", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)
		assert.Equal(t, appointment.StatusUpcoming, a.Status)
		assert.Equal(t, 11, a.ScheduledAt.Hour())
		assert.Equal(t, f.doctorID, a.DoctorID)
	})

	t.Run("rejects slot outside the doctor's window", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: f.doctorID, Datetime: "2026-03-02T15:00",
		}, "")
		assert.ErrorIs(t, err, schedule.ErrOutsideDoctorWindow)
	})

	t.Run("rejects day the doctor does not work", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: f.doctorID, Datetime: "2026-03-03T11:00",
		}, "")
		assert.ErrorIs(t, err, schedule.ErrDoctorUnavailableThisDay)
	})

	t.Run("rejects slot outside clinic hours", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: f.doctorID, Datetime: "2026-03-02T08:00",
		}, "")
		assert.ErrorIs(t, err, schedule.ErrOutsideBusinessHours)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: uuid.New(), Datetime: mondaySlot,
		}, "")
		assert.ErrorIs(t, err, appointment.ErrDoctorNotFound)
	})

	t.Run("booking with a patient as the doctor", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: f.patientID, Datetime: mondaySlot,
		}, "")
		assert.ErrorIs(t, err, appointment.ErrDoctorNotFound)
	})

	t.Run("malformed datetime", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: f.doctorID, Datetime: "soonish",
		}, "")
		assert.ErrorIs(t, err, schedule.ErrInvalidTimeFormat)
	})

	t.Run("unknown appointment type", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.svc.Book(ctx, &appointment.BookCommand{
			PatientID: f.patientID, DoctorID: f.doctorID, Datetime: mondaySlot,
			Type: "surgery",
		}, "")
		assert.ErrorIs(t, err, appointment.ErrInvalidAppointmentType)
	})

	t.Run("same slot can be booked twice", func(t *testing.T) {
		// No uniqueness on (doctor, instant): both bookings land.
		f := newAppointmentFixture(t)
		first := f.book(t, mondaySlot)
		second := f.book(t, mondaySlot)
		assert.NotEqual(t, first.ID, second.ID)
		assert.True(t, first.ScheduledAt.Equal(second.ScheduledAt))

		all, err := f.svc.ListForDoctor(ctx, f.doctorID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestCancelAuthorization(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   func(f *appointmentFixture) uuid.UUID
		role    domain.Role
		wantErr error
	}{
		{name: "owning patient", actor: func(f *appointmentFixture) uuid.UUID { return f.patientID }, role: domain.RolePatient},
		{name: "owning doctor", actor: func(f *appointmentFixture) uuid.UUID { return f.doctorID }, role: domain.RoleDoctor},
		{name: "any admin", actor: func(f *appointmentFixture) uuid.UUID { return uuid.New() }, role: domain.RoleAdmin},
		{name: "other patient", actor: func(f *appointmentFixture) uuid.UUID { return uuid.New() }, role: domain.RolePatient, wantErr: ErrForbidden},
		{name: "other doctor", actor: func(f *appointmentFixture) uuid.UUID { return uuid.New() }, role: domain.RoleDoctor, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			a := f.book(t, mondaySlot)

			got, err := f.svc.Cancel(ctx, a.ID, tt.actor(f), tt.role, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, appointment.StatusCancelled, got.Status)
		})
	}
}

func TestCancelTerminal(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	a := f.book(t, mondaySlot)

	_, err := f.svc.Cancel(ctx, a.ID, f.patientID, domain.RolePatient, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, a.ID, f.patientID, domain.RolePatient, "")
	assert.ErrorIs(t, err, appointment.ErrAlreadyTerminal)

	_, err = f.svc.Cancel(ctx, uuid.New(), f.patientID, domain.RolePatient, "")
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the instant and persists", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		got, err := f.svc.Reschedule(ctx, a.ID, &appointment.RescheduleCommand{
			NewDate: "2026-03-09", NewTime: "12:00",
		}, f.patientID, domain.RolePatient, "")
		require.NoError(t, err)
		assert.Equal(t, 12, got.ScheduledAt.Hour())
		assert.Equal(t, appointment.StatusUpcoming, got.Status)

		stored, err := f.repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, stored.ScheduledAt.Equal(got.ScheduledAt))
	})

	t.Run("approved resets to upcoming", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)
		_, err := f.svc.Approve(ctx, a.ID, f.doctorID, "")
		require.NoError(t, err)

		got, err := f.svc.Reschedule(ctx, a.ID, &appointment.RescheduleCommand{
			NewDate: "2026-03-09", NewTime: "11:00",
		}, f.doctorID, domain.RoleDoctor, "")
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusUpcoming, got.Status)
	})

	t.Run("new slot is validated against the owning doctor", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		_, err := f.svc.Reschedule(ctx, a.ID, &appointment.RescheduleCommand{
			NewDate: "2026-03-03", NewTime: "11:00",
		}, f.patientID, domain.RolePatient, "")
		assert.ErrorIs(t, err, schedule.ErrDoctorUnavailableThisDay)

		// The stored appointment is untouched after a failed reschedule.
		stored, err := f.repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, stored.ScheduledAt.Equal(a.ScheduledAt))
	})

	t.Run("terminal appointments cannot move", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)
		_, err := f.svc.Cancel(ctx, a.ID, f.patientID, domain.RolePatient, "")
		require.NoError(t, err)

		_, err = f.svc.Reschedule(ctx, a.ID, &appointment.RescheduleCommand{
			NewDate: "2026-03-09", NewTime: "11:00",
		}, f.patientID, domain.RolePatient, "")
		assert.ErrorIs(t, err, appointment.ErrAlreadyTerminal)
	})

	t.Run("stranger cannot reschedule", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		_, err := f.svc.Reschedule(ctx, a.ID, &appointment.RescheduleCommand{
			NewDate: "2026-03-09", NewTime: "11:00",
		}, uuid.New(), domain.RolePatient, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("owning doctor approves", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		got, err := f.svc.Approve(ctx, a.ID, f.doctorID, "")
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusApproved, got.Status)
	})

	t.Run("other doctor is forbidden", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		_, err := f.svc.Approve(ctx, a.ID, uuid.New(), "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("double approve is rejected", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)
		_, err := f.svc.Approve(ctx, a.ID, f.doctorID, "")
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, a.ID, f.doctorID, "")
		assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)
	})

	t.Run("cancelled cannot be approved", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)
		_, err := f.svc.Cancel(ctx, a.ID, f.patientID, domain.RolePatient, "")
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, a.ID, f.doctorID, "")
		assert.ErrorIs(t, err, appointment.ErrAlreadyTerminal)
	})
}

func TestUpdateByDoctor(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches approve", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		got, err := f.svc.UpdateByDoctor(ctx, a.ID, &appointment.DoctorUpdateCommand{
			Status: appointment.StatusApproved,
		}, f.doctorID, "")
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusApproved, got.Status)
	})

	t.Run("dispatches cancel", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		got, err := f.svc.UpdateByDoctor(ctx, a.ID, &appointment.DoctorUpdateCommand{
			Status: appointment.StatusCancelled,
		}, f.doctorID, "")
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusCancelled, got.Status)
	})

	t.Run("upcoming requires a new date and time", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		_, err := f.svc.UpdateByDoctor(ctx, a.ID, &appointment.DoctorUpdateCommand{
			Status: appointment.StatusUpcoming,
		}, f.doctorID, "")
		var validErr *ValidationError
		assert.ErrorAs(t, err, &validErr)
	})

	t.Run("upcoming with a slot reschedules", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		got, err := f.svc.UpdateByDoctor(ctx, a.ID, &appointment.DoctorUpdateCommand{
			Status: appointment.StatusUpcoming, NewDate: "2026-03-09", NewTime: "13:00",
		}, f.doctorID, "")
		require.NoError(t, err)
		assert.Equal(t, 13, got.ScheduledAt.Hour())
	})

	t.Run("completed is not a doctor-settable status", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		_, err := f.svc.UpdateByDoctor(ctx, a.ID, &appointment.DoctorUpdateCommand{
			Status: appointment.StatusCompleted,
		}, f.doctorID, "")
		assert.ErrorIs(t, err, appointment.ErrInvalidStatus)
	})

	t.Run("garbage status", func(t *testing.T) {
		f := newAppointmentFixture(t)
		a := f.book(t, mondaySlot)

		_, err := f.svc.UpdateByDoctor(ctx, a.ID, &appointment.DoctorUpdateCommand{
			Status: "confirmed",
		}, f.doctorID, "")
		assert.ErrorIs(t, err, appointment.ErrInvalidStatus)
	})
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	f.book(t, mondaySlot)
	f.book(t, "2026-03-02T12:00")

	mine, err := f.svc.ListForPatient(ctx, f.patientID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := f.svc.ListForPatient(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, theirs)

	docs, err := f.svc.ListForDoctor(ctx, f.doctorID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	status := appointment.StatusUpcoming
	filtered, err := f.svc.ListAll(ctx, &appointment.ListQuery{Status: &status})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}
