package service

import (
	"context"
	"fmt"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/timeutil"
	"github.com/docease/docease-api/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentService owns the appointment state machine. Every create and
// reschedule runs through the slot validator; every mutation runs through a
// single authorization predicate.
type AppointmentService struct {
	repo       appointment.Repository
	userRepo   UserRepository
	schedules  *ScheduleService
	normalizer *timeutil.Normalizer
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	userRepo UserRepository,
	schedules *ScheduleService,
	normalizer *timeutil.Normalizer,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		userRepo:   userRepo,
		schedules:  schedules,
		normalizer: normalizer,
		auditSvc:   auditSvc,
		metrics:    m,
		log:        log,
	}
}

// authorizeActor is the one ownership check shared by every mutation entry
// point: admins may touch any appointment, doctors and patients only their
// own.
func authorizeActor(actorID uuid.UUID, role domain.Role, a *appointment.Appointment) error {
	switch role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleDoctor:
		if a.DoctorID == actorID {
			return nil
		}
	case domain.RolePatient:
		if a.PatientID == actorID {
			return nil
		}
	}
	return ErrForbidden
}

// Book creates an upcoming appointment for the patient after normalizing the
// requested instant and validating it against the doctor's availability.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.BookCommand, ip string) (*appointment.Appointment, error) {
	if cmd.Type != "" && !cmd.Type.IsValid() {
		return nil, appointment.ErrInvalidAppointmentType
	}

	instant, err := s.normalizer.NormalizeDateTime(cmd.Datetime)
	if err != nil {
		return nil, err
	}

	doctor, err := s.userRepo.GetByID(ctx, cmd.DoctorID)
	if err != nil || !doctor.IsDoctor() {
		return nil, appointment.ErrDoctorNotFound
	}

	if err := s.schedules.Validate(ctx, cmd.DoctorID, instant); err != nil {
		return nil, err
	}

	a := &appointment.Appointment{
		PatientID:   cmd.PatientID,
		DoctorID:    cmd.DoctorID,
		ScheduledAt: instant.At,
		Status:      appointment.StatusUpcoming,
		Type:        cmd.Type,
		Notes:       cmd.Notes,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues("booked").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.PatientID,
		UserRole:     domain.RolePatient,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID.String()),
		zap.String("doctor_id", cmd.DoctorID.String()),
		zap.Time("scheduled_at", a.ScheduledAt),
	)

	return a, nil
}

// Cancel moves an appointment to its cancelled terminal state. Permitted for
// the owning patient, the owning doctor, or an admin.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID, role domain.Role, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeActor(actorID, role, a); err != nil {
		return nil, err
	}

	if err := a.Cancel(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues("cancelled").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actorID,
		UserRole:     role,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      `{"status":"cancelled"}`,
	})

	return a, nil
}

// Reschedule moves an appointment to a new instant after re-validating it
// against the owning doctor's availability. The status always resets to
// upcoming, so a doctor rescheduling an approved appointment re-opens the
// approval step.
func (s *AppointmentService) Reschedule(ctx context.Context, id uuid.UUID, cmd *appointment.RescheduleCommand, actorID uuid.UUID, role domain.Role, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeActor(actorID, role, a); err != nil {
		return nil, err
	}

	if a.Status.IsTerminal() {
		return nil, appointment.ErrAlreadyTerminal
	}

	instant, err := s.normalizer.NormalizeDateAndTime(cmd.NewDate, cmd.NewTime)
	if err != nil {
		return nil, err
	}

	if err := s.schedules.Validate(ctx, a.DoctorID, instant); err != nil {
		return nil, err
	}

	if err := a.Reschedule(instant.At); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSchedule(ctx, a); err != nil {
		return nil, fmt.Errorf("rescheduling appointment: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues("rescheduled").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actorID,
		UserRole:     role,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":"upcoming","scheduled_at":%q}`, instant.At.Format("2006-01-02T15:04")),
	})

	return a, nil
}

// Approve confirms an upcoming appointment. Only the owning doctor may
// approve.
func (s *AppointmentService) Approve(ctx context.Context, id uuid.UUID, doctorID uuid.UUID, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.DoctorID != doctorID {
		return nil, ErrForbidden
	}

	if err := a.Approve(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.metrics.AppointmentTransitions.WithLabelValues("approved").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       doctorID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      `{"status":"approved"}`,
	})

	return a, nil
}

// UpdateByDoctor dispatches the doctor's status-update request: approve,
// cancel, or reschedule (status upcoming plus a new date and time).
func (s *AppointmentService) UpdateByDoctor(ctx context.Context, id uuid.UUID, cmd *appointment.DoctorUpdateCommand, doctorID uuid.UUID, ip string) (*appointment.Appointment, error) {
	switch cmd.Status {
	case appointment.StatusApproved:
		return s.Approve(ctx, id, doctorID, ip)
	case appointment.StatusCancelled:
		return s.Cancel(ctx, id, doctorID, domain.RoleDoctor, ip)
	case appointment.StatusUpcoming:
		if cmd.NewDate == "" || cmd.NewTime == "" {
			return nil, &ValidationError{Fields: []string{"reschedule requires newDate and newTime"}}
		}
		resched := &appointment.RescheduleCommand{NewDate: cmd.NewDate, NewTime: cmd.NewTime}
		return s.Reschedule(ctx, id, resched, doctorID, domain.RoleDoctor, ip)
	default:
		return nil, appointment.ErrInvalidStatus
	}
}

func (s *AppointmentService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// ListAll serves the admin listing with optional doctor/patient filters.
func (s *AppointmentService) ListAll(ctx context.Context, q *appointment.ListQuery) ([]*appointment.Appointment, error) {
	return s.repo.List(ctx, q)
}
