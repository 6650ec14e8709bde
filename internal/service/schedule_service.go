package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/docease/docease-api/internal/timeutil"
	"github.com/docease/docease-api/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleService owns a doctor's recurring availability windows and decides
// whether a candidate instant is bookable.
type ScheduleService struct {
	repo     schedule.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewScheduleService(repo schedule.Repository, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *ScheduleService {
	return &ScheduleService{repo: repo, auditSvc: auditSvc, metrics: m, log: log}
}

// AddWindow creates a recurring window after enforcing the creation-time
// invariants. One window per (doctor, day): duplicates are rejected, not
// merged.
func (s *ScheduleService) AddWindow(ctx context.Context, cmd *schedule.CreateWindowCommand, callerID uuid.UUID, ip string) (*schedule.AvailabilityWindow, error) {
	w := &schedule.AvailabilityWindow{
		DoctorID:  cmd.DoctorID,
		Day:       cmd.Day,
		StartTime: cmd.StartTime,
		EndTime:   cmd.EndTime,
	}

	if err := w.ValidateBounds(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByDoctorAndDay(ctx, cmd.DoctorID, cmd.Day); err == nil {
		return nil, schedule.ErrDuplicateWindow
	} else if !errors.Is(err, schedule.ErrWindowNotFound) {
		return nil, fmt.Errorf("checking existing window: %w", err)
	}

	if err := s.repo.Create(ctx, w); err != nil {
		s.log.Error("failed to create availability window", zap.Error(err))
		return nil, fmt.Errorf("creating availability window: %w", err)
	}
	s.metrics.WindowsConfigured.Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionCreate,
		ResourceType: "availability_window",
		ResourceID:   w.ID.String(),
		IPAddress:    ip,
	})

	return w, nil
}

// ListWindows returns the doctor's windows ordered by day name. The result is
// a snapshot; callers re-fetch after mutations.
func (s *ScheduleService) ListWindows(ctx context.Context, doctorID uuid.UUID) ([]*schedule.AvailabilityWindow, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// UpdateWindow rewrites a window in place. It checks existence and ownership
// only: the hour-range, alignment and duplicate-day rules applied at creation
// are not re-enforced here.
func (s *ScheduleService) UpdateWindow(ctx context.Context, id uuid.UUID, cmd *schedule.UpdateWindowCommand, callerID uuid.UUID, ip string) (*schedule.AvailabilityWindow, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.DoctorID != callerID {
		return nil, ErrForbidden
	}

	updated, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, fmt.Errorf("updating availability window: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionUpdate,
		ResourceType: "availability_window",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return updated, nil
}

func (s *ScheduleService) RemoveWindow(ctx context.Context, id uuid.UUID, callerID uuid.UUID, ip string) (*schedule.AvailabilityWindow, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.DoctorID != callerID {
		return nil, ErrForbidden
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deleting availability window: %w", err)
	}
	s.metrics.WindowsConfigured.Dec()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionDelete,
		ResourceType: "availability_window",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return deleted, nil
}

// Validate decides whether the doctor can take an appointment at the given
// instant. Two tiers: the clinic-wide business-hour ceiling first, then the
// doctor's own window for that weekday. Validation is read-only and
// idempotent.
func (s *ScheduleService) Validate(ctx context.Context, doctorID uuid.UUID, instant timeutil.Instant) error {
	if !schedule.WithinBusinessHours(instant.Hour, instant.Minute) {
		s.metrics.BookingRejections.WithLabelValues("outside_business_hours").Inc()
		return schedule.ErrOutsideBusinessHours
	}

	w, err := s.repo.FindByDoctorAndDay(ctx, doctorID, instant.Weekday)
	if err != nil {
		if errors.Is(err, schedule.ErrWindowNotFound) {
			s.metrics.BookingRejections.WithLabelValues("unavailable_day").Inc()
			return schedule.ErrDoctorUnavailableThisDay
		}
		return fmt.Errorf("looking up availability: %w", err)
	}

	if !w.Covers(instant.Hour, instant.Minute) {
		s.metrics.BookingRejections.WithLabelValues("outside_window").Inc()
		return fmt.Errorf("%w: doctor is only available between %s and %s",
			schedule.ErrOutsideDoctorWindow, w.StartTime, w.EndTime)
	}

	return nil
}
