package service

import (
	"context"
	"fmt"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService serves the operator views: user directories, platform-wide
// appointment listings, dashboard statistics, and cascading user removal.
type AdminService struct {
	userRepo        UserRepository
	appointmentRepo appointment.Repository
	scheduleRepo    schedule.Repository
	auditSvc        *AuditService
	log             *zap.Logger
}

func NewAdminService(
	userRepo UserRepository,
	appointmentRepo appointment.Repository,
	scheduleRepo schedule.Repository,
	auditSvc *AuditService,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		auditSvc:        auditSvc,
		log:             log,
	}
}

// DirectoryEntry is one row of the admin user listing.
type DirectoryEntry struct {
	User             *domain.User `json:"user"`
	AppointmentCount int64        `json:"appointmentCount"`
}

func (s *AdminService) ListDoctors(ctx context.Context) ([]*DirectoryEntry, error) {
	return s.listByRole(ctx, domain.RoleDoctor)
}

func (s *AdminService) ListPatients(ctx context.Context) ([]*DirectoryEntry, error) {
	return s.listByRole(ctx, domain.RolePatient)
}

func (s *AdminService) listByRole(ctx context.Context, role domain.Role) ([]*DirectoryEntry, error) {
	users, err := s.userRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("listing %s users: %w", role, err)
	}

	entries := make([]*DirectoryEntry, 0, len(users))
	for _, u := range users {
		count, err := s.appointmentRepo.CountByUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("counting appointments for %s: %w", u.ID, err)
		}
		u.PasswordHash = ""
		entries = append(entries, &DirectoryEntry{User: u, AppointmentCount: count})
	}
	return entries, nil
}

type DashboardStats struct {
	TotalDoctors      int64                        `json:"totalDoctors"`
	TotalPatients     int64                        `json:"totalPatients"`
	TotalAppointments int64                        `json:"totalAppointments"`
	ByStatus          map[appointment.Status]int64 `json:"appointmentsByStatus"`
}

func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	doctors, err := s.userRepo.CountByRole(ctx, domain.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}
	patients, err := s.userRepo.CountByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	byStatus, err := s.appointmentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &DashboardStats{
		TotalDoctors:      doctors,
		TotalPatients:     patients,
		TotalAppointments: total,
		ByStatus:          byStatus,
	}, nil
}

// RemoveUser deletes a user together with their appointments and, for
// doctors, their availability windows. This is the only path that hard-deletes
// appointments.
func (s *AdminService) RemoveUser(ctx context.Context, userID uuid.UUID, adminID uuid.UUID, ip string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.appointmentRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting user appointments: %w", err)
	}
	if user.IsDoctor() {
		if err := s.scheduleRepo.DeleteByDoctor(ctx, userID); err != nil {
			return fmt.Errorf("deleting doctor availability: %w", err)
		}
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       adminID,
		UserRole:     domain.RoleAdmin,
		Action:       domain.ActionDelete,
		ResourceType: "user",
		ResourceID:   userID.String(),
		IPAddress:    ip,
	})

	s.log.Info("user removed with related records",
		zap.String("user_id", userID.String()),
		zap.String("role", string(user.Role)),
	)

	return nil
}
