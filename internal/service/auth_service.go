package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ListByRole returns users with their appointment counts; used by the
	// admin directory listings.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)

	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	// adminEmails are promoted to the admin role on login.
	adminEmails map[string]struct{}
	log         *zap.Logger
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, auditSvc *AuditService, adminEmails []string, log *zap.Logger) *AuthService {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allow[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AuthService{
		userRepo:    userRepo,
		jwtManager:  jwtManager,
		auditSvc:    auditSvc,
		adminEmails: allow,
		log:         log,
	}
}

func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand) (*domain.User, *domain.TokenPair, error) {
	if err := validateRegisterCommand(cmd); err != nil {
		return nil, nil, err
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, domain.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Name:         strings.TrimSpace(cmd.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         cmd.Role,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	return u, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.User, *domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", ip),
		)
		return nil, nil, ErrInvalidCredentials
	}

	// Allowlisted operators are promoted on login rather than at registration,
	// so the allowlist can change without touching stored records.
	if _, ok := s.adminEmails[user.Email]; ok && user.Role != domain.RoleAdmin {
		if err := s.userRepo.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			s.log.Error("failed to promote admin user", zap.Error(err))
		} else {
			user.Role = domain.RoleAdmin
		}
	}

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       user.ID,
		UserRole:     user.Role,
		Action:       domain.ActionLogin,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		IPAddress:    ip,
	})

	return user, pair, nil
}

func validateRegisterCommand(cmd *RegisterCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		errs = append(errs, "email is required")
	}
	if len(cmd.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if !cmd.Role.IsValid() || cmd.Role == domain.RoleAdmin {
		errs = append(errs, "role must be DOCTOR or PATIENT")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
