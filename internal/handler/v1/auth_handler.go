package v1

import (
	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc *service.AuthService
}

func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type authResponse struct {
	User   *userView         `json:"user"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// userView strips the password hash from user payloads.
type userView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Speciality string `json:"speciality,omitempty"`
}

func viewOf(u *domain.User) *userView {
	return &userView{
		ID:         u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Speciality: u.Speciality,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, tokens, err := h.authSvc.Register(c.Request.Context(), &service.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, authResponse{User: viewOf(user), Tokens: tokens}, "User registered successfully.")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, tokens, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, authResponse{User: viewOf(user), Tokens: tokens}, "")
}
