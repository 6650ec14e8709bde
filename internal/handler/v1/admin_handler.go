package v1

import (
	"net/http"

	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminSvc       *service.AdminService
	appointmentSvc *service.AppointmentService
}

func NewAdminHandler(adminSvc *service.AdminService, appointmentSvc *service.AppointmentService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, appointmentSvc: appointmentSvc}
}

func (h *AdminHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.adminSvc.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors, "")
}

func (h *AdminHandler) ListPatients(c *gin.Context) {
	patients, err := h.adminSvc.ListPatients(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients, "")
}

// ListAppointments returns every appointment, optionally filtered by
// doctorId, patientId, and status query parameters.
func (h *AdminHandler) ListAppointments(c *gin.Context) {
	q, ok := listQueryFromContext(c)
	if !ok {
		return
	}

	appointments, err := h.appointmentSvc.ListAll(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appointments, "")
}

func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.adminSvc.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats, "")
}

// CancelAppointment is the operator override: any appointment, any owner.
func (h *AdminHandler) CancelAppointment(c *gin.Context) {
	claims := callerClaims(c)

	id, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}

	a, err := h.appointmentSvc.Cancel(c.Request.Context(), id, claims.UserID, domain.RoleAdmin, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a, "Appointment cancelled.")
}

func (h *AdminHandler) RescheduleAppointment(c *gin.Context) {
	claims := callerClaims(c)

	id, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}

	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointmentSvc.Reschedule(c.Request.Context(), id, &appointment.RescheduleCommand{
		NewDate: req.NewDate,
		NewTime: req.NewTime,
	}, claims.UserID, domain.RoleAdmin, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a, "Appointment rescheduled")
}

// DeleteUser removes a user together with their appointments and, for
// doctors, their availability windows.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	claims := callerClaims(c)

	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	if userID == claims.UserID {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "admins cannot delete their own account"})
		return
	}

	if err := h.adminSvc.RemoveUser(c.Request.Context(), userID, claims.UserID, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": userID}, "User deleted successfully.")
}
