package v1

import (
	"net/http"

	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appointmentSvc *service.AppointmentService
}

func NewAppointmentHandler(appointmentSvc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc}
}

type bookRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Datetime string `json:"datetime" binding:"required"`
	Type     string `json:"type"`
	Notes    string `json:"notes"`
}

// Book creates an upcoming appointment for the authenticated patient.
func (h *AppointmentHandler) Book(c *gin.Context) {
	claims := callerClaims(c)

	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		respondServiceError(c, appointment.ErrDoctorNotFound)
		return
	}

	a, err := h.appointmentSvc.Book(c.Request.Context(), &appointment.BookCommand{
		PatientID: claims.UserID,
		DoctorID:  doctorID,
		Datetime:  req.Datetime,
		Type:      appointment.AppointmentType(req.Type),
		Notes:     req.Notes,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, a, "Appointment booked successfully!")
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	claims := callerClaims(c)

	appointments, err := h.appointmentSvc.ListForPatient(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, appointments, "")
}

func (h *AppointmentHandler) ListForDoctor(c *gin.Context) {
	claims := callerClaims(c)

	appointments, err := h.appointmentSvc.ListForDoctor(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, appointments, "")
}

// Cancel handles the patient's self-service cancel.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	claims := callerClaims(c)

	id, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}

	a, err := h.appointmentSvc.Cancel(c.Request.Context(), id, claims.UserID, claims.Role, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a, "Appointment cancelled.")
}

type rescheduleRequest struct {
	NewDate string `json:"newDate" binding:"required"`
	NewTime string `json:"newTime" binding:"required"`
}

// Reschedule handles the patient's self-service reschedule.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
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
	}, claims.UserID, claims.Role, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a, "Appointment rescheduled")
}

type doctorUpdateRequest struct {
	Status  string `json:"status" binding:"required"`
	NewDate string `json:"newDate"`
	NewTime string `json:"newTime"`
}

// UpdateByDoctor lets the owning doctor approve, cancel, or reschedule.
func (h *AppointmentHandler) UpdateByDoctor(c *gin.Context) {
	claims := callerClaims(c)

	id, ok := parseUUID(c, "appointmentId")
	if !ok {
		return
	}

	var req doctorUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointmentSvc.UpdateByDoctor(c.Request.Context(), id, &appointment.DoctorUpdateCommand{
		Status:  appointment.Status(req.Status),
		NewDate: req.NewDate,
		NewTime: req.NewTime,
	}, claims.UserID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a, "Appointment updated")
}

// listQueryFromContext builds the admin filter from query parameters.
func listQueryFromContext(c *gin.Context) (*appointment.ListQuery, bool) {
	q := &appointment.ListQuery{}

	if raw := c.Query("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid doctorId: must be a valid UUID"})
			return nil, false
		}
		q.DoctorID = &id
	}
	if raw := c.Query("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid patientId: must be a valid UUID"})
			return nil, false
		}
		q.PatientID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := appointment.Status(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status filter"})
			return nil, false
		}
		q.Status = &status
	}

	return q, true
}
