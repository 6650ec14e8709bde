package v1

import (
	"github.com/docease/docease-api/internal/domain/schedule"
	"github.com/docease/docease-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	scheduleSvc *service.ScheduleService
}

func NewAvailabilityHandler(scheduleSvc *service.ScheduleService) *AvailabilityHandler {
	return &AvailabilityHandler{scheduleSvc: scheduleSvc}
}

type createWindowRequest struct {
	DoctorID  string `json:"doctorId" binding:"required"`
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// Create adds a recurring window for the authenticated doctor.
func (h *AvailabilityHandler) Create(c *gin.Context) {
	claims := callerClaims(c)

	var req createWindowRequest
	if !bindJSON(c, &req) {
		return
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil || doctorID != claims.UserID {
		respondServiceError(c, service.ErrForbidden)
		return
	}

	start, err := schedule.ParseHourMinute(req.StartTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	end, err := schedule.ParseHourMinute(req.EndTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	w, err := h.scheduleSvc.AddWindow(c.Request.Context(), &schedule.CreateWindowCommand{
		DoctorID:  doctorID,
		Day:       schedule.Weekday(req.Day),
		StartTime: start,
		EndTime:   end,
	}, claims.UserID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, w, "")
}

func (h *AvailabilityHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	windows, err := h.scheduleSvc.ListWindows(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, windows, "")
}

type updateWindowRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

func (h *AvailabilityHandler) Update(c *gin.Context) {
	claims := callerClaims(c)

	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateWindowRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := schedule.ParseHourMinute(req.StartTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	end, err := schedule.ParseHourMinute(req.EndTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	w, err := h.scheduleSvc.UpdateWindow(c.Request.Context(), id, &schedule.UpdateWindowCommand{
		Day:       schedule.Weekday(req.Day),
		StartTime: start,
		EndTime:   end,
	}, claims.UserID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, w, "")
}

func (h *AvailabilityHandler) Delete(c *gin.Context) {
	claims := callerClaims(c)

	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	w, err := h.scheduleSvc.RemoveWindow(c.Request.Context(), id, claims.UserID, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, w, "Schedule deleted successfully.")
}
