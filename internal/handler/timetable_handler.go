package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
	"github.com/schoolcore/timetable-api/internal/service"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
	"github.com/schoolcore/timetable-api/pkg/response"
)

const maxWeekSlots = 64

type timetableOperator interface {
	ValidateSlot(ctx context.Context, req dto.ValidateSlotRequest) (dto.ValidationResult, error)
	ValidateWeek(ctx context.Context, req dto.ValidateWeekRequest) (dto.ValidationResult, error)
	CommitWeek(ctx context.Context, req dto.CommitWeekRequest) (*models.Timetable, dto.ValidationResult, error)
	GetActive(ctx context.Context, classID string) (*dto.TimetableDetail, error)
	GetByID(ctx context.Context, id string) (*dto.TimetableDetail, error)
	TeacherWeek(ctx context.Context, teacherID string) (*dto.TeacherWeekResponse, error)
	TeacherAvailability(ctx context.Context, req dto.TeacherAvailabilityRequest) (dto.TeacherAvailabilityResponse, error)
	TeacherConflicts(ctx context.Context, teacherID string) ([]models.TeacherDayConflict, error)
}

// TimetableHandler exposes validation, commit and timetable read endpoints.
type TimetableHandler struct {
	service timetableOperator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// ValidateSlot godoc
// @Summary Validate a single timetable slot
// @Description Checks one candidate (day, period) cell against committed state without persisting anything.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ValidateSlotRequest true "Slot validation payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/validate-slot [post]
func (h *TimetableHandler) ValidateSlot(c *gin.Context) {
	var req dto.ValidateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}
	result, err := h.service.ValidateSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ValidateWeek godoc
// @Summary Validate a full proposed week
// @Description Runs every slot check plus duplicate and double-period rules for a class's proposed week.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ValidateWeekRequest true "Week validation payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/validate-week [post]
func (h *TimetableHandler) ValidateWeek(c *gin.Context) {
	var req dto.ValidateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}
	if len(req.Slots) > maxWeekSlots {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slots exceeds supported limit"))
		return
	}
	result, err := h.service.ValidateWeek(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CommitWeek godoc
// @Summary Commit a validated week as the active timetable
// @Description Validates the week and, when clean, supersedes the previous active timetable atomically. Validation failures return 422 with the violation list.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CommitWeekRequest true "Commit payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/commit [post]
func (h *TimetableHandler) CommitWeek(c *gin.Context) {
	if !requireRole(c, "admin", "scheduler") {
		return
	}
	var req dto.CommitWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid commit payload"))
		return
	}
	if len(req.Slots) > maxWeekSlots {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "slots exceeds supported limit"))
		return
	}
	timetable, result, err := h.service.CommitWeek(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrInvalidTimetable.Code {
			response.JSON(c, appErr.Status, result, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"timetable": timetable, "validation": result})
}

// GetActive godoc
// @Summary Get the active timetable for a class
// @Tags Timetables
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/timetable [get]
func (h *TimetableHandler) GetActive(c *gin.Context) {
	detail, err := h.service.GetActive(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// GetByID godoc
// @Summary Get a timetable by ID
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) GetByID(c *gin.Context) {
	detail, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// TeacherWeek godoc
// @Summary Get a teacher's weekly schedule across classes
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/schedule [get]
func (h *TimetableHandler) TeacherWeek(c *gin.Context) {
	week, err := h.service.TeacherWeek(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// TeacherAvailability godoc
// @Summary Probe a teacher's availability at one (day, period)
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Param day query string true "School day, e.g. MONDAY"
// @Param period query int true "Period number 1-8"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *TimetableHandler) TeacherAvailability(c *gin.Context) {
	var query struct {
		Day    string `form:"day"`
		Period int    `form:"period"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}
	result, err := h.service.TeacherAvailability(c.Request.Context(), dto.TeacherAvailabilityRequest{
		TeacherID: c.Param("id"),
		Day:       query.Day,
		Period:    query.Period,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// TeacherConflicts godoc
// @Summary List double-bookings for a teacher
// @Description Reports any (day, period) where the teacher appears in more than one active timetable.
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/conflicts [get]
func (h *TimetableHandler) TeacherConflicts(c *gin.Context) {
	conflicts, err := h.service.TeacherConflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}
