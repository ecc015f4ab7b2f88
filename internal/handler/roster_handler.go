package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/timetable-api/internal/models"
	"github.com/schoolcore/timetable-api/internal/service"
	"github.com/schoolcore/timetable-api/pkg/response"
)

// RosterHandler exposes the read-only class, subject and teacher rosters.
type RosterHandler struct {
	service *service.RosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// ListClasses godoc
// @Summary List classes
// @Tags Rosters
// @Produce json
// @Param search query string false "Name filter"
// @Param gradeLevel query int false "Grade level filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *RosterHandler) ListClasses(c *gin.Context) {
	filter := models.ClassFilter{
		Search:     c.Query("search"),
		GradeLevel: queryInt(c, "gradeLevel"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "pageSize"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	classes, pagination, err := h.service.ListClasses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// GetClass godoc
// @Summary Get one class
// @Tags Rosters
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *RosterHandler) GetClass(c *gin.Context) {
	class, err := h.service.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Rosters
// @Produce json
// @Param search query string false "Name or code filter"
// @Param withTeachers query bool false "Include qualified teacher IDs"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *RosterHandler) ListSubjects(c *gin.Context) {
	if c.Query("withTeachers") == "true" {
		roster, err := h.service.ListSubjectsWithTeachers(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, roster, nil)
		return
	}

	filter := models.SubjectFilter{
		Search:    c.Query("search"),
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "pageSize"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	subjects, pagination, err := h.service.ListSubjects(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, pagination)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags Rosters
// @Produce json
// @Param search query string false "Name or email filter"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *RosterHandler) ListTeachers(c *gin.Context) {
	filter := models.TeacherFilter{
		Search:    c.Query("search"),
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "pageSize"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	teachers, pagination, err := h.service.ListTeachers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// GetTeacher godoc
// @Summary Get one teacher
// @Tags Rosters
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *RosterHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.service.GetTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

func queryInt(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
