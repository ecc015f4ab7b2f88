package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/timetable-api/internal/service"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
	"github.com/schoolcore/timetable-api/pkg/response"
)

// CalendarHandler exposes the fixed weekly structure and the holiday
// calendar.
type CalendarHandler struct {
	calendar *service.CalendarService
	holidays *service.HolidayService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendar *service.CalendarService, holidays *service.HolidayService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, holidays: holidays}
}

// Structure godoc
// @Summary Get the weekly period grid and blocked windows
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/structure [get]
func (h *CalendarHandler) Structure(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"periods":        h.calendar.Periods(),
		"blockedWindows": h.calendar.BlockedWindows(),
	}, nil)
}

// Holidays godoc
// @Summary List holidays in a date range
// @Tags Calendar
// @Produce json
// @Param from query string true "Start date (inclusive), YYYY-MM-DD"
// @Param to query string true "End date (exclusive), YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /calendar/holidays [get]
func (h *CalendarHandler) Holidays(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
		return
	}
	holidays, err := h.holidays.List(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, nil)
}
