package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
	"github.com/schoolcore/timetable-api/internal/service"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
	"github.com/schoolcore/timetable-api/pkg/response"
)

type exportOperator interface {
	Enqueue(ctx context.Context, timetableID string, format models.ExportFormat) (models.ExportJob, error)
	Status(jobID string) (models.ExportJob, error)
	Download(token string) (*os.File, string, error)
}

// ExportHandler exposes asynchronous timetable exports.
type ExportHandler struct {
	service exportOperator
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Enqueue godoc
// @Summary Queue a CSV or PDF export of a timetable
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.ExportTimetableRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /exports/timetables/{id} [post]
func (h *ExportHandler) Enqueue(c *gin.Context) {
	if !requireRole(c, "admin", "scheduler", "teacher") {
		return
	}
	var req dto.ExportTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.service.Enqueue(c.Request.Context(), c.Param("id"), models.ExportFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, exportJobResponse(job), nil)
}

// Status godoc
// @Summary Poll an export job
// @Tags Exports
// @Produce json
// @Param jobId path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{jobId} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.service.Status(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exportJobResponse(job), nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, relPath, err := h.service.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	filename := filepath.Base(relPath)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func exportJobResponse(job models.ExportJob) dto.ExportJobResponse {
	return dto.ExportJobResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		DownloadURL: job.DownloadURL,
		Error:       job.ErrorMessage,
	}
}
