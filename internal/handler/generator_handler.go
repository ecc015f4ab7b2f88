package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/service"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
	"github.com/schoolcore/timetable-api/pkg/response"
)

type batchGenerator interface {
	GenerateBatch(ctx context.Context, req dto.GenerateBatchRequest) (*dto.GenerateBatchResponse, error)
}

// GeneratorHandler exposes the batch timetable generator.
type GeneratorHandler struct {
	service batchGenerator
}

// NewGeneratorHandler constructs the handler.
func NewGeneratorHandler(svc *service.BatchGeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Generate weekly timetables for a batch of classes
// @Description Fills a full week per class using subject priority quotas and a shared teacher occupancy map. Preview by default; set commit to activate each generated week.
// @Tags Generator
// @Accept json
// @Produce json
// @Param payload body dto.GenerateBatchRequest true "Batch generation payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *GeneratorHandler) Generate(c *gin.Context) {
	if !requireRole(c, "admin", "scheduler") {
		return
	}
	var req dto.GenerateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.GenerateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	mode := "preview"
	if result.Committed {
		mode = "committed"
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"mode": mode})
}
