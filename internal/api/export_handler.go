package api

import (
	"net/http"

	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CreateExport godoc
// @Summary Export all trainings
// @Description Uploads the caller's trainings as JSON and returns a temporary download URL.
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} gin.H "Object storage is not configured"
// @Router /exports [post]
func (h *ExportHandler) CreateExport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.exportService.ExportTrainings(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
