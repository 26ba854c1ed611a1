package api

import (
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

type SetTemplateRequest struct {
	OrderIndex int      `json:"orderIndex"`
	Weight     *float64 `json:"weight"`
	Reps       *int     `json:"reps"`
}

type ImplementationTemplateRequest struct {
	ExerciseID string               `json:"exerciseId" binding:"required"`
	OrderIndex int                  `json:"orderIndex"`
	Sets       []SetTemplateRequest `json:"sets"`
}

type TemplateRequest struct {
	Name            string                          `json:"name" binding:"required"`
	Description     string                          `json:"description"`
	Implementations []ImplementationTemplateRequest `json:"implementations" binding:"dive"`
}

type TemplateResponse struct {
	ID              string                          `json:"id"`
	UserID          string                          `json:"userId,omitempty"`
	System          bool                            `json:"system"`
	Name            string                          `json:"name"`
	Description     string                          `json:"description,omitempty"`
	Implementations []domain.ImplementationTemplate `json:"implementations"`
	CreatedAt       time.Time                       `json:"createdAt"`
	UpdatedAt       time.Time                       `json:"updatedAt"`
}

func MapTemplateToResponse(tpl *domain.TrainingTemplate) TemplateResponse {
	if tpl == nil {
		return TemplateResponse{}
	}
	resp := TemplateResponse{
		ID:              tpl.ID.Hex(),
		System:          tpl.IsSystem(),
		Name:            tpl.Name,
		Description:     tpl.Description,
		Implementations: tpl.Implementations,
		CreatedAt:       tpl.CreatedAt,
		UpdatedAt:       tpl.UpdatedAt,
	}
	if tpl.UserID != nil {
		resp.UserID = tpl.UserID.Hex()
	}
	if resp.Implementations == nil {
		resp.Implementations = []domain.ImplementationTemplate{}
	}
	return resp
}

func MapTemplatesToResponse(templates []domain.TrainingTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapTemplateToResponse(&templates[i])
	}
	return responses
}

func (r TemplateRequest) toInput() (service.TemplateInput, error) {
	input := service.TemplateInput{
		Name:            r.Name,
		Description:     r.Description,
		Implementations: make([]service.ImplementationTemplateInput, 0, len(r.Implementations)),
	}
	for _, implReq := range r.Implementations {
		ids, err := parseObjectIDs([]string{implReq.ExerciseID})
		if err != nil {
			return service.TemplateInput{}, err
		}
		sets := make([]service.SetTemplateInput, len(implReq.Sets))
		for i, s := range implReq.Sets {
			sets[i] = service.SetTemplateInput{OrderIndex: s.OrderIndex, Weight: s.Weight, Reps: s.Reps}
		}
		input.Implementations = append(input.Implementations, service.ImplementationTemplateInput{
			ExerciseID: ids[0],
			OrderIndex: implReq.OrderIndex,
			Sets:       sets,
		})
	}
	return input, nil
}

// --- Handler Methods ---

// CreateTemplate godoc
// @Summary Create a training template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body TemplateRequest true "Template"
// @Success 201 {object} TemplateResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tpl, err := h.templateService.CreateTemplate(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTemplateToResponse(tpl))
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplatesToResponse(templates))
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	tpl, err := h.templateService.GetTemplate(c.Request.Context(), userID, templateID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(tpl))
}

// UpdateTemplate replaces the whole template. System templates are read-only.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tpl, err := h.templateService.UpdateTemplate(c.Request.Context(), userID, templateID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(tpl))
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), userID, templateID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
