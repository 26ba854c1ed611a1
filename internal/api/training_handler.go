package api

import (
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type TrainingHandler struct {
	trainingService service.TrainingService
}

func NewTrainingHandler(trainingService service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// --- DTOs ---

type SetRequest struct {
	OrderIndex int     `json:"orderIndex"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	RestTime   *int    `json:"restTime"` // seconds
	Duration   *int    `json:"duration"` // seconds
	RPE        *int    `json:"rpe"`
}

type ImplementationRequest struct {
	ExerciseID string       `json:"exerciseId" binding:"required"`
	OrderIndex int          `json:"orderIndex"`
	Sets       []SetRequest `json:"sets"`
}

type CreateTrainingRequest struct {
	DateTime        time.Time               `json:"dateTime" binding:"required"`
	Duration        *int                    `json:"duration"`
	Notes           *string                 `json:"notes"`
	Status          string                  `json:"status"`
	Implementations []ImplementationRequest `json:"implementations" binding:"dive"`
}

// UpdateTrainingRequest: omitted fields stay as they are. Sending
// implementations, even an empty list, replaces all of them.
type UpdateTrainingRequest struct {
	DateTime        *time.Time               `json:"dateTime"`
	Duration        *int                     `json:"duration"`
	Notes           *string                  `json:"notes"`
	Status          *string                  `json:"status"`
	Implementations *[]ImplementationRequest `json:"implementations"`
}

type CreateFromTemplateRequest struct {
	DateTime time.Time `json:"dateTime" binding:"required"`
}

type SetResponse struct {
	ID         string  `json:"id"`
	OrderIndex int     `json:"orderIndex"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	RestTime   *int    `json:"restTime,omitempty"`
	Duration   *int    `json:"duration,omitempty"`
	RPE        *int    `json:"rpe,omitempty"`
}

type ImplementationResponse struct {
	ID         string        `json:"id"`
	ExerciseID string        `json:"exerciseId"`
	OrderIndex int           `json:"orderIndex"`
	Sets       []SetResponse `json:"sets"`
}

type TrainingResponse struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"userId"`
	TemplateID      string                   `json:"templateId,omitempty"`
	DateTime        time.Time                `json:"dateTime"`
	Duration        *int                     `json:"duration,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
	Status          domain.TrainingStatus    `json:"status"`
	Shared          bool                     `json:"shared"`
	Implementations []ImplementationResponse `json:"implementations"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func MapImplementationToResponse(impl domain.Implementation) ImplementationResponse {
	sets := make([]SetResponse, len(impl.Sets))
	for i, s := range impl.Sets {
		resp := SetResponse{
			ID:         s.ID.Hex(),
			OrderIndex: s.OrderIndex,
			Weight:     s.Weight.Value(),
			Reps:       s.Reps.Value(),
		}
		if s.RestTime != nil {
			v := s.RestTime.Seconds()
			resp.RestTime = &v
		}
		if s.Duration != nil {
			v := s.Duration.Seconds()
			resp.Duration = &v
		}
		if s.RPE != nil {
			v := s.RPE.Value()
			resp.RPE = &v
		}
		sets[i] = resp
	}
	return ImplementationResponse{
		ID:         impl.ID.Hex(),
		ExerciseID: impl.ExerciseID.Hex(),
		OrderIndex: impl.OrderIndex,
		Sets:       sets,
	}
}

func MapTrainingToResponse(t *domain.Training) TrainingResponse {
	if t == nil {
		return TrainingResponse{}
	}
	resp := TrainingResponse{
		ID:              t.ID.Hex(),
		UserID:          t.UserID.Hex(),
		DateTime:        t.DateTime,
		Notes:           t.Notes,
		Status:          t.Status,
		Shared:          t.ShareToken != nil,
		Implementations: make([]ImplementationResponse, len(t.Implementations)),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.TemplateID != nil {
		resp.TemplateID = t.TemplateID.Hex()
	}
	if t.Duration != nil {
		d := t.Duration.Seconds()
		resp.Duration = &d
	}
	for i, impl := range t.Implementations {
		resp.Implementations[i] = MapImplementationToResponse(impl)
	}
	return resp
}

func MapTrainingsToResponse(trainings []domain.Training) []TrainingResponse {
	responses := make([]TrainingResponse, len(trainings))
	for i := range trainings {
		responses[i] = MapTrainingToResponse(&trainings[i])
	}
	return responses
}

func toImplementationInputs(reqs []ImplementationRequest) ([]service.ImplementationInput, error) {
	inputs := make([]service.ImplementationInput, 0, len(reqs))
	for _, r := range reqs {
		ids, err := parseObjectIDs([]string{r.ExerciseID})
		if err != nil {
			return nil, err
		}
		sets := make([]service.SetInput, len(r.Sets))
		for i, s := range r.Sets {
			sets[i] = service.SetInput{
				OrderIndex: s.OrderIndex,
				Weight:     s.Weight,
				Reps:       s.Reps,
				RestTime:   s.RestTime,
				Duration:   s.Duration,
				RPE:        s.RPE,
			}
		}
		inputs = append(inputs, service.ImplementationInput{
			ExerciseID: ids[0],
			OrderIndex: r.OrderIndex,
			Sets:       sets,
		})
	}
	return inputs, nil
}

// --- Handler Methods ---

// CreateTraining godoc
// @Summary Record a training
// @Description Creates a training with all of its implementations and sets in one write.
// @Tags Trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param training body CreateTrainingRequest true "Training"
// @Success 201 {object} TrainingResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /trainings [post]
func (h *TrainingHandler) CreateTraining(c *gin.Context) {
	var req CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	impls, err := toImplementationInputs(req.Implementations)
	if err != nil {
		respondWithError(c, err)
		return
	}
	training, err := h.trainingService.CreateTraining(c.Request.Context(), userID, service.TrainingInput{
		DateTime:        req.DateTime,
		Duration:        req.Duration,
		Notes:           req.Notes,
		Status:          req.Status,
		Implementations: impls,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTrainingToResponse(training))
}

// ListTrainings godoc
// @Summary List trainings of a user
// @Description The caller's own trainings, or those of a user they follow. Newest first.
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID or 'me'"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param status query string false "planned, in_progress, completed or skipped"
// @Success 200 {array} TrainingResponse
// @Failure 403 {object} gin.H "Not following this user"
// @Router /users/{userId}/trainings [get]
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	ownerID, ok := targetUserID(c, callerID)
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	filter := repository.TrainingFilter{From: period.From, To: period.To}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseTrainingStatus(raw)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.Status = &status
	}

	trainings, err := h.trainingService.ListTrainings(c.Request.Context(), callerID, ownerID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingsToResponse(trainings))
}

func (h *TrainingHandler) GetTraining(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainingID, ok := pathObjectID(c, "trainingId")
	if !ok {
		return
	}

	training, err := h.trainingService.GetTraining(c.Request.Context(), callerID, trainingID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingToResponse(training))
}

// UpdateTraining godoc
// @Summary Update a training
// @Description Partial update. A present implementations list replaces every implementation and set.
// @Tags Trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trainingId path string true "Training ID"
// @Param training body UpdateTrainingRequest true "Fields to change"
// @Success 200 {object} TrainingResponse
// @Failure 403 {object} gin.H "Not the owner"
// @Failure 404 {object} gin.H "Training not found"
// @Router /trainings/{trainingId} [patch]
func (h *TrainingHandler) UpdateTraining(c *gin.Context) {
	var req UpdateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainingID, ok := pathObjectID(c, "trainingId")
	if !ok {
		return
	}

	input := service.TrainingUpdateInput{
		DateTime: req.DateTime,
		Duration: req.Duration,
		Notes:    req.Notes,
		Status:   req.Status,
	}
	if req.Implementations != nil {
		impls, err := toImplementationInputs(*req.Implementations)
		if err != nil {
			respondWithError(c, err)
			return
		}
		input.Implementations = &impls
	}

	training, err := h.trainingService.UpdateTraining(c.Request.Context(), userID, trainingID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingToResponse(training))
}

func (h *TrainingHandler) DeleteTraining(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainingID, ok := pathObjectID(c, "trainingId")
	if !ok {
		return
	}

	if err := h.trainingService.DeleteTraining(c.Request.Context(), userID, trainingID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrainingHandler) CreateFromTemplate(c *gin.Context) {
	var req CreateFromTemplateRequest
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

	training, err := h.trainingService.CreateFromTemplate(c.Request.Context(), userID, templateID, req.DateTime)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTrainingToResponse(training))
}

// ShareTraining returns the share token, creating it on first use.
func (h *TrainingHandler) ShareTraining(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainingID, ok := pathObjectID(c, "trainingId")
	if !ok {
		return
	}

	token, err := h.trainingService.GenerateShareToken(c.Request.Context(), userID, trainingID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shareToken": token, "path": "/api/v1/shared/" + token})
}

func (h *TrainingHandler) UnshareTraining(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainingID, ok := pathObjectID(c, "trainingId")
	if !ok {
		return
	}

	if err := h.trainingService.RemoveShareToken(c.Request.Context(), userID, trainingID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSharedTraining godoc
// @Summary Open a shared training
// @Description Public, read-only access through a share token. Rate limited per client IP.
// @Tags Trainings
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} TrainingResponse
// @Failure 404 {object} gin.H "Unknown or revoked token"
// @Failure 429 {object} gin.H "Too many requests"
// @Router /shared/{token} [get]
func (h *TrainingHandler) GetSharedTraining(c *gin.Context) {
	training, err := h.trainingService.GetSharedTraining(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingToResponse(training))
}

func (h *TrainingHandler) GetLastImplementation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	impl, err := h.trainingService.GetLastImplementation(c.Request.Context(), userID, exerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if impl == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, MapImplementationToResponse(*impl))
}
