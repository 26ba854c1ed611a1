package api

import (
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise library and the muscle group catalog.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest is used for both create and update; an update replaces every field.
type ExerciseRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	MuscleGroupIDs []string `json:"muscleGroupIds"`
}

type ExerciseResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	IsCustom       bool      `json:"isCustom"`
	MuscleGroupIDs []string  `json:"muscleGroupIds"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateMuscleGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type MuscleGroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		ID:             ex.ID.Hex(),
		Name:           ex.Name,
		Description:    ex.Description,
		IsCustom:       ex.IsCustom,
		MuscleGroupIDs: make([]string, len(ex.MuscleGroupIDs)),
		CreatedAt:      ex.CreatedAt,
		UpdatedAt:      ex.UpdatedAt,
	}
	if ex.UserID != nil {
		resp.UserID = ex.UserID.Hex()
	}
	for i, id := range ex.MuscleGroupIDs {
		resp.MuscleGroupIDs[i] = id.Hex()
	}
	return resp
}

func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func MapMuscleGroupsToResponse(groups []domain.MuscleGroup) []MuscleGroupResponse {
	responses := make([]MuscleGroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = MuscleGroupResponse{ID: g.ID.Hex(), Name: g.Name}
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a custom exercise
// @Description Creates an exercise owned by the authenticated user.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupIDs, err := parseObjectIDs(req.MuscleGroupIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, req.Name, req.Description, groupIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetExercises godoc
// @Summary List exercises
// @Description System exercises plus the caller's own custom ones.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /exercises [get]
func (h *ExerciseHandler) GetExercises(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), userID, exerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	groupIDs, err := parseObjectIDs(req.MuscleGroupIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), userID, exerciseID, req.Name, req.Description, groupIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), userID, exerciseID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExerciseHandler) CreateMuscleGroup(c *gin.Context) {
	var req CreateMuscleGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	group, err := h.exerciseService.CreateMuscleGroup(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MuscleGroupResponse{ID: group.ID.Hex(), Name: group.Name})
}

func (h *ExerciseHandler) GetMuscleGroups(c *gin.Context) {
	groups, err := h.exerciseService.ListMuscleGroups(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapMuscleGroupsToResponse(groups))
}
