package api

import (
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type BodyMetricRequest struct {
	Weight *float64 `json:"weight"` // kg
	Height *float64 `json:"height"` // cm
	Date   *string  `json:"date"`   // YYYY-MM-DD, defaults to today
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Weight    *float64  `json:"weight,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BodyMetricResponse struct {
	ID     string   `json:"id"`
	Date   string   `json:"date"`
	Weight *float64 `json:"weight,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func MapUserToProfileResponse(u *domain.User) ProfileResponse {
	if u == nil {
		return ProfileResponse{}
	}
	return ProfileResponse{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Username:  u.Username,
		Weight:    u.Weight,
		Height:    u.Height,
		CreatedAt: u.CreatedAt,
	}
}

func MapBodyMetricsToResponse(metrics []domain.UserBodyMetric) []BodyMetricResponse {
	responses := make([]BodyMetricResponse, len(metrics))
	for i, m := range metrics {
		responses[i] = BodyMetricResponse{
			ID:     m.ID.Hex(),
			Date:   m.Date.Format(dateLayout),
			Weight: m.Weight,
			Height: m.Height,
		}
	}
	return responses
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToProfileResponse(user))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdateInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToProfileResponse(user))
}

// AddBodyMetric godoc
// @Summary Record body weight and/or height
// @Description Stores a dated observation and refreshes the cached values on the profile.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param metric body BodyMetricRequest true "Observation"
// @Success 201 {object} BodyMetricResponse
// @Failure 400 {object} gin.H "Neither weight nor height given, or out of range"
// @Router /me/body-metrics [post]
func (h *ProfileHandler) AddBodyMetric(c *gin.Context) {
	var req BodyMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	input := service.BodyMetricInput{Weight: req.Weight, Height: req.Height}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
			return
		}
		input.Date = &date
	}

	metric, err := h.profileService.AddBodyMetric(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapBodyMetricsToResponse([]domain.UserBodyMetric{*metric})[0])
}

func (h *ProfileHandler) ListBodyMetrics(c *gin.Context) {
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

	metrics, err := h.profileService.ListBodyMetrics(c.Request.Context(), callerID, ownerID, period.From, period.To)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapBodyMetricsToResponse(metrics))
}
