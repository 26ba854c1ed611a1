package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"alcyxob/workout-tracker/internal/analytics"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsHandler exposes read-only statistics about a user's history.
// Every route takes :userId ("me" for the caller); other users need an
// approved follow.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type OneRepMaxResponse struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Formula   string  `json:"formula"`
	OneRepMax float64 `json:"oneRepMax"`
}

type ExerciseProgressResponse struct {
	ExerciseID string             `json:"exerciseId"`
	Formula    analytics.Formula  `json:"formula"`
	Weight     map[string]float64 `json:"weight"`
	Volume     map[string]float64 `json:"volume"`
	OneRepMax  map[string]float64 `json:"oneRepMax"`
}

type StreakResponse struct {
	Days int `json:"days"`
}

// callerAndOwner resolves the authenticated viewer and the :userId owner.
func callerAndOwner(c *gin.Context) (viewerID, ownerID primitive.ObjectID, ok bool) {
	viewerID, ok = currentUserID(c)
	if !ok {
		return
	}
	ownerID, ok = targetUserID(c, viewerID)
	return
}

// OneRepMax godoc
// @Summary Estimate a one-rep max
// @Description Pure calculation, no stored data is read.
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param weight query number true "Lifted weight"
// @Param reps query int true "Repetitions"
// @Param formula query string false "brzycki, epley or lombardi; the configured default when empty"
// @Success 200 {object} OneRepMaxResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /analytics/one-rep-max [get]
func (h *AnalyticsHandler) OneRepMax(c *gin.Context) {
	weight, err := strconv.ParseFloat(c.Query("weight"), 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "weight must be a number")
		return
	}
	reps, err := strconv.Atoi(c.Query("reps"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "reps must be an integer")
		return
	}
	formula := c.Query("formula")

	orm, err := h.analyticsService.OneRepMax(weight, reps, formula)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, OneRepMaxResponse{Weight: weight, Reps: reps, Formula: formula, OneRepMax: orm})
}

func (h *AnalyticsHandler) ExerciseProgress(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	progress, err := h.analyticsService.ExerciseProgress(c.Request.Context(), viewerID, ownerID, exerciseID, period, c.Query("formula"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExerciseProgressResponse{
		ExerciseID: progress.ExerciseID.Hex(),
		Formula:    progress.Formula,
		Weight:     byDate(progress.Weight),
		Volume:     byDate(progress.Volume),
		OneRepMax:  byDate(progress.OneRepMax),
	})
}

func (h *AnalyticsHandler) TrainingFrequency(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	series, err := h.analyticsService.TrainingFrequency(c.Request.Context(), viewerID, ownerID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, byDate(series))
}

func (h *AnalyticsHandler) TotalVolume(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	series, err := h.analyticsService.TotalVolume(c.Request.Context(), viewerID, ownerID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, byDate(series))
}

func (h *AnalyticsHandler) Streak(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}

	days, err := h.analyticsService.Streak(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, StreakResponse{Days: days})
}

// ExercisePR answers 404 when the exercise was never completed.
func (h *AnalyticsHandler) ExercisePR(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	pr, err := h.analyticsService.ExercisePR(c.Request.Context(), viewerID, ownerID, exerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if pr == nil {
		abortWithError(c, http.StatusNotFound, "No completed sets for this exercise.")
		return
	}
	c.JSON(http.StatusOK, pr)
}

func (h *AnalyticsHandler) AllPRs(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}

	records, err := h.analyticsService.AllPRs(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if records == nil {
		records = []analytics.PersonalRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *AnalyticsHandler) MuscleGroupVolume(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	volumes, err := h.analyticsService.MuscleGroupVolume(c.Request.Context(), viewerID, ownerID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, byHex(volumes))
}

func (h *AnalyticsHandler) MuscleGroupFrequency(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	counts, err := h.analyticsService.MuscleGroupFrequency(c.Request.Context(), viewerID, ownerID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, byHex(counts))
}

func (h *AnalyticsHandler) BodyWeightProgress(c *gin.Context) {
	h.bodySeries(c, h.analyticsService.BodyWeightProgress)
}

func (h *AnalyticsHandler) BMIProgress(c *gin.Context) {
	h.bodySeries(c, h.analyticsService.BMIProgress)
}

type dailySeriesQuery func(ctx context.Context, viewerID, ownerID primitive.ObjectID, period service.DateRange) (map[time.Time]float64, error)

func (h *AnalyticsHandler) bodySeries(c *gin.Context, query dailySeriesQuery) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}
	period, ok := parseDateRange(c)
	if !ok {
		return
	}

	series, err := query(c.Request.Context(), viewerID, ownerID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, byDate(series))
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	viewerID, ownerID, ok := callerAndOwner(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
