package api

import (
	"context"
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FollowHandler struct {
	followService service.FollowService
}

func NewFollowHandler(followService service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

type FollowResponse struct {
	ID          string              `json:"id"`
	FollowerID  string              `json:"followerId"`
	FollowingID string              `json:"followingId"`
	Status      domain.FollowStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func MapFollowToResponse(f *domain.Follow) FollowResponse {
	if f == nil {
		return FollowResponse{}
	}
	return FollowResponse{
		ID:          f.ID.Hex(),
		FollowerID:  f.FollowerID.Hex(),
		FollowingID: f.FollowingID.Hex(),
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func MapFollowsToResponse(follows []domain.Follow) []FollowResponse {
	responses := make([]FollowResponse, len(follows))
	for i := range follows {
		responses[i] = MapFollowToResponse(&follows[i])
	}
	return responses
}

// statusQuery reads the optional ?status= filter.
func statusQuery(c *gin.Context) (*domain.FollowStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status := domain.FollowStatus(raw)
	switch status {
	case domain.FollowStatusPending, domain.FollowStatusApproved, domain.FollowStatusRejected:
		return &status, true
	default:
		abortWithError(c, http.StatusBadRequest, "Invalid status, expected pending, approved or rejected.")
		return nil, false
	}
}

// Follow godoc
// @Summary Ask to follow a user
// @Description Creates a pending follow request. A rejected request can be sent again.
// @Tags Follows
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User to follow"
// @Success 201 {object} FollowResponse
// @Failure 400 {object} gin.H "Following yourself"
// @Failure 404 {object} gin.H "User not found"
// @Failure 409 {object} gin.H "Request already exists"
// @Router /users/{userId}/follow [post]
func (h *FollowHandler) Follow(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	follow, err := h.followService.RequestFollow(c.Request.Context(), callerID, targetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapFollowToResponse(follow))
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	if err := h.followService.Unfollow(c.Request.Context(), callerID, targetID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FollowHandler) Approve(c *gin.Context) {
	h.decide(c, h.followService.Approve)
}

func (h *FollowHandler) Reject(c *gin.Context) {
	h.decide(c, h.followService.Reject)
}

func (h *FollowHandler) decide(c *gin.Context, transition func(ctx context.Context, userID, followerID primitive.ObjectID) (*domain.Follow, error)) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	followerID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}

	follow, err := transition(c.Request.Context(), callerID, followerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapFollowToResponse(follow))
}

func (h *FollowHandler) ListFollowers(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	follows, err := h.followService.ListFollowers(c.Request.Context(), callerID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapFollowsToResponse(follows))
}

func (h *FollowHandler) ListFollowing(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	follows, err := h.followService.ListFollowing(c.Request.Context(), callerID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapFollowsToResponse(follows))
}
