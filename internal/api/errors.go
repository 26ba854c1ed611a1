package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondWithError maps service errors onto status codes. Anything it does
// not recognise is logged and reported as a 500.
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFollowExists), errors.Is(err, service.ErrMuscleGroupExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// pathObjectID reads an ObjectID path parameter, aborting with 400 when it is
// malformed.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// targetUserID resolves the :userId parameter; "me" stands for the caller.
func targetUserID(c *gin.Context, callerID primitive.ObjectID) (primitive.ObjectID, bool) {
	if c.Param("userId") == "me" {
		return callerID, true
	}
	return pathObjectID(c, "userId")
}

const dateLayout = time.DateOnly

// parseDateQuery accepts YYYY-MM-DD or RFC 3339. A bare date used as an upper
// bound covers the whole day.
func parseDateQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" date, expected YYYY-MM-DD or RFC 3339.")
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

func parseDateRange(c *gin.Context) (service.DateRange, bool) {
	from, ok := parseDateQuery(c, "from", false)
	if !ok {
		return service.DateRange{}, false
	}
	to, ok := parseDateQuery(c, "to", true)
	if !ok {
		return service.DateRange{}, false
	}
	return service.DateRange{From: from, To: to}, true
}

// byDate renders calendar-day keyed series with YYYY-MM-DD keys.
func byDate[V any](series map[time.Time]V) map[string]V {
	out := make(map[string]V, len(series))
	for d, v := range series {
		out[d.Format(dateLayout)] = v
	}
	return out
}

func byHex[V any](series map[primitive.ObjectID]V) map[string]V {
	out := make(map[string]V, len(series))
	for id, v := range series {
		out[id.Hex()] = v
	}
	return out
}

func parseObjectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, &domain.ValidationError{Field: "id", Reason: "malformed object id " + h}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
