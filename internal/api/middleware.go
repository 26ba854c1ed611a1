package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ContextUserIDKey = "userID"

// jwtClaims is the payload issued by the auth provider. Only the user id is
// read here.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.UserID == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}
		if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid user ID format in token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// currentUserID resolves the authenticated caller. On failure the request is
// already aborted and ok is false.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

//go:generate mockgen -source=$GOFILE -destination=mock_rate_limiter_test.go -package=api

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per client IP on the routes it
// guards.
func RateLimit(rateLimiter RequestRateLimiter, routerName string, allowedPerMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := rateLimiter.Allow(
			c.Request.Context(),
			routerName+":"+c.ClientIP(),
			redis_rate.PerMinute(allowedPerMin),
		)
		if err != nil {
			log.Errorf("rate limiter [%s]: %s", routerName, err)
			abortWithError(c, http.StatusInternalServerError, "rate limit internal error")
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds()+1)))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %f seconds", res.RetryAfter.Seconds()))
	}
}

func RequestMetrics(metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		metricsManager.GaugeRequests.Inc()
		defer func(begin time.Time) {
			metricsManager.GaugeRequests.Dec()
			metricsManager.HistRequestDuration.Observe(time.Since(begin).Seconds())
		}(time.Now())

		c.Next()

		metricsManager.CounterRequests.With(
			prometheus.Labels{
				"method": c.Request.Method,
				"status": strconv.Itoa(c.Writer.Status()),
			},
		).Inc()
	}
}

// Recovery turns a handler panic into a 500 and counts it.
func Recovery(metricsManager *metrics.Manager) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		metricsManager.CounterHandleRequestPanic.Inc()
		log.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	})
}
