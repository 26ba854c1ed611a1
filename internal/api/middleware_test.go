package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)
	userID := s.newUser(t)

	testCases := []struct {
		name               string
		authHeader         string
		expectedStatusCode int
	}{
		{
			name:               "MissingHeader",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "NotBearer",
			authHeader:         "Basic dXNlcjpwYXNz",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "WrongSecret",
			authHeader:         "Bearer " + signToken(t, "other-secret", userID.Hex(), time.Now().Add(time.Hour)),
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Expired",
			authHeader:         "Bearer " + signToken(t, testJWTSecret, userID.Hex(), time.Now().Add(-time.Minute)),
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "MalformedUserID",
			authHeader:         "Bearer " + signToken(t, testJWTSecret, "bob", time.Now().Add(time.Hour)),
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Valid",
			authHeader:         "Bearer " + signToken(t, testJWTSecret, userID.Hex(), time.Now().Add(time.Hour)),
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedStatusCode, rr.Code, rr.Body.String())
		})
	}
}

func TestRateLimit_SharedRoute(t *testing.T) {
	s := newTestServer(t)
	s.limiter.Limits[sharedRouterName+":192.0.2.1"] = 2

	// unknown tokens still count against the limit
	for i := 0; i < 2; i++ {
		rr := s.do(t, http.MethodGet, "/api/v1/shared/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	rr := s.do(t, http.MethodGet, "/api/v1/shared/nope", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "11", rr.Header().Get("Retry-After"))
}

func TestRequestMetricsAndPing(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/ping", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodGet, "/api/v1/trainings/"+primitive.NewObjectID().Hex(), nil, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.With(prometheus.Labels{"method": "GET", "status": "200"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterRequests.With(prometheus.Labels{"method": "GET", "status": "401"})))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.GaugeRequests))

	rr = s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "workout_tracker_test_server_request_duration_seconds_count"), rr.Body.String())
}

func TestRecovery_CountsPanics(t *testing.T) {
	s := newTestServer(t)
	s.router.GET("/boom", func(*gin.Context) { panic("boom") })

	rr := s.do(t, http.MethodGet, "/boom", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CounterHandleRequestPanic))
}

func TestRateLimit_LimiterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := NewMockRequestRateLimiter(ctrl)
	limiter.EXPECT().
		Allow(gomock.Any(), "shared:192.0.2.1", redis_rate.PerMinute(3)).
		Return(nil, errors.New("redis down"))

	router := gin.New()
	router.GET("/limited", RateLimit(limiter, "shared", 3), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
