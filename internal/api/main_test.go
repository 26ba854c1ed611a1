package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/cache"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

const testJWTSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type testRequestRateLimiter struct {
	// key to remaining requests
	Limits map[string]int
}

func (l *testRequestRateLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	res := &redis_rate.Result{RetryAfter: 10 * time.Second}

	remaining, ok := l.Limits[key]
	if !ok || remaining == 0 {
		return res, nil
	}

	res.Allowed = remaining
	res.RetryAfter = 0
	l.Limits[key]--
	return res, nil
}

// testServer is the full router over in-memory repositories.
type testServer struct {
	router   *gin.Engine
	users    repository.UserRepository
	metrics  *metrics.Manager
	registry *prometheus.Registry
	limiter  *testRequestRateLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserRepository()
	trainings := memory.NewTrainingRepository()
	templates := memory.NewTemplateRepository()
	exercises := memory.NewExerciseRepository()
	groups := memory.NewMuscleGroupRepository()
	bodyMetrics := memory.NewBodyMetricRepository()
	follows := memory.NewFollowRepository()

	metricsManager, registry := metrics.NewTestManagerAndRegistry()
	lookupCache := cache.NewMuscleGroupCache(1, time.Minute, metricsManager)

	followService := service.NewFollowService(follows, users)
	analyticsService, err := service.NewAnalyticsService(trainings, bodyMetrics, exercises, lookupCache, followService, metricsManager, "epley")
	require.NoError(t, err)

	s := &testServer{
		router:   gin.New(),
		users:    users,
		metrics:  metricsManager,
		registry: registry,
		limiter:  &testRequestRateLimiter{Limits: map[string]int{}},
	}
	SetupRoutes(s.router, RouteDeps{
		JWTSecret:        testJWTSecret,
		TrainingService:  service.NewTrainingService(trainings, templates, exercises, followService, metricsManager),
		TemplateService:  service.NewTemplateService(templates),
		ExerciseService:  service.NewExerciseService(exercises, groups, lookupCache),
		ProfileService:   service.NewProfileService(users, bodyMetrics, memory.NewTransactor(), followService),
		FollowService:    followService,
		AnalyticsService: analyticsService,
		ExportService:    service.NewExportService(trainings, nil, 0),
		Metrics:          metricsManager,
		Gatherer:         registry,
		RateLimiter:      s.limiter,
		ShareRatePerMin:  10,
	})
	return s
}

func (s *testServer) newUser(t *testing.T) primitive.ObjectID {
	t.Helper()
	id, err := s.users.Create(context.Background(), &domain.User{
		Email:    gofakeit.Email(),
		Username: gofakeit.Username(),
	})
	require.NoError(t, err)
	return id
}

func signToken(t *testing.T, secret, uid string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// do sends a request as userID; a nil userID sends no Authorization header.
func (s *testServer) do(t *testing.T, method, path string, userID *primitive.ObjectID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, userID.Hex(), time.Now().Add(time.Hour)))
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// createExercise adds a custom exercise owned by userID and returns its id.
func (s *testServer) createExercise(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/v1/exercises", &userID, ExerciseRequest{Name: gofakeit.Word()})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[ExerciseResponse](t, rr).ID
}
