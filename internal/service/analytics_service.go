package service

import (
	"context"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/analytics"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/tracing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
)

// DateRange bounds an analytics query. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ExerciseProgress holds the per-day series of one exercise.
type ExerciseProgress struct {
	ExerciseID primitive.ObjectID
	Formula    analytics.Formula
	Weight     map[time.Time]float64
	Volume     map[time.Time]float64
	OneRepMax  map[time.Time]float64
}

// muscleGroupLookup builds an analytics.ExerciseLookup for the given
// exercises. cache.MuscleGroupCache implements it.
type muscleGroupLookup interface {
	Lookup(ctx context.Context, repo repository.ExerciseRepository, ids []primitive.ObjectID) (analytics.ExerciseLookup, error)
}

// AnalyticsService reads a user's history and runs it through the analytics
// engine. Every query about another user requires an approved follow.
type AnalyticsService interface {
	OneRepMax(weight float64, reps int, formula string) (float64, error)
	ExerciseProgress(ctx context.Context, viewerID, ownerID, exerciseID primitive.ObjectID, period DateRange, formula string) (*ExerciseProgress, error)
	TrainingFrequency(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]int, error)
	TotalVolume(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]float64, error)
	Streak(ctx context.Context, viewerID, ownerID primitive.ObjectID) (int, error)
	ExercisePR(ctx context.Context, viewerID, ownerID, exerciseID primitive.ObjectID) (*analytics.PersonalRecord, error)
	AllPRs(ctx context.Context, viewerID, ownerID primitive.ObjectID) ([]analytics.PersonalRecord, error)
	MuscleGroupVolume(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[primitive.ObjectID]float64, error)
	MuscleGroupFrequency(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[primitive.ObjectID]int, error)
	BodyWeightProgress(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]float64, error)
	BMIProgress(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]float64, error)
	Summary(ctx context.Context, viewerID, ownerID primitive.ObjectID) (analytics.Summary, error)
}

type analyticsService struct {
	trainingRepo   repository.TrainingRepository
	metricRepo     repository.BodyMetricRepository
	exerciseRepo   repository.ExerciseRepository
	lookups        muscleGroupLookup
	follows        FollowService
	metrics        *metrics.Manager
	defaultFormula analytics.Formula
	now            func() time.Time
}

// NewAnalyticsService fails when defaultFormula is not a known formula.
func NewAnalyticsService(
	trainingRepo repository.TrainingRepository,
	metricRepo repository.BodyMetricRepository,
	exerciseRepo repository.ExerciseRepository,
	lookups muscleGroupLookup,
	follows FollowService,
	metricsManager *metrics.Manager,
	defaultFormula string,
) (AnalyticsService, error) {
	formula, err := analytics.ParseFormula(defaultFormula)
	if err != nil {
		return nil, fmt.Errorf("default formula: %w", err)
	}
	return &analyticsService{
		trainingRepo:   trainingRepo,
		metricRepo:     metricRepo,
		exerciseRepo:   exerciseRepo,
		lookups:        lookups,
		follows:        follows,
		metrics:        metricsManager,
		defaultFormula: formula,
		now:            utcNow,
	}, nil
}

func (s *analyticsService) formula(name string) string {
	if name == "" {
		return string(s.defaultFormula)
	}
	return name
}

func (s *analyticsService) OneRepMax(weight float64, reps int, formula string) (float64, error) {
	s.countQuery("one_rep_max")
	return analytics.OneRepMax(weight, reps, s.formula(formula))
}

func (s *analyticsService) ExerciseProgress(ctx context.Context, viewerID, ownerID, exerciseID primitive.ObjectID, period DateRange, formula string) (progress *ExerciseProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsService.exerciseProgress")
	span.SetAttributes(attribute.String("exercise", exerciseID.Hex()))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	f, err := analytics.ParseFormula(s.formula(formula))
	if err != nil {
		return nil, err
	}
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, period, "exercise_progress")
	if err != nil {
		return nil, err
	}

	setsByDate := analytics.SetsByDate(trainings, exerciseID)
	oneRepMax, err := analytics.OneRepMaxProgress(setsByDate, string(f))
	if err != nil {
		return nil, err
	}
	return &ExerciseProgress{
		ExerciseID: exerciseID,
		Formula:    f,
		Weight:     analytics.WeightProgress(setsByDate),
		Volume:     analytics.VolumeProgress(setsByDate),
		OneRepMax:  oneRepMax,
	}, nil
}

func (s *analyticsService) TrainingFrequency(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]int, error) {
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, period, "frequency")
	if err != nil {
		return nil, err
	}
	return analytics.Frequency(trainings), nil
}

func (s *analyticsService) TotalVolume(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]float64, error) {
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, period, "total_volume")
	if err != nil {
		return nil, err
	}
	return analytics.TotalVolumeByDate(trainings), nil
}

// Streak is evaluated against the current day on every call.
func (s *analyticsService) Streak(ctx context.Context, viewerID, ownerID primitive.ObjectID) (int, error) {
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, DateRange{}, "streak")
	if err != nil {
		return 0, err
	}
	return analytics.Streak(trainings, s.now()), nil
}

// ExercisePR returns nil without error when the exercise was never completed.
func (s *analyticsService) ExercisePR(ctx context.Context, viewerID, ownerID, exerciseID primitive.ObjectID) (*analytics.PersonalRecord, error) {
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, DateRange{}, "exercise_pr")
	if err != nil {
		return nil, err
	}
	return analytics.ExercisePR(trainings, exerciseID), nil
}

func (s *analyticsService) AllPRs(ctx context.Context, viewerID, ownerID primitive.ObjectID) ([]analytics.PersonalRecord, error) {
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, DateRange{}, "all_prs")
	if err != nil {
		return nil, err
	}
	return analytics.AllPRs(trainings), nil
}

func (s *analyticsService) MuscleGroupVolume(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (volumes map[primitive.ObjectID]float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsService.muscleGroupVolume")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	trainings, lookup, err := s.trainingsWithLookup(ctx, viewerID, ownerID, period, "muscle_group_volume")
	if err != nil {
		return nil, err
	}
	return analytics.MuscleGroupVolume(trainings, lookup), nil
}

func (s *analyticsService) MuscleGroupFrequency(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (freq map[primitive.ObjectID]int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsService.muscleGroupFrequency")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	trainings, lookup, err := s.trainingsWithLookup(ctx, viewerID, ownerID, period, "muscle_group_frequency")
	if err != nil {
		return nil, err
	}
	return analytics.MuscleGroupFrequency(trainings, lookup), nil
}

func (s *analyticsService) BodyWeightProgress(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]float64, error) {
	observations, err := s.bodyMetrics(ctx, viewerID, ownerID, period, "body_weight")
	if err != nil {
		return nil, err
	}
	return analytics.WeightProgressFromMetrics(observations), nil
}

func (s *analyticsService) BMIProgress(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange) (map[time.Time]float64, error) {
	observations, err := s.bodyMetrics(ctx, viewerID, ownerID, period, "bmi")
	if err != nil {
		return nil, err
	}
	return analytics.BMIProgressFromMetrics(observations), nil
}

func (s *analyticsService) Summary(ctx context.Context, viewerID, ownerID primitive.ObjectID) (summary analytics.Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyticsService.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, DateRange{}, "summary")
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(trainings, s.now()), nil
}

func (s *analyticsService) checkAccess(ctx context.Context, viewerID, ownerID primitive.ObjectID) error {
	ok, err := s.follows.CanView(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// completedTrainings loads the owner's completed trainings after the access
// check. The engine filters by status again, so this only trims the read.
func (s *analyticsService) completedTrainings(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange, query string) ([]domain.Training, error) {
	if err := s.checkAccess(ctx, viewerID, ownerID); err != nil {
		return nil, err
	}
	s.countQuery(query)

	completed := domain.TrainingStatusCompleted
	trainings, err := s.trainingRepo.List(ctx, ownerID, repository.TrainingFilter{
		From:   period.From,
		To:     period.To,
		Status: &completed,
	})
	if err != nil {
		return nil, fmt.Errorf("load trainings: %w", err)
	}
	return trainings, nil
}

func (s *analyticsService) trainingsWithLookup(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange, query string) ([]domain.Training, analytics.ExerciseLookup, error) {
	trainings, err := s.completedTrainings(ctx, viewerID, ownerID, period, query)
	if err != nil {
		return nil, nil, err
	}
	lookup, err := s.lookups.Lookup(ctx, s.exerciseRepo, trainingsExerciseIDs(trainings))
	if err != nil {
		return nil, nil, err
	}
	return trainings, lookup, nil
}

func (s *analyticsService) bodyMetrics(ctx context.Context, viewerID, ownerID primitive.ObjectID, period DateRange, query string) ([]domain.UserBodyMetric, error) {
	if err := s.checkAccess(ctx, viewerID, ownerID); err != nil {
		return nil, err
	}
	s.countQuery(query)
	return s.metricRepo.ListByUser(ctx, ownerID, period.From, period.To)
}

func (s *analyticsService) countQuery(query string) {
	if s.metrics != nil {
		s.metrics.CounterAnalyticsQueries.WithLabelValues(query).Inc()
	}
}
