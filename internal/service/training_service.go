package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/tracing"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
)

const shareTokenBytes = 32

type TrainingService interface {
	CreateTraining(ctx context.Context, userID primitive.ObjectID, input TrainingInput) (*domain.Training, error)
	GetTraining(ctx context.Context, viewerID, trainingID primitive.ObjectID) (*domain.Training, error)
	ListTrainings(ctx context.Context, viewerID, ownerID primitive.ObjectID, filter repository.TrainingFilter) ([]domain.Training, error)
	UpdateTraining(ctx context.Context, userID, trainingID primitive.ObjectID, input TrainingUpdateInput) (*domain.Training, error)
	DeleteTraining(ctx context.Context, userID, trainingID primitive.ObjectID) error
	CreateFromTemplate(ctx context.Context, userID, templateID primitive.ObjectID, dateTime time.Time) (*domain.Training, error)

	GenerateShareToken(ctx context.Context, userID, trainingID primitive.ObjectID) (string, error)
	RemoveShareToken(ctx context.Context, userID, trainingID primitive.ObjectID) error
	GetSharedTraining(ctx context.Context, token string) (*domain.Training, error)

	GetLastImplementation(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Implementation, error)
}

type trainingService struct {
	trainingRepo repository.TrainingRepository
	templateRepo repository.TemplateRepository
	exerciseRepo repository.ExerciseRepository
	follows      FollowService
	metrics      *metrics.Manager
	now          func() time.Time
}

func NewTrainingService(
	trainingRepo repository.TrainingRepository,
	templateRepo repository.TemplateRepository,
	exerciseRepo repository.ExerciseRepository,
	follows FollowService,
	metricsManager *metrics.Manager,
) TrainingService {
	return &trainingService{
		trainingRepo: trainingRepo,
		templateRepo: templateRepo,
		exerciseRepo: exerciseRepo,
		follows:      follows,
		metrics:      metricsManager,
		now:          utcNow,
	}
}

func (s *trainingService) CreateTraining(ctx context.Context, userID primitive.ObjectID, input TrainingInput) (training *domain.Training, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	status := domain.TrainingStatusPlanned
	if input.Status != "" {
		if status, err = domain.ParseTrainingStatus(input.Status); err != nil {
			return nil, err
		}
	}
	duration, err := domain.OptionalDuration(input.Duration)
	if err != nil {
		return nil, err
	}
	impls, err := buildImplementations(input.Implementations)
	if err != nil {
		return nil, err
	}
	if err := s.checkExercises(ctx, userID, impls); err != nil {
		return nil, err
	}

	now := s.now()
	training = &domain.Training{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		DateTime:        input.DateTime.UTC(),
		Duration:        duration,
		Notes:           input.Notes,
		Status:          status,
		Implementations: impls,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	training.AssignIDs()
	if err := training.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.trainingRepo.Create(ctx, training); err != nil {
		return nil, fmt.Errorf("create training: %w", err)
	}
	s.countWrite("create")

	log.WithFields(log.Fields{
		"user":     userID.Hex(),
		"training": training.ID.Hex(),
		"impls":    len(training.Implementations),
	}).Debug("training created")
	return training, nil
}

// GetTraining returns the training when viewerID owns it or follows its owner.
// Otherwise it reports ErrTrainingNotFound, so the training's existence is not
// revealed.
func (s *trainingService) GetTraining(ctx context.Context, viewerID, trainingID primitive.ObjectID) (training *domain.Training, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	training, err = s.load(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	ok, err := s.follows.CanView(ctx, viewerID, training.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTrainingNotFound
	}
	return training, nil
}

func (s *trainingService) ListTrainings(ctx context.Context, viewerID, ownerID primitive.ObjectID, filter repository.TrainingFilter) (trainings []domain.Training, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ok, err := s.follows.CanView(ctx, viewerID, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return s.trainingRepo.List(ctx, ownerID, filter)
}

func (s *trainingService) UpdateTraining(ctx context.Context, userID, trainingID primitive.ObjectID, input TrainingUpdateInput) (training *domain.Training, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	update, err := input.toUpdate()
	if err != nil {
		return nil, err
	}
	training, err = s.loadOwned(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}
	if update.Implementations != nil {
		if err := s.checkExercises(ctx, userID, *update.Implementations); err != nil {
			return nil, err
		}
	}

	training.Apply(update, s.now())
	if err := training.Validate(); err != nil {
		return nil, err
	}
	if err := s.trainingRepo.Update(ctx, training); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, fmt.Errorf("update training: %w", err)
	}
	s.countWrite("update")
	return training, nil
}

func (s *trainingService) DeleteTraining(ctx context.Context, userID, trainingID primitive.ObjectID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.loadOwned(ctx, userID, trainingID); err != nil {
		return err
	}
	if err := s.trainingRepo.Delete(ctx, trainingID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return err
	}
	s.countWrite("delete")
	return nil
}

func (s *trainingService) CreateFromTemplate(ctx context.Context, userID, templateID primitive.ObjectID, dateTime time.Time) (training *domain.Training, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.createFromTemplate")
	span.SetAttributes(attribute.String("template", templateID.Hex()))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !tpl.VisibleTo(userID) {
		return nil, ErrTemplateNotFound
	}

	training, err = tpl.Materialize(userID, dateTime, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.trainingRepo.Create(ctx, training); err != nil {
		return nil, fmt.Errorf("create training from template: %w", err)
	}
	s.countWrite("create_from_template")
	return training, nil
}

// GenerateShareToken returns the training's share token, creating one when
// none exists yet. An existing token is never rotated.
func (s *trainingService) GenerateShareToken(ctx context.Context, userID, trainingID primitive.ObjectID) (token string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.generateShareToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	training, err := s.loadOwned(ctx, userID, trainingID)
	if err != nil {
		return "", err
	}
	if training.ShareToken != nil {
		return *training.ShareToken, nil
	}

	token, err = newShareToken()
	if err != nil {
		return "", err
	}
	stored, err := s.trainingRepo.SetShareTokenIfAbsent(ctx, trainingID, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTrainingNotFound
		}
		return "", fmt.Errorf("store share token: %w", err)
	}
	// a concurrent call stored its token first
	if stored != token {
		return stored, nil
	}
	s.countWrite("share")
	return token, nil
}

func (s *trainingService) RemoveShareToken(ctx context.Context, userID, trainingID primitive.ObjectID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.removeShareToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	training, err := s.loadOwned(ctx, userID, trainingID)
	if err != nil {
		return err
	}
	if training.ShareToken == nil {
		return nil
	}
	if err := s.trainingRepo.ClearShareToken(ctx, trainingID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return fmt.Errorf("remove share token: %w", err)
	}
	s.countWrite("unshare")
	return nil
}

// GetSharedTraining resolves a share token without any ownership or follow
// check.
func (s *trainingService) GetSharedTraining(ctx context.Context, token string) (training *domain.Training, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.getShared")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return nil, ErrShareNotFound
	}
	training, err = s.trainingRepo.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterSharedViews.Inc()
	}
	return training, nil
}

// GetLastImplementation returns the user's most recent implementation of the
// exercise, or nil when the user never did it.
func (s *trainingService) GetLastImplementation(ctx context.Context, userID, exerciseID primitive.ObjectID) (impl *domain.Implementation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trainingService.lastImplementation")
	span.SetAttributes(attribute.String("exercise", exerciseID.Hex()))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	impl, err = s.trainingRepo.GetLastImplementation(ctx, userID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return impl, nil
}

func (s *trainingService) load(ctx context.Context, trainingID primitive.ObjectID) (*domain.Training, error) {
	training, err := s.trainingRepo.GetByID(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}
	return training, nil
}

func (s *trainingService) loadOwned(ctx context.Context, userID, trainingID primitive.ObjectID) (*domain.Training, error) {
	training, err := s.load(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	if !training.OwnedBy(userID) {
		return nil, ErrTrainingAccessDenied
	}
	return training, nil
}

// checkExercises rejects implementations of exercises the user cannot see.
func (s *trainingService) checkExercises(ctx context.Context, userID primitive.ObjectID, impls []domain.Implementation) error {
	ids := exerciseIDs(impls)
	if len(ids) == 0 {
		return nil
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}
	visible := make(map[primitive.ObjectID]bool, len(exercises))
	for i := range exercises {
		visible[exercises[i].ID] = exercises[i].VisibleTo(userID)
	}
	for _, id := range ids {
		if !visible[id] {
			return &domain.ValidationError{Field: "exercise_id", Reason: fmt.Sprintf("unknown exercise %s", id.Hex())}
		}
	}
	return nil
}

func (s *trainingService) countWrite(op string) {
	if s.metrics != nil {
		s.metrics.CounterTrainingWrites.WithLabelValues(op).Inc()
	}
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
