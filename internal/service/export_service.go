package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/analytics"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportContentType = "application/json"

// TrainingExport is the document written to object storage.
type TrainingExport struct {
	UserID      primitive.ObjectID `json:"userId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Summary     analytics.Summary  `json:"summary"`
	Trainings   []domain.Training  `json:"trainings"`
}

type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportService interface {
	ExportTrainings(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error)
}

type exportService struct {
	trainingRepo repository.TrainingRepository
	fileStorage  storage.FileStorage // nil when S3 is disabled
	urlExpiry    time.Duration
	now          func() time.Time
}

func NewExportService(trainingRepo repository.TrainingRepository, fileStorage storage.FileStorage, urlExpiry time.Duration) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		trainingRepo: trainingRepo,
		fileStorage:  fileStorage,
		urlExpiry:    urlExpiry,
		now:          utcNow,
	}
}

// ExportTrainings uploads every training of the user, plus a summary, as one
// JSON document and returns a temporary download link to it.
func (s *exportService) ExportTrainings(ctx context.Context, userID primitive.ObjectID) (result *ExportResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "exportService.exportTrainings")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.fileStorage == nil {
		return nil, ErrExportUnavailable
	}

	trainings, err := s.trainingRepo.List(ctx, userID, repository.TrainingFilter{})
	if err != nil {
		return nil, fmt.Errorf("load trainings: %w", err)
	}

	now := s.now()
	body, err := json.Marshal(TrainingExport{
		UserID:      userID,
		GeneratedAt: now,
		Summary:     analytics.Summarize(trainings, now),
		Trainings:   trainings,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", userID.Hex(), uuid.New().String())
	if err := s.fileStorage.PutObject(ctx, objectKey, exportContentType, body); err != nil {
		return nil, err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, s.urlExpiry)
	if err != nil {
		// the object is useless without a link
		if delErr := s.fileStorage.DeleteObject(ctx, objectKey); delErr != nil {
			log.Warnf("failed to clean up export %s: %s", objectKey, delErr)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":      userID.Hex(),
		"trainings": len(trainings),
		"bytes":     len(body),
	}).Info("trainings exported")

	return &ExportResult{
		ObjectKey:   objectKey,
		DownloadURL: url,
		ExpiresAt:   now.Add(s.urlExpiry),
	}, nil
}
