package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bodyMetricCollectionName = "body_metrics"

// mongoBodyMetricRepository implements repository.BodyMetricRepository
type mongoBodyMetricRepository struct {
	collection *mongo.Collection
}

// NewMongoBodyMetricRepository creates a new body metric repository.
func NewMongoBodyMetricRepository(db *mongo.Database) repository.BodyMetricRepository {
	return &mongoBodyMetricRepository{
		collection: db.Collection(bodyMetricCollectionName),
	}
}

// Create inserts a metric. Pass a transaction context to tie it to the user
// cache update.
func (r *mongoBodyMetricRepository) Create(ctx context.Context, metric *domain.UserBodyMetric) (primitive.ObjectID, error) {
	if metric.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("body metric requires userId")
	}
	if metric.ID.IsZero() {
		metric.ID = primitive.NewObjectID()
	}

	result, err := r.collection.InsertOne(ctx, metric)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted body metric ID")
	}
	return insertedID, nil
}

// ListByUser retrieves a user's metrics oldest first.
func (r *mongoBodyMetricRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserBodyMetric, error) {
	filter := bson.M{"userId": userID}
	dateRange := bson.M{}
	if from != nil {
		dateRange["$gte"] = *from
	}
	if to != nil {
		dateRange["$lte"] = *to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	metrics := make([]domain.UserBodyMetric, 0)
	if err = cursor.All(ctx, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// GetLatest retrieves the most recent metric of a user.
func (r *mongoBodyMetricRepository) GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.UserBodyMetric, error) {
	var metric domain.UserBodyMetric
	findOptions := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, findOptions).Decode(&metric)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &metric, nil
}

// EnsureBodyMetricIndexes creates necessary indexes for the metrics collection.
func EnsureBodyMetricIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
