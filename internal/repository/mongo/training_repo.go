// internal/repository/mongo/training_repo.go
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

const trainingCollectionName = "trainings"

// mongoTrainingRepository implements repository.TrainingRepository.
// A training and all its implementations and sets live in one document, so
// every write of the aggregate is atomic.
type mongoTrainingRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingRepository creates a new Training repository.
func NewMongoTrainingRepository(db *mongo.Database) repository.TrainingRepository {
	return &mongoTrainingRepository{
		collection: db.Collection(trainingCollectionName),
	}
}

// Create inserts a new training with its implementations and sets.
func (r *mongoTrainingRepository) Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error) {
	if training.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("training requires userId")
	}
	if training.ID.IsZero() {
		training.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if training.CreatedAt.IsZero() {
		training.CreatedAt = now
	}
	training.UpdatedAt = now
	training.AssignIDs()

	result, err := r.collection.InsertOne(ctx, newTrainingDocument(training))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted training ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single training by its ID.
func (r *mongoTrainingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByShareToken retrieves the training a share token points to.
func (r *mongoTrainingRepository) GetByShareToken(ctx context.Context, token string) (*domain.Training, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"shareToken": token})
}

func (r *mongoTrainingRepository) findOne(ctx context.Context, filter bson.M) (*domain.Training, error) {
	var doc trainingDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// List retrieves a user's trainings, newest first.
func (r *mongoTrainingRepository) List(ctx context.Context, userID primitive.ObjectID, f repository.TrainingFilter) ([]domain.Training, error) {
	filter := bson.M{"userId": userID}
	dateRange := bson.M{}
	if f.From != nil {
		dateRange["$gte"] = *f.From
	}
	if f.To != nil {
		dateRange["$lte"] = *f.To
	}
	if len(dateRange) > 0 {
		filter["dateTime"] = dateRange
	}
	if f.Status != nil {
		filter["status"] = string(*f.Status)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "dateTime", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []trainingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	trainings := make([]domain.Training, 0, len(docs))
	for _, doc := range docs {
		t, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		trainings = append(trainings, *t)
	}
	return trainings, nil
}

// Update replaces the whole stored aggregate. Implementations that are not in
// training are gone afterwards. The share token is not touched.
func (r *mongoTrainingRepository) Update(ctx context.Context, training *domain.Training) error {
	if training.ID == primitive.NilObjectID {
		return errors.New("training ID is required for update")
	}
	training.AssignIDs()

	update, err := aggregateUpdate(newTrainingDocument(training))
	if err != nil {
		return err
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": training.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// aggregateUpdate turns doc into a $set of every field but _id and shareToken.
// Optional fields missing from doc are unset.
func aggregateUpdate(doc *trainingDocument) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_id")
	delete(fields, "shareToken")

	update := bson.M{"$set": fields}
	unset := bson.M{}
	for _, key := range []string{"templateId", "duration", "notes"} {
		if _, ok := fields[key]; !ok {
			unset[key] = ""
		}
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

// SetShareTokenIfAbsent writes token only into a training without one, then
// reads back whichever token is stored.
func (r *mongoTrainingRepository) SetShareTokenIfAbsent(ctx context.Context, id primitive.ObjectID, token string, now time.Time) (string, error) {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "shareToken": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"shareToken": token, "updatedAt": now}},
	)
	if err != nil {
		return "", err
	}

	var stored struct {
		ShareToken *string `bson:"shareToken"`
	}
	findOptions := options.FindOne().SetProjection(bson.M{"shareToken": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, findOptions).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	if stored.ShareToken == nil {
		return "", errors.New("share token missing after update")
	}
	return *stored.ShareToken, nil
}

// ClearShareToken unsets the token; the sparse unique index ignores the
// document afterwards.
func (r *mongoTrainingRepository) ClearShareToken(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$unset": bson.M{"shareToken": ""}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a training, ensuring it belongs to the user.
func (r *mongoTrainingRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Training not found OR not owned by this user.
		return repository.ErrNotFound
	}
	return nil
}

// GetLastImplementation finds the latest training of the user that contains
// the exercise and returns that implementation.
func (r *mongoTrainingRepository) GetLastImplementation(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Implementation, error) {
	filter := bson.M{"userId": userID, "implementations.exerciseId": exerciseID}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "dateTime", Value: -1}})

	var doc trainingDocument
	if err := r.collection.FindOne(ctx, filter, findOptions).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	training, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	for i := range training.Implementations {
		if training.Implementations[i].ExerciseID == exerciseID {
			return &training.Implementations[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// EnsureTrainingIndexes creates necessary indexes. Call during startup.
func EnsureTrainingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Listing a user's history by date
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "dateTime", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "implementations.exerciseId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "shareToken", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
