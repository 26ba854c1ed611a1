// internal/repository/mongo/template_repo.go
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

const templateCollectionName = "training_templates"

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new TrainingTemplate repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new template together with its nested implementations.
func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.TrainingTemplate) (primitive.ObjectID, error) {
	if tpl.Name == "" {
		return primitive.NilObjectID, errors.New("template name is required")
	}
	if tpl.ID.IsZero() {
		tpl.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	tpl.AssignIDs()

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single template by its ID.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingTemplate, error) {
	var tpl domain.TrainingTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// ListVisible retrieves the user's templates plus the system ones (no userId).
func (r *mongoTemplateRepository) ListVisible(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingTemplate, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": userID},
		bson.M{"userId": bson.M{"$exists": false}},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := make([]domain.TrainingTemplate, 0)
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update replaces the stored template, nested implementations included.
func (r *mongoTemplateRepository) Update(ctx context.Context, tpl *domain.TrainingTemplate) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}
	tpl.UpdatedAt = time.Now().UTC()
	tpl.AssignIDs()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tpl.ID}, tpl)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a template owned by userID. System templates never match.
func (r *mongoTemplateRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTemplateIndexes creates necessary indexes for the templates collection.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
