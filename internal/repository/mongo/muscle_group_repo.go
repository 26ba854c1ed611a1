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

const muscleGroupCollectionName = "muscle_groups"

type mongoMuscleGroupRepository struct {
	collection *mongo.Collection
}

func NewMongoMuscleGroupRepository(db *mongo.Database) repository.MuscleGroupRepository {
	return &mongoMuscleGroupRepository{
		collection: db.Collection(muscleGroupCollectionName),
	}
}

func (r *mongoMuscleGroupRepository) Create(ctx context.Context, group *domain.MuscleGroup) (primitive.ObjectID, error) {
	if group.Name == "" {
		return primitive.NilObjectID, errors.New("muscle group name is required")
	}
	group.ID = primitive.NewObjectID()
	group.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, group); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return group.ID, nil
}

func (r *mongoMuscleGroupRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MuscleGroup, error) {
	var group domain.MuscleGroup
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *mongoMuscleGroupRepository) List(ctx context.Context) ([]domain.MuscleGroup, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := make([]domain.MuscleGroup, 0)
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func EnsureMuscleGroupIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
