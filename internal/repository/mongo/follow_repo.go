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

const followCollectionName = "follows"

// mongoFollowRepository implements repository.FollowRepository
type mongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new follow repository.
func NewMongoFollowRepository(db *mongo.Database) repository.FollowRepository {
	return &mongoFollowRepository{
		collection: db.Collection(followCollectionName),
	}
}

// Create inserts a follow request. A pair of users has at most one.
func (r *mongoFollowRepository) Create(ctx context.Context, follow *domain.Follow) (primitive.ObjectID, error) {
	if follow.FollowerID == primitive.NilObjectID || follow.FollowingID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("follow requires followerId and followingId")
	}
	follow.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	follow.CreatedAt = now
	follow.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return follow.ID, nil
}

// Get retrieves the follow between two users.
func (r *mongoFollowRepository) Get(ctx context.Context, followerID, followingID primitive.ObjectID) (*domain.Follow, error) {
	var follow domain.Follow
	filter := bson.M{"followerId": followerID, "followingId": followingID}
	if err := r.collection.FindOne(ctx, filter).Decode(&follow); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &follow, nil
}

// Update stores a status change.
func (r *mongoFollowRepository) Update(ctx context.Context, follow *domain.Follow) error {
	update := bson.M{
		"$set": bson.M{
			"status":    follow.Status,
			"updatedAt": follow.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": follow.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the follow between two users.
func (r *mongoFollowRepository) Delete(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"followerId": followerID, "followingId": followingID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListFollowers retrieves follows pointing at userID.
func (r *mongoFollowRepository) ListFollowers(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error) {
	return r.list(ctx, bson.M{"followingId": userID}, status)
}

// ListFollowing retrieves follows made by userID.
func (r *mongoFollowRepository) ListFollowing(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error) {
	return r.list(ctx, bson.M{"followerId": userID}, status)
}

func (r *mongoFollowRepository) list(ctx context.Context, filter bson.M, status *domain.FollowStatus) ([]domain.Follow, error) {
	if status != nil {
		filter["status"] = *status
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	follows := make([]domain.Follow, 0)
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

// EnsureFollowIndexes creates necessary indexes for the follows collection.
func EnsureFollowIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "followerId", Value: 1}, {Key: "followingId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "followingId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
