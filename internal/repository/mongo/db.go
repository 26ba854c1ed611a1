package mongo

import (
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection used by the app.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName))
	EnsureMuscleGroupIndexes(ctx, db.Collection(muscleGroupCollectionName))
	EnsureTrainingIndexes(ctx, db.Collection(trainingCollectionName))
	EnsureTemplateIndexes(ctx, db.Collection(templateCollectionName))
	EnsureBodyMetricIndexes(ctx, db.Collection(bodyMetricCollectionName))
	EnsureFollowIndexes(ctx, db.Collection(followCollectionName))
	log.Debugln("index creation process completed")
}

// mongoTransactor implements repository.Transactor with client sessions.
// Transactions need a replica set; a standalone server rejects them.
type mongoTransactor struct {
	client *mongo.Client
}

func NewMongoTransactor(client *mongo.Client) repository.Transactor {
	return &mongoTransactor{client: client}
}

// WithTransaction runs fn inside a session transaction. Repository calls must
// use the ctx passed to fn to take part in it.
func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
