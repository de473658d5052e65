package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoRepositoryManager struct {
	client *mongo.Client
	users  *users.MongoRepository
}

// NewMongoRepositoryManager connects to uri and pings the primary. ctx bounds
// both steps.
func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo connect: %v", common.ErrStorageUnavailable, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: mongo ping: %v", common.ErrStorageUnavailable, err)
	}

	return newMongoRepositoryManager(client, client.Database(database)), nil
}

func newMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{client: client, users: users.NewMongoRepository(db)}
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

// RunMigrations creates the unique indexes on the users collection.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.users.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
