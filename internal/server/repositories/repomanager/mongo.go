package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scams/internal/server/repositories/identities"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when the URI does not name a database.
const DefaultMongoDatabase = "scams"

// MongoRepositoryManager vends MongoDB-backed repositories.
type MongoRepositoryManager struct {
	client *mongo.Client
	repo   *identities.MongoRepository
}

// mongoConnect is a seam for testing mongo.Connect.
var mongoConnect = func(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// NewMongoRepositoryManager connects to uri and binds the identities
// collection of the database named in the URI path.
func NewMongoRepositoryManager(ctx context.Context, uri string) (*MongoRepositoryManager, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mongodb uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = DefaultMongoDatabase
	}

	client, err := mongoConnect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newMongoRepositoryManager(client, client.Database(dbName)), nil
}

func newMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client: client,
		repo:   identities.NewMongoRepository(db.Collection(identities.CollectionName)),
	}
}

// Prepare creates the collection indexes.
func (m *MongoRepositoryManager) Prepare(ctx context.Context) error {
	return m.repo.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Identities() identities.Repository {
	return m.repo
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
