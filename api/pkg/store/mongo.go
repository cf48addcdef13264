package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lookouthq/lookout/api/pkg/types"
)

type StoreOptions struct {
	URI string
	// Prefix is prepended to every database name, e.g. "dev2" makes the
	// identity service's database "dev2identity".
	Prefix      string
	MaxPoolSize uint64
}

// MongoStore is the only Store implementation. The client is constructed
// once at startup with a bounded pool and torn down on shutdown; there is
// no lazily-initialized singleton.
type MongoStore struct {
	options StoreOptions
	client  *mongo.Client
}

func NewMongoStore(ctx context.Context, opts StoreOptions) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(opts.URI)
	if opts.MaxPoolSize > 0 {
		clientOptions = clientOptions.SetMaxPoolSize(opts.MaxPoolSize)
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to datastore: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging datastore: %w", err)
	}

	log.Info().Str("prefix", opts.Prefix).Msg("connected to datastore")

	return &MongoStore{
		options: opts,
		client:  client,
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Find(ctx context.Context, resourceType string, filter bson.D, limit, skip int64) ([]types.ResourceRecord, error) {
	database, collection := CollectionFor(resourceType, s.options.Prefix)

	findOptions := options.Find().SetLimit(limit).SetSkip(skip)
	cursor, err := s.client.Database(database).Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, &types.DependencyError{Dependency: "datastore", Err: err}
	}
	defer cursor.Close(ctx)

	var records []types.ResourceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, &types.DependencyError{Dependency: "datastore", Err: err}
	}

	log.Debug().
		Str("database", database).
		Str("collection", collection).
		Int64("limit", limit).
		Int64("skip", skip).
		Int("records", len(records)).
		Msg("datastore find")

	return records, nil
}

func (s *MongoStore) ListPublicProjects(ctx context.Context, domainID, workspaceID string) ([]string, error) {
	return s.listProjectIDs(ctx, bson.D{
		{Key: "domain_id", Value: domainID},
		{Key: "workspace_id", Value: workspaceID},
		{Key: "project_type", Value: "PUBLIC"},
	})
}

func (s *MongoStore) ListPrivateProjects(ctx context.Context, domainID, workspaceID, userID string) ([]string, error) {
	return s.listProjectIDs(ctx, bson.D{
		{Key: "domain_id", Value: domainID},
		{Key: "workspace_id", Value: workspaceID},
		{Key: "project_type", Value: "PRIVATE"},
		{Key: "users", Value: userID},
	})
}

func (s *MongoStore) listProjectIDs(ctx context.Context, filter bson.D) ([]string, error) {
	database, collection := CollectionFor("identity.Project", s.options.Prefix)

	projection := bson.D{{Key: "project_id", Value: 1}}
	cursor, err := s.client.Database(database).Collection(collection).Find(ctx, filter,
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, &types.DependencyError{Dependency: "datastore", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ProjectID string `bson:"project_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &types.DependencyError{Dependency: "datastore", Err: err}
	}

	projectIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		projectIDs = append(projectIDs, doc.ProjectID)
	}
	return projectIDs, nil
}

// CollectionFor maps a resource type like "inventory.CloudServiceType"
// to its database ("<prefix>inventory") and collection
// ("cloud_service_type").
func CollectionFor(resourceType, prefix string) (database, collection string) {
	service, resource, _ := strings.Cut(resourceType, ".")
	return prefix + strings.ToLower(service), snakeCase(resource)
}

func snakeCase(name string) string {
	var out strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out.WriteByte('_')
			}
			out.WriteRune(r - 'A' + 'a')
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}
