package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/lookouthq/lookout/api/pkg/types"
)

//go:generate mockgen -source $GOFILE -destination store_mocks.go -package $GOPACKAGE

// Store is the datastore collaborator. Filters arrive already serialized
// to the datastore's native syntax; the store only maps resource types to
// collections and runs bounded reads.
type Store interface {
	// Find runs a skip/limit query against the collection mapped from
	// resourceType. No snapshot isolation: concurrent writes between
	// pages can shift the skip window.
	Find(ctx context.Context, resourceType string, filter bson.D, limit, skip int64) ([]types.ResourceRecord, error)

	// ListPublicProjects returns the ids of projects anyone in the
	// workspace can see.
	ListPublicProjects(ctx context.Context, domainID, workspaceID string) ([]string, error)

	// ListPrivateProjects returns the ids of private projects where the
	// user is an explicit member.
	ListPrivateProjects(ctx context.Context, domainID, workspaceID, userID string) ([]string, error)
}
