// Package search is the query-scoping, cursor-pagination and
// response-projection engine behind the resource search operation.
package search

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/lookouthq/lookout/api/pkg/cursor"
	"github.com/lookouthq/lookout/api/pkg/filter"
	"github.com/lookouthq/lookout/api/pkg/registry"
	"github.com/lookouthq/lookout/api/pkg/render"
	"github.com/lookouthq/lookout/api/pkg/scope"
	"github.com/lookouthq/lookout/api/pkg/store"
	"github.com/lookouthq/lookout/api/pkg/types"
)

// MaxRequestedWorkspaces caps how many workspace ids one request may
// name explicitly.
const MaxRequestedWorkspaces = 5

type ServiceOptions struct {
	DefaultLimit int
	MaxLimit     int
}

func (o *ServiceOptions) withDefaults() ServiceOptions {
	opts := *o
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit == 0 {
		opts.MaxLimit = 100
	}
	return opts
}

type Service struct {
	registry *registry.Registry
	scopes   *scope.Resolver
	store    store.Store
	cursors  *cursor.Codec
	options  ServiceOptions
}

func NewService(reg *registry.Registry, scopes *scope.Resolver, s store.Store, cursors *cursor.Codec, options ServiceOptions) *Service {
	return &Service{
		registry: reg,
		scopes:   scopes,
		store:    s,
		cursors:  cursors,
		options:  options.withDefaults(),
	}
}

// Search runs one page of a keyword search. A present cursor fully
// supersedes the request's keyword and scope: pagination is a snapshot
// of the first page's authorization decision, deliberately not
// re-evaluated per page.
func (s *Service) Search(ctx context.Context, caller *types.Caller, req *types.SearchRequest) (*types.SearchResponse, error) {
	descriptor, err := s.registry.Describe(req.ResourceType)
	if err != nil {
		return nil, err
	}

	if len(req.Workspaces) > MaxRequestedWorkspaces {
		req.Workspaces = req.Workspaces[:MaxRequestedWorkspaces]
	}

	limit := s.clampLimit(req.Limit)
	page := 0
	var tree filter.Expr

	if req.NextToken != "" {
		state, err := s.cursors.Decode(caller.Token, req.ResourceType, req.NextToken)
		if err != nil {
			return nil, err
		}
		tree = state.Filter
		limit = state.Limit
		page = state.Page
	} else {
		accessScope, err := s.scopes.Resolve(ctx, caller, req.Workspaces, req.AllWorkspaces, descriptor)
		if err != nil {
			return nil, err
		}
		tree = filter.Build(filter.BuildParams{
			DomainID:      caller.DomainID,
			Scope:         accessScope,
			WorkspaceID:   caller.WorkspaceID,
			ProjectIDs:    caller.ProjectIDs,
			SearchFields:  descriptor.SearchFields,
			StaticFilters: descriptor.StaticFilters,
			ProjectScoped: descriptor.ProjectScoped,
			Keyword:       req.Keyword,
		})
	}

	records, err := s.fetchPage(ctx, req.ResourceType, tree, limit, page)
	if err != nil {
		return nil, err
	}

	results, err := render.Records(records, descriptor)
	if err != nil {
		return nil, err
	}

	response := &types.SearchResponse{Results: results}

	// a full page means there may be more; a short page is the sole
	// end-of-pagination signal
	if limit > 0 && len(records) == limit {
		token, err := s.cursors.Encode(caller.Token, &cursor.State{
			ResourceType: req.ResourceType,
			Filter:       tree,
			Limit:        limit,
			Page:         page + 1,
		})
		if err != nil {
			return nil, err
		}
		response.NextToken = token
	}

	log.Debug().
		Str("domain_id", caller.DomainID).
		Str("resource_type", req.ResourceType).
		Int("page", page).
		Int("results", len(results)).
		Bool("has_next", response.NextToken != "").
		Msg("resource search page")

	return response, nil
}

// fetchPage runs the bounded skip/limit read. There is no snapshot
// isolation between pages: concurrent writes can shift the skip window,
// which is accepted skip-based pagination drift.
func (s *Service) fetchPage(ctx context.Context, resourceType string, tree filter.Expr, limit, page int) ([]types.ResourceRecord, error) {
	if limit == 0 {
		return nil, nil
	}
	records, err := s.store.Find(ctx, resourceType, tree.BSON(), int64(limit), int64(page*limit))
	if err != nil {
		var dependency *types.DependencyError
		if errors.As(err, &dependency) {
			return nil, err
		}
		return nil, &types.DependencyError{Dependency: "datastore", Err: err}
	}
	return records, nil
}

func (s *Service) clampLimit(limit *int) int {
	if limit == nil || *limit < 0 {
		return s.options.DefaultLimit
	}
	if *limit > s.options.MaxLimit {
		return s.options.MaxLimit
	}
	return *limit
}
