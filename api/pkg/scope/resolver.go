// Package scope resolves what a caller is allowed to see: the workspace
// set and, for project-scoped resource types, the per-workspace project
// visibility.
package scope

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"

	"github.com/lookouthq/lookout/api/pkg/identity"
	"github.com/lookouthq/lookout/api/pkg/registry"
	"github.com/lookouthq/lookout/api/pkg/store"
	"github.com/lookouthq/lookout/api/pkg/types"
)

type ResolverOptions struct {
	// RoleTTL bounds how long a revoked or granted domain-admin role can
	// stay stale.
	RoleTTL time.Duration
	// WorkspaceTTL caches the caller's reachable workspace set.
	WorkspaceTTL time.Duration
	// ProjectTTL caches per-workspace project visibility.
	ProjectTTL time.Duration
}

func (o *ResolverOptions) withDefaults() ResolverOptions {
	opts := *o
	if opts.RoleTTL == 0 {
		opts.RoleTTL = 10 * time.Second
	}
	if opts.WorkspaceTTL == 0 {
		opts.WorkspaceTTL = 180 * time.Second
	}
	if opts.ProjectTTL == 0 {
		opts.ProjectTTL = 180 * time.Second
	}
	return opts
}

type Resolver struct {
	identity identity.Client
	store    store.Store
	options  ResolverOptions

	// entries are idempotent pure functions of their key, so concurrent
	// populate races are harmless
	cache *ristretto.Cache[string, any]
}

func NewResolver(identityClient identity.Client, s store.Store, options ResolverOptions) (*Resolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1e5,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scope cache: %w", err)
	}

	return &Resolver{
		identity: identityClient,
		store:    s,
		options:  options.withDefaults(),
		cache:    cache,
	}, nil
}

// Wait blocks until buffered cache writes are applied. Tests use it to
// make cache population deterministic.
func (r *Resolver) Wait() {
	r.cache.Wait()
}

// Resolve determines the caller's visibility for one request. An empty
// scope is a valid "caller sees nothing in the workspace dimension"
// state, the request still proceeds to filter building with the injected
// fallback.
func (r *Resolver) Resolve(ctx context.Context, caller *types.Caller, requestedWorkspaces []string, allWorkspaces bool, descriptor *registry.Descriptor) (*types.AccessScope, error) {
	isAdmin, err := r.isDomainAdmin(ctx, caller)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return &types.AccessScope{Unrestricted: true}, nil
	}

	// below here everything is keyed by user, app callers fall back to
	// the workspace/projects the auth layer injected
	if caller.UserID == "" {
		return &types.AccessScope{}, nil
	}

	var reachable []string
	switch {
	case allWorkspaces:
		reachable, err = r.reachableWorkspaces(ctx, caller.DomainID, caller.UserID)
		if err != nil {
			return nil, err
		}
	case len(requestedWorkspaces) > 0:
		all, err := r.reachableWorkspaces(ctx, caller.DomainID, caller.UserID)
		if err != nil {
			return nil, err
		}
		// over-asking is not a violation: requested workspaces the caller
		// cannot access are silently dropped
		reachable = intersect(requestedWorkspaces, all)
	default:
		return &types.AccessScope{}, nil
	}

	if len(reachable) == 0 {
		return &types.AccessScope{}, nil
	}

	if !descriptor.ProjectScoped {
		return &types.AccessScope{Workspaces: reachable}, nil
	}

	return r.splitByRole(ctx, caller, reachable)
}

// splitByRole divides the reachable set into workspaces with full
// visibility (owner role) and workspaces where visibility is limited to
// public projects plus private projects the caller is a member of.
func (r *Resolver) splitByRole(ctx context.Context, caller *types.Caller, workspaceIDs []string) (*types.AccessScope, error) {
	bindings, err := r.roleBindings(ctx, caller.DomainID, caller.UserID, workspaceIDs)
	if err != nil {
		return nil, err
	}

	roleByWorkspace := map[string]types.RoleType{}
	for _, binding := range bindings {
		if binding.WorkspaceID != "" {
			roleByWorkspace[binding.WorkspaceID] = binding.RoleType
		}
	}

	scope := &types.AccessScope{}
	for _, workspaceID := range workspaceIDs {
		if roleByWorkspace[workspaceID] == types.RoleWorkspaceOwner {
			scope.OwnerWorkspaces = append(scope.OwnerWorkspaces, workspaceID)
			continue
		}
		projectIDs, err := r.visibleProjects(ctx, caller.DomainID, workspaceID, caller.UserID)
		if err != nil {
			return nil, err
		}
		if scope.MemberProjects == nil {
			scope.MemberProjects = map[string][]string{}
		}
		scope.MemberProjects[workspaceID] = projectIDs
	}
	sort.Strings(scope.OwnerWorkspaces)
	return scope, nil
}

func (r *Resolver) isDomainAdmin(ctx context.Context, caller *types.Caller) (bool, error) {
	if caller.RoleType == types.RoleDomainAdmin {
		return true, nil
	}
	if caller.RoleType != "" || caller.UserID == "" {
		return false, nil
	}

	// transport did not assert a role, look the domain binding up
	key := fmt.Sprintf("search:admin:%s:%s", caller.DomainID, caller.UserID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(bool), nil
	}

	bindings, err := r.identity.GetRoleBindings(ctx, caller.DomainID, caller.UserID, nil, types.RoleDomainAdmin)
	if err != nil {
		return false, err
	}
	isAdmin := len(bindings) > 0

	r.cache.SetWithTTL(key, isAdmin, 1, r.options.RoleTTL)
	return isAdmin, nil
}

func (r *Resolver) reachableWorkspaces(ctx context.Context, domainID, userID string) ([]string, error) {
	key := fmt.Sprintf("search:workspaces:%s:%s", domainID, userID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]string), nil
	}

	workspaces, err := r.identity.GetWorkspaces(ctx, domainID, userID)
	if err != nil {
		return nil, err
	}
	workspaceIDs := make([]string, 0, len(workspaces))
	for _, workspace := range workspaces {
		workspaceIDs = append(workspaceIDs, workspace.WorkspaceID)
	}
	sort.Strings(workspaceIDs)

	r.cache.SetWithTTL(key, workspaceIDs, 1, r.options.WorkspaceTTL)
	return workspaceIDs, nil
}

func (r *Resolver) roleBindings(ctx context.Context, domainID, userID string, workspaceIDs []string) ([]types.RoleBinding, error) {
	key := fmt.Sprintf("search:bindings:%s:%s:%s", domainID, userID, strings.Join(workspaceIDs, ","))
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]types.RoleBinding), nil
	}

	bindings, err := r.identity.GetRoleBindings(ctx, domainID, userID, workspaceIDs, "")
	if err != nil {
		return nil, err
	}

	r.cache.SetWithTTL(key, bindings, 1, r.options.RoleTTL)
	return bindings, nil
}

// visibleProjects is what a non-owner member sees inside one workspace:
// public projects plus private projects with explicit membership.
func (r *Resolver) visibleProjects(ctx context.Context, domainID, workspaceID, userID string) ([]string, error) {
	key := fmt.Sprintf("search:projects:%s:%s:%s", domainID, workspaceID, userID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]string), nil
	}

	publicProjects, err := r.store.ListPublicProjects(ctx, domainID, workspaceID)
	if err != nil {
		return nil, err
	}
	privateProjects, err := r.store.ListPrivateProjects(ctx, domainID, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	projectIDs := append(publicProjects, privateProjects...)
	sort.Strings(projectIDs)

	log.Debug().
		Str("domain_id", domainID).
		Str("workspace_id", workspaceID).
		Str("user_id", userID).
		Int("projects", len(projectIDs)).
		Msg("resolved member project visibility")

	r.cache.SetWithTTL(key, projectIDs, 1, r.options.ProjectTTL)
	return projectIDs, nil
}

func intersect(requested, reachable []string) []string {
	allowed := map[string]bool{}
	for _, workspaceID := range reachable {
		allowed[workspaceID] = true
	}
	var out []string
	for _, workspaceID := range requested {
		if allowed[workspaceID] {
			out = append(out, workspaceID)
		}
	}
	sort.Strings(out)
	return out
}
