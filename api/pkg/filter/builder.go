package filter

import (
	"regexp"
	"sort"

	"github.com/lookouthq/lookout/api/pkg/types"
)

// BuildParams carries everything the builder needs so it stays a pure
// function of its inputs; the result is what gets snapshotted into the
// pagination cursor.
type BuildParams struct {
	DomainID string
	Scope    *types.AccessScope

	// Injected single-workspace fallback from the auth layer, used only
	// when the resolved scope carries no workspace dimension.
	WorkspaceID string
	ProjectIDs  []string

	// Descriptor-driven inputs.
	SearchFields  []string
	StaticFilters []Expr
	ProjectScoped bool

	Keyword string
}

// Build composes the normalized filter tree: domain clause, scope clause
// by precedence, descriptor static filters, then the keyword clause. The
// domain clause is the multi-tenancy boundary and is never omitted.
func Build(p BuildParams) Expr {
	clauses := []Expr{Eq("domain_id", p.DomainID)}

	if scope := scopeClause(p); scope != nil {
		clauses = append(clauses, scope)
	}

	clauses = append(clauses, p.StaticFilters...)

	if keyword := keywordClause(p.SearchFields, p.Keyword); keyword != nil {
		clauses = append(clauses, keyword)
	}

	return And(clauses...)
}

func scopeClause(p BuildParams) Expr {
	scope := p.Scope
	if scope == nil || scope.Unrestricted {
		return nil
	}

	if len(scope.OwnerWorkspaces) > 0 || len(scope.MemberProjects) > 0 {
		alternatives := []Expr{}
		if len(scope.OwnerWorkspaces) > 0 {
			alternatives = append(alternatives, In("workspace_id", scope.OwnerWorkspaces))
		}
		// map iteration order is random, the cursor snapshot must not be
		workspaceIDs := make([]string, 0, len(scope.MemberProjects))
		for workspaceID := range scope.MemberProjects {
			workspaceIDs = append(workspaceIDs, workspaceID)
		}
		sort.Strings(workspaceIDs)
		for _, workspaceID := range workspaceIDs {
			alternatives = append(alternatives, And(
				Eq("workspace_id", workspaceID),
				In("project_id", scope.MemberProjects[workspaceID]),
			))
		}
		if len(alternatives) == 1 {
			return alternatives[0]
		}
		return Or(alternatives...)
	}

	if len(scope.Workspaces) > 0 {
		return In("workspace_id", scope.Workspaces)
	}

	if p.WorkspaceID != "" {
		if p.ProjectScoped && len(p.ProjectIDs) > 0 {
			return And(
				Eq("workspace_id", p.WorkspaceID),
				In("project_id", p.ProjectIDs),
			)
		}
		return Eq("workspace_id", p.WorkspaceID)
	}

	return nil
}

// keywordClause ORs a case-insensitive substring test over the type's
// searchable fields. The keyword is quoted, so it is a literal substring
// match, not a caller-supplied regex. An empty keyword restricts
// nothing.
func keywordClause(searchFields []string, keyword string) Expr {
	if keyword == "" || len(searchFields) == 0 {
		return nil
	}
	pattern := regexp.QuoteMeta(keyword)
	if len(searchFields) == 1 {
		return Regex(searchFields[0], pattern)
	}
	predicates := make([]Expr, 0, len(searchFields))
	for _, field := range searchFields {
		predicates = append(predicates, Regex(field, pattern))
	}
	return Or(predicates...)
}
