package types

// OwnerType says what kind of principal issued the request.
type OwnerType string

const (
	OwnerTypeUser OwnerType = "USER"
	OwnerTypeApp  OwnerType = "APP"
)

// RoleType is the caller's role within a domain or workspace.
type RoleType string

const (
	RoleDomainAdmin     RoleType = "DOMAIN_ADMIN"
	RoleWorkspaceOwner  RoleType = "WORKSPACE_OWNER"
	RoleWorkspaceMember RoleType = "WORKSPACE_MEMBER"
)

// WorkspaceState is the lifecycle state of a workspace.
type WorkspaceState string

const (
	WorkspaceStateEnabled  WorkspaceState = "ENABLED"
	WorkspaceStateDisabled WorkspaceState = "DISABLED"
	WorkspaceStateDeleted  WorkspaceState = "DELETED"
)

// Caller is the per-request identity, built once by the auth middleware
// and never mutated below it. Token is the raw bearer token; the cursor
// codec mixes it into the cursor signing key so a continuation token is
// only usable by the session that minted it.
type Caller struct {
	DomainID    string    `json:"domain_id"`
	UserID      string    `json:"user_id,omitempty"`
	OwnerType   OwnerType `json:"owner_type"`
	RoleType    RoleType  `json:"role_type,omitempty"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	ProjectIDs  []string  `json:"project_ids,omitempty"`
	Token       string    `json:"-"`
}

// AccessScope is the resolved visibility for one request.
//
// A workspace id appears in at most one of OwnerWorkspaces and
// MemberProjects. Unrestricted means domain admin: no workspace clause is
// emitted at all, so the scope stays correct as workspaces are added.
type AccessScope struct {
	Unrestricted bool
	// Workspaces is the plain reachable set, used when the resource type
	// has no project dimension.
	Workspaces []string
	// OwnerWorkspaces grant full, non-project-filtered visibility.
	OwnerWorkspaces []string
	// MemberProjects limits each workspace to the listed project ids.
	MemberProjects map[string][]string
}

// Empty reports whether the scope carries no workspace dimension at all,
// which is a valid "caller sees nothing here" state, not an error.
func (s *AccessScope) Empty() bool {
	return !s.Unrestricted && len(s.Workspaces) == 0 &&
		len(s.OwnerWorkspaces) == 0 && len(s.MemberProjects) == 0
}

// ResourceRecord is a raw datastore document. Fetched fresh per page,
// shaped by the renderer and discarded with the response.
type ResourceRecord map[string]any

// SearchRequest is the inbound search operation. Limit distinguishes
// absent (server default) from an explicit zero, which is legal and
// always yields an empty page.
type SearchRequest struct {
	ResourceType  string   `json:"resource_type"`
	Keyword       string   `json:"keyword,omitempty"`
	Limit         *int     `json:"limit,omitempty"`
	Workspaces    []string `json:"workspaces,omitempty"`
	AllWorkspaces bool     `json:"all_workspaces,omitempty"`
	NextToken     string   `json:"next_token,omitempty"`
}

// SearchResult is the caller-facing projection of one matching record.
type SearchResult struct {
	ResourceID  string            `json:"resource_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	DomainID    string            `json:"domain_id"`
	WorkspaceID string            `json:"workspace_id,omitempty"`
	ProjectID   string            `json:"project_id,omitempty"`
}

type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	NextToken string          `json:"next_token,omitempty"`
}

// Workspace as reported by the identity service.
type Workspace struct {
	WorkspaceID string         `json:"workspace_id"`
	Name        string         `json:"name,omitempty"`
	State       WorkspaceState `json:"state,omitempty"`
}

// RoleBinding links a user to a role, optionally within one workspace.
// Domain-level bindings have an empty WorkspaceID.
type RoleBinding struct {
	WorkspaceID string   `json:"workspace_id,omitempty"`
	RoleType    RoleType `json:"role_type"`
}
