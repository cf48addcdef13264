// Package identity is the client for the identity service: workspace
// reachability, role bindings and workspace lifecycle lookups. Failures
// surface as retryable dependency errors, never as "no access".
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/lookouthq/lookout/api/pkg/types"
)

//go:generate mockgen -source $GOFILE -destination identity_mocks.go -package $GOPACKAGE

type Client interface {
	// GetWorkspaces lists the workspaces the user can reach in the domain.
	GetWorkspaces(ctx context.Context, domainID, userID string) ([]types.Workspace, error)

	// GetRoleBindings lists the user's role bindings, optionally narrowed
	// to a workspace set and a role type. Domain-level bindings come back
	// with an empty workspace id.
	GetRoleBindings(ctx context.Context, domainID, userID string, workspaceIDs []string, roleType types.RoleType) ([]types.RoleBinding, error)
}

type ClientOptions struct {
	BaseURL string
	Token   string
}

type HTTPClient struct {
	options ClientOptions
	client  *retryablehttp.Client
}

func NewHTTPClient(options ClientOptions) *HTTPClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &HTTPClient{
		options: options,
		client:  client,
	}
}

type workspacesRequest struct {
	DomainID string `json:"domain_id"`
	UserID   string `json:"user_id"`
}

type workspacesResponse struct {
	Results []types.Workspace `json:"results"`
}

func (c *HTTPClient) GetWorkspaces(ctx context.Context, domainID, userID string) ([]types.Workspace, error) {
	var response workspacesResponse
	err := c.post(ctx, "/user-profile/get-workspaces", &workspacesRequest{
		DomainID: domainID,
		UserID:   userID,
	}, &response)
	if err != nil {
		return nil, err
	}
	return response.Results, nil
}

type roleBindingsRequest struct {
	DomainID     string         `json:"domain_id"`
	UserID       string         `json:"user_id"`
	WorkspaceIDs []string       `json:"workspace_ids,omitempty"`
	RoleType     types.RoleType `json:"role_type,omitempty"`
}

type roleBindingsResponse struct {
	Results []types.RoleBinding `json:"results"`
}

func (c *HTTPClient) GetRoleBindings(ctx context.Context, domainID, userID string, workspaceIDs []string, roleType types.RoleType) ([]types.RoleBinding, error) {
	var response roleBindingsResponse
	err := c.post(ctx, "/role-binding/list", &roleBindingsRequest{
		DomainID:     domainID,
		UserID:       userID,
		WorkspaceIDs: workspaceIDs,
		RoleType:     roleType,
	}, &response)
	if err != nil {
		return nil, err
	}
	return response.Results, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling identity request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building identity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.options.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.options.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &types.DependencyError{Dependency: "identity", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("identity call failed")
		return &types.DependencyError{
			Dependency: "identity",
			Err:        fmt.Errorf("%s returned status %d", path, resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &types.DependencyError{Dependency: "identity", Err: err}
	}
	return nil
}
