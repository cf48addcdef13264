package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lookouthq/lookout/api/pkg/system"
	"github.com/lookouthq/lookout/api/pkg/types"
)

// resourceSearch godoc
// @Summary Search resources by keyword
// @Description Search one resource type for a keyword, page by page
// @Tags search
// @Param request body types.SearchRequest true "Search request"
// @Success 200 {object} types.SearchResponse
// @Router /api/v1/resource/search [post]
// @Security BearerAuth
func (apiServer *LookoutAPIServer) resourceSearch(_ http.ResponseWriter, r *http.Request) (*types.SearchResponse, *system.HTTPError) {
	caller := getRequestCaller(r)
	if caller == nil {
		return nil, system.NewHTTPError401("no caller on request")
	}

	var req types.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, system.NewHTTPError400("invalid request body")
	}
	if req.ResourceType == "" {
		return nil, system.NewHTTPError400("resource_type is required")
	}

	response, err := apiServer.Search.Search(r.Context(), caller, &req)
	if err != nil {
		return nil, searchError(r, err, caller, &req)
	}
	return response, nil
}

// searchError maps the engine's error taxonomy onto HTTP statuses. A bad
// cursor is a permission violation, not a parse error; dependency
// failures are retryable and never downgraded to an empty result.
func searchError(r *http.Request, err error, caller *types.Caller, req *types.SearchRequest) *system.HTTPError {
	logger := log.Ctx(r.Context())

	var invalidType *types.InvalidResourceTypeError
	if errors.As(err, &invalidType) {
		return system.NewHTTPError400(invalidType.Error())
	}

	var invalidCursor *types.InvalidCursorError
	if errors.As(err, &invalidCursor) {
		logger.Warn().
			Str("domain_id", caller.DomainID).
			Str("user_id", caller.UserID).
			Str("resource_type", req.ResourceType).
			Str("reason", invalidCursor.Reason).
			Msg("rejected search cursor")
		return system.NewHTTPError403("invalid cursor")
	}

	var dependency *types.DependencyError
	if errors.As(err, &dependency) {
		logger.Error().Err(err).Str("dependency", dependency.Dependency).Msg("search dependency failed")
		return system.NewHTTPError503(dependency.Error())
	}

	logger.Error().Err(err).Str("resource_type", req.ResourceType).Msg("search failed")
	return system.NewHTTPError500(err.Error())
}

type resourceTypesResponse struct {
	ResourceTypes []string `json:"resource_types"`
}

// listResourceTypes godoc
// @Summary List searchable resource types
// @Tags search
// @Success 200 {object} resourceTypesResponse
// @Router /api/v1/resource/types [get]
// @Security BearerAuth
func (apiServer *LookoutAPIServer) listResourceTypes(_ http.ResponseWriter, r *http.Request) (*resourceTypesResponse, *system.HTTPError) {
	if getRequestCaller(r) == nil {
		return nil, system.NewHTTPError401("no caller on request")
	}
	return &resourceTypesResponse{
		ResourceTypes: apiServer.Registry.ListKnownTypes(),
	}, nil
}
