package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/lookouthq/lookout/api/pkg/config"
	"github.com/lookouthq/lookout/api/pkg/identity"
	"github.com/lookouthq/lookout/api/pkg/store"
	"github.com/lookouthq/lookout/api/pkg/system"
	"github.com/lookouthq/lookout/api/pkg/types"
)

const testSecret = "test-secret"

type SearchHandlersSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	identity *identity.MockClient
	store    *store.MockStore

	server *LookoutAPIServer
	router http.Handler
}

func TestSearchHandlersSuite(t *testing.T) {
	suite.Run(t, new(SearchHandlersSuite))
}

func (suite *SearchHandlersSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.identity = identity.NewMockClient(suite.ctrl)
	suite.store = store.NewMockStore(suite.ctrl)

	cfg := &config.ServerConfig{}
	cfg.Auth.TokenSecret = testSecret
	cfg.Auth.CursorTTL = time.Hour

	server, err := NewServer(cfg, suite.store, suite.identity)
	suite.Require().NoError(err)
	suite.server = server
	suite.router = server.router()
}

func (suite *SearchHandlersSuite) adminToken() string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, callerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		DomainID:  "dom-1",
		UserID:    "admin-1",
		OwnerType: string(types.OwnerTypeUser),
		RoleType:  string(types.RoleDomainAdmin),
	})
	signed, err := token.SignedString([]byte(testSecret))
	suite.Require().NoError(err)
	return signed
}

func (suite *SearchHandlersSuite) searchRequest(body any, token string) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resource/search", bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	suite.router.ServeHTTP(recorder, req)
	return recorder
}

func (suite *SearchHandlersSuite) TestSearchWithoutTokenIsUnauthorized() {
	recorder := suite.searchRequest(types.SearchRequest{ResourceType: "identity.Workspace"}, "")
	suite.Equal(http.StatusUnauthorized, recorder.Code)
}

func (suite *SearchHandlersSuite) TestSearchWithForgedTokenIsUnauthorized() {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, callerClaims{DomainID: "dom-1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	suite.Require().NoError(err)

	recorder := suite.searchRequest(types.SearchRequest{ResourceType: "identity.Workspace"}, signed)
	suite.Equal(http.StatusUnauthorized, recorder.Code)
}

func (suite *SearchHandlersSuite) TestSearchHappyPath() {
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.Workspace", gomock.Any(), int64(10), int64(0)).
		Return([]types.ResourceRecord{{
			"workspace_id": "ws-1",
			"name":         "team-alpha",
			"domain_id":    "dom-1",
		}}, nil)

	recorder := suite.searchRequest(types.SearchRequest{
		ResourceType: "identity.Workspace",
		Keyword:      "alpha",
	}, suite.adminToken())
	suite.Require().Equal(http.StatusOK, recorder.Code)

	var response types.SearchResponse
	suite.Require().NoError(json.NewDecoder(recorder.Body).Decode(&response))
	suite.Require().Len(response.Results, 1)
	suite.Equal("ws-1", response.Results[0].ResourceID)
	suite.Equal("team-alpha", response.Results[0].Name)
	suite.Empty(response.NextToken)
}

func (suite *SearchHandlersSuite) TestSearchUnknownTypeIsBadRequest() {
	recorder := suite.searchRequest(types.SearchRequest{
		ResourceType: "identity.Nope",
	}, suite.adminToken())

	suite.Equal(http.StatusBadRequest, recorder.Code)
	// the enumerated valid types are part of the error contract
	suite.Contains(recorder.Body.String(), "identity.Workspace")
}

func (suite *SearchHandlersSuite) TestSearchMissingResourceTypeIsBadRequest() {
	recorder := suite.searchRequest(types.SearchRequest{}, suite.adminToken())
	suite.Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *SearchHandlersSuite) TestSearchForgedCursorIsForbidden() {
	recorder := suite.searchRequest(types.SearchRequest{
		ResourceType: "identity.Workspace",
		NextToken:    "forged-token",
	}, suite.adminToken())

	suite.Equal(http.StatusForbidden, recorder.Code)
}

func (suite *SearchHandlersSuite) TestSearchDependencyFailureIsUnavailable() {
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.Workspace", gomock.Any(), int64(10), int64(0)).
		Return(nil, &types.DependencyError{Dependency: "datastore"})

	recorder := suite.searchRequest(types.SearchRequest{
		ResourceType: "identity.Workspace",
	}, suite.adminToken())

	suite.Equal(http.StatusServiceUnavailable, recorder.Code)
}

func (suite *SearchHandlersSuite) TestListResourceTypes() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resource/types", nil)
	req.Header.Set("Authorization", "Bearer "+suite.adminToken())

	recorder := httptest.NewRecorder()
	suite.router.ServeHTTP(recorder, req)
	suite.Require().Equal(http.StatusOK, recorder.Code)

	var response resourceTypesResponse
	suite.Require().NoError(json.NewDecoder(recorder.Body).Decode(&response))
	suite.Contains(response.ResourceTypes, "identity.ServiceAccount")
	suite.Len(response.ResourceTypes, 6)
}

// Every response carries a request id; a caller-supplied one is echoed
// back unchanged so ids stay stable across service hops.
func (suite *SearchHandlersSuite) TestRequestIDHeader() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	recorder := httptest.NewRecorder()
	suite.router.ServeHTTP(recorder, req)

	generated := recorder.Header().Get("X-Request-ID")
	suite.Require().NotEmpty(generated)
	suite.True(strings.HasPrefix(generated, system.RequestPrefix))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set("X-Request-ID", "req_upstream")
	recorder = httptest.NewRecorder()
	suite.router.ServeHTTP(recorder, req)

	suite.Equal("req_upstream", recorder.Header().Get("X-Request-ID"))
}

func (suite *SearchHandlersSuite) TestHealthzNeedsNoAuth() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)

	recorder := httptest.NewRecorder()
	suite.router.ServeHTTP(recorder, req)
	suite.Equal(http.StatusOK, recorder.Code)
}
