package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/mock/gomock"

	"github.com/lookouthq/lookout/api/pkg/cursor"
	"github.com/lookouthq/lookout/api/pkg/filter"
	"github.com/lookouthq/lookout/api/pkg/identity"
	"github.com/lookouthq/lookout/api/pkg/registry"
	"github.com/lookouthq/lookout/api/pkg/scope"
	"github.com/lookouthq/lookout/api/pkg/store"
	"github.com/lookouthq/lookout/api/pkg/types"
)

type SearchServiceSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	identity *identity.MockClient
	store    *store.MockStore

	ctx     context.Context
	service *Service
}

func TestSearchServiceSuite(t *testing.T) {
	suite.Run(t, new(SearchServiceSuite))
}

func (suite *SearchServiceSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.identity = identity.NewMockClient(suite.ctrl)
	suite.store = store.NewMockStore(suite.ctrl)
	suite.ctx = context.Background()

	reg, err := registry.Default()
	suite.Require().NoError(err)

	resolver, err := scope.NewResolver(suite.identity, suite.store, scope.ResolverOptions{})
	suite.Require().NoError(err)

	codec := cursor.NewCodec("test-secret", time.Hour)

	suite.service = NewService(reg, resolver, suite.store, codec, ServiceOptions{})
}

func (suite *SearchServiceSuite) adminCaller() *types.Caller {
	return &types.Caller{
		DomainID:  "dom-1",
		UserID:    "admin-1",
		OwnerType: types.OwnerTypeUser,
		RoleType:  types.RoleDomainAdmin,
		Token:     "admin-token",
	}
}

func serviceAccount(i int) types.ResourceRecord {
	return types.ResourceRecord{
		"service_account_id": fmt.Sprintf("sa-%d", i),
		"name":               fmt.Sprintf("prod-%d", i),
		"data":               map[string]any{"account_id": fmt.Sprintf("acct-%d", i)},
		"domain_id":          "dom-1",
		"workspace_id":       "ws-1",
		"project_id":         "proj-1",
	}
}

func intPtr(i int) *int {
	return &i
}

func (suite *SearchServiceSuite) TestUnknownResourceType() {
	_, err := suite.service.Search(suite.ctx, suite.adminCaller(), &types.SearchRequest{
		ResourceType: "identity.Nope",
	})

	var invalidType *types.InvalidResourceTypeError
	suite.Require().ErrorAs(err, &invalidType)
	suite.Contains(invalidType.ValidTypes, "identity.Workspace")
}

// limit=2 over 5 matches: two full pages with cursors, then a short page
// with none. Concatenating the pages equals one big fetch.
func (suite *SearchServiceSuite) TestPaginationFixpoint() {
	all := []types.ResourceRecord{
		serviceAccount(0), serviceAccount(1), serviceAccount(2),
		serviceAccount(3), serviceAccount(4),
	}

	pageFor := func(skip int64) []types.ResourceRecord {
		end := skip + 2
		if end > int64(len(all)) {
			end = int64(len(all))
		}
		return all[skip:end]
	}

	var snapshot bson.D
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", gomock.Any(), int64(2), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, f bson.D, _ int64, skip int64) ([]types.ResourceRecord, error) {
			if snapshot == nil {
				snapshot = f
			} else {
				// later pages re-apply the first page's filter verbatim
				suite.Equal(snapshot, f)
			}
			return pageFor(skip), nil
		}).
		Times(3)

	caller := suite.adminCaller()
	request := &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Keyword:      "prod",
		Limit:        intPtr(2),
	}

	var collected []string

	first, err := suite.service.Search(suite.ctx, caller, request)
	suite.Require().NoError(err)
	suite.Len(first.Results, 2)
	suite.Require().NotEmpty(first.NextToken)
	for _, result := range first.Results {
		collected = append(collected, result.ResourceID)
	}

	second, err := suite.service.Search(suite.ctx, caller, &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		NextToken:    first.NextToken,
	})
	suite.Require().NoError(err)
	suite.Len(second.Results, 2)
	suite.Require().NotEmpty(second.NextToken)
	for _, result := range second.Results {
		collected = append(collected, result.ResourceID)
	}

	third, err := suite.service.Search(suite.ctx, caller, &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		NextToken:    second.NextToken,
	})
	suite.Require().NoError(err)
	suite.Len(third.Results, 1)
	// 1 < 2 means exhausted: the absent token is the sole end signal
	suite.Empty(third.NextToken)
	for _, result := range third.Results {
		collected = append(collected, result.ResourceID)
	}

	suite.Equal([]string{"sa-0", "sa-1", "sa-2", "sa-3", "sa-4"}, collected)
}

// The worked scoping example: a member of ws-1 with projects proj-1 and
// proj-2 gets a filter that can never match proj-9, whatever its name.
func (suite *SearchServiceSuite) TestMemberProjectIsolationFilter() {
	caller := &types.Caller{
		DomainID:  "dom-1",
		UserID:    "user-1",
		OwnerType: types.OwnerTypeUser,
		RoleType:  types.RoleWorkspaceMember,
		Token:     "member-token",
	}

	suite.identity.EXPECT().
		GetWorkspaces(gomock.Any(), "dom-1", "user-1").
		Return([]types.Workspace{{WorkspaceID: "ws-1"}}, nil)
	suite.identity.EXPECT().
		GetRoleBindings(gomock.Any(), "dom-1", "user-1", []string{"ws-1"}, types.RoleType("")).
		Return([]types.RoleBinding{{WorkspaceID: "ws-1", RoleType: types.RoleWorkspaceMember}}, nil)
	suite.store.EXPECT().
		ListPublicProjects(gomock.Any(), "dom-1", "ws-1").
		Return([]string{"proj-1"}, nil)
	suite.store.EXPECT().
		ListPrivateProjects(gomock.Any(), "dom-1", "ws-1", "user-1").
		Return([]string{"proj-2"}, nil)

	expected := filter.And(
		filter.Eq("domain_id", "dom-1"),
		filter.And(
			filter.Eq("workspace_id", "ws-1"),
			filter.In("project_id", []string{"proj-1", "proj-2"}),
		),
		filter.Or(
			filter.Regex("name", "prod"),
			filter.Regex("data.account_id", "prod"),
			filter.Regex("data.subscription_id", "prod"),
			filter.Regex("data.tenant_id", "prod"),
			filter.Regex("data.project_id", "prod"),
		),
	).BSON()

	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", expected, int64(10), int64(0)).
		Return(nil, nil)

	response, err := suite.service.Search(suite.ctx, caller, &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Keyword:      "prod",
		Workspaces:   []string{"ws-1"},
	})
	suite.Require().NoError(err)
	suite.Empty(response.Results)
	suite.Empty(response.NextToken)
}

// A member with zero visible projects is a valid state: the query still
// runs with an empty project membership set and returns zero rows, it
// never turns into a datastore error.
func (suite *SearchServiceSuite) TestMemberWithNoVisibleProjects() {
	caller := &types.Caller{
		DomainID:  "dom-1",
		UserID:    "user-1",
		OwnerType: types.OwnerTypeUser,
		RoleType:  types.RoleWorkspaceMember,
		Token:     "member-token",
	}

	suite.identity.EXPECT().
		GetWorkspaces(gomock.Any(), "dom-1", "user-1").
		Return([]types.Workspace{{WorkspaceID: "ws-1"}}, nil)
	suite.identity.EXPECT().
		GetRoleBindings(gomock.Any(), "dom-1", "user-1", []string{"ws-1"}, types.RoleType("")).
		Return([]types.RoleBinding{{WorkspaceID: "ws-1", RoleType: types.RoleWorkspaceMember}}, nil)
	suite.store.EXPECT().
		ListPublicProjects(gomock.Any(), "dom-1", "ws-1").
		Return(nil, nil)
	suite.store.EXPECT().
		ListPrivateProjects(gomock.Any(), "dom-1", "ws-1", "user-1").
		Return(nil, nil)

	expected := filter.And(
		filter.Eq("domain_id", "dom-1"),
		filter.And(
			filter.Eq("workspace_id", "ws-1"),
			filter.In("project_id", []string{}),
		),
	).BSON()
	// the project clause must be a real empty array, not null
	suite.Contains(mustExtJSON(suite.T(), expected), `"$in":[]`)

	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", expected, int64(10), int64(0)).
		Return(nil, nil)

	response, err := suite.service.Search(suite.ctx, caller, &types.SearchRequest{
		ResourceType:  "identity.ServiceAccount",
		AllWorkspaces: true,
	})
	suite.Require().NoError(err)
	suite.Empty(response.Results)
	suite.Empty(response.NextToken)
}

func mustExtJSON(t *testing.T, doc bson.D) string {
	t.Helper()
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func (suite *SearchServiceSuite) TestZeroLimitYieldsEmptyPage() {
	// no Find expectation: a zero limit never touches the datastore
	response, err := suite.service.Search(suite.ctx, suite.adminCaller(), &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Keyword:      "prod",
		Limit:        intPtr(0),
	})
	suite.Require().NoError(err)
	suite.Empty(response.Results)
	suite.Empty(response.NextToken)
}

func (suite *SearchServiceSuite) TestLimitClampedToMax() {
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", gomock.Any(), int64(100), int64(0)).
		Return(nil, nil)

	_, err := suite.service.Search(suite.ctx, suite.adminCaller(), &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Limit:        intPtr(500),
	})
	suite.Require().NoError(err)
}

func (suite *SearchServiceSuite) TestCursorForOtherTypeRejected() {
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", gomock.Any(), int64(1), int64(0)).
		Return([]types.ResourceRecord{serviceAccount(0)}, nil)

	caller := suite.adminCaller()
	first, err := suite.service.Search(suite.ctx, caller, &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Limit:        intPtr(1),
	})
	suite.Require().NoError(err)
	suite.Require().NotEmpty(first.NextToken)

	_, err = suite.service.Search(suite.ctx, caller, &types.SearchRequest{
		ResourceType: "identity.Project",
		NextToken:    first.NextToken,
	})

	var invalidCursor *types.InvalidCursorError
	suite.Require().ErrorAs(err, &invalidCursor)
}

func (suite *SearchServiceSuite) TestCursorFromOtherSessionRejected() {
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", gomock.Any(), int64(1), int64(0)).
		Return([]types.ResourceRecord{serviceAccount(0)}, nil)

	first, err := suite.service.Search(suite.ctx, suite.adminCaller(), &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Limit:        intPtr(1),
	})
	suite.Require().NoError(err)
	suite.Require().NotEmpty(first.NextToken)

	otherCaller := suite.adminCaller()
	otherCaller.Token = "different-token"

	_, err = suite.service.Search(suite.ctx, otherCaller, &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		NextToken:    first.NextToken,
	})

	var invalidCursor *types.InvalidCursorError
	suite.Require().ErrorAs(err, &invalidCursor)
}

// The admin workspace search carries the lifecycle static filter, so
// disabled and deleted workspaces can never match.
func (suite *SearchServiceSuite) TestAdminWorkspaceSearchExcludesDisabled() {
	expected := filter.And(
		filter.Eq("domain_id", "dom-1"),
		filter.Nin("state", []string{"DISABLED", "DELETED"}),
		filter.Regex("name", "team"),
	).BSON()

	suite.store.EXPECT().
		Find(gomock.Any(), "identity.Workspace", expected, int64(10), int64(0)).
		Return(nil, nil)

	_, err := suite.service.Search(suite.ctx, suite.adminCaller(), &types.SearchRequest{
		ResourceType: "identity.Workspace",
		Keyword:      "team",
	})
	suite.Require().NoError(err)
}

func (suite *SearchServiceSuite) TestDatastoreFailurePropagates() {
	suite.store.EXPECT().
		Find(gomock.Any(), "identity.ServiceAccount", gomock.Any(), int64(10), int64(0)).
		Return(nil, &types.DependencyError{Dependency: "datastore"})

	_, err := suite.service.Search(suite.ctx, suite.adminCaller(), &types.SearchRequest{
		ResourceType: "identity.ServiceAccount",
		Keyword:      "prod",
	})

	var dependency *types.DependencyError
	suite.Require().ErrorAs(err, &dependency)
}
