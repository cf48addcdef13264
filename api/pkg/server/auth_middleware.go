package server

import (
	"context"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/lookouthq/lookout/api/pkg/types"
)

type callerContextKey struct{}

type authMiddleware struct {
	secret []byte
}

func newAuthMiddleware(secret string) *authMiddleware {
	return &authMiddleware{
		secret: []byte(secret),
	}
}

// callerClaims is what the auth layer asserts about a request: tenancy,
// role, and an optional single-workspace / project scoping.
type callerClaims struct {
	jwt.RegisteredClaims
	DomainID    string   `json:"domain_id"`
	UserID      string   `json:"user_id,omitempty"`
	OwnerType   string   `json:"owner_type"`
	RoleType    string   `json:"role_type,omitempty"`
	WorkspaceID string   `json:"workspace_id,omitempty"`
	ProjectIDs  []string `json:"projects,omitempty"`
}

func (m *authMiddleware) verifyCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		parsed, err := jwt.ParseWithClaims(rawToken, &callerClaims{}, func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := parsed.Claims.(*callerClaims)
		if !ok || !parsed.Valid || claims.DomainID == "" {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		caller := types.Caller{
			DomainID:    claims.DomainID,
			UserID:      claims.UserID,
			OwnerType:   types.OwnerType(claims.OwnerType),
			RoleType:    types.RoleType(claims.RoleType),
			WorkspaceID: claims.WorkspaceID,
			ProjectIDs:  claims.ProjectIDs,
			Token:       rawToken,
		}

		next.ServeHTTP(w, r.WithContext(setRequestCaller(r.Context(), caller)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func setRequestCaller(ctx context.Context, caller types.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

func getRequestCaller(req *http.Request) *types.Caller {
	value := req.Context().Value(callerContextKey{})
	if value == nil {
		return nil
	}
	caller := value.(types.Caller)
	return &caller
}
