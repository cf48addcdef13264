// Package cursor mints and verifies opaque continuation tokens. A cursor
// snapshots the first page's authorization decision: the full filter
// tree goes into the token and later pages re-apply it unchanged instead
// of re-resolving the caller's scope.
package cursor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/lookouthq/lookout/api/pkg/filter"
	"github.com/lookouthq/lookout/api/pkg/types"
)

// State is what a cursor carries between pages.
type State struct {
	ResourceType string
	Filter       filter.Expr
	Limit        int
	Page         int
}

type claims struct {
	jwt.RegisteredClaims
	ResourceType string          `json:"resource_type"`
	Filter       json.RawMessage `json:"filter"`
	Limit        int             `json:"limit"`
	Page         int             `json:"page"`
}

type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// signingKey binds the token to the session that minted it: the HMAC key
// mixes the server secret with the caller's own session token, so a
// cursor lifted from one session does not verify in another.
func (c *Codec) signingKey(sessionKey string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionKey))
	return mac.Sum(nil)
}

// Encode mints a signed token for the next page.
func (c *Codec) Encode(sessionKey string, state *State) (string, error) {
	serialized, err := filter.Marshal(state.Filter)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		ResourceType: state.ResourceType,
		Filter:       serialized,
		Limit:        state.Limit,
		Page:         state.Page,
	})
	return token.SignedString(c.signingKey(sessionKey))
}

// Decode verifies and unpacks a token. Every failure comes back as an
// InvalidCursorError: a cursor that does not verify is treated as forged
// or corrupted, a permission-relevant event rather than a parse error.
func (c *Codec) Decode(sessionKey, resourceType, token string) (*State, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(token *jwt.Token) (interface{}, error) {
		return c.signingKey(sessionKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, &types.InvalidCursorError{Reason: err.Error()}
	}

	decoded, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, &types.InvalidCursorError{Reason: "token claims invalid"}
	}

	// a cursor is only valid for the resource type it was minted for
	if decoded.ResourceType != resourceType {
		return nil, &types.InvalidCursorError{Reason: "cursor was issued for a different resource type"}
	}

	tree, err := filter.Unmarshal(decoded.Filter)
	if err != nil {
		return nil, &types.InvalidCursorError{Reason: err.Error()}
	}

	return &State{
		ResourceType: decoded.ResourceType,
		Filter:       tree,
		Limit:        decoded.Limit,
		Page:         decoded.Page,
	}, nil
}
