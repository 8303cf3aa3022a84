package session

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/minimart/console/internal/authz"
)

// ErrTokenExpired is returned by decodeIdentity for tokens past their expiry.
var ErrTokenExpired = errors.New("token expired")

// tokenClaims is the claim shape the backend puts into issued tokens:
// sub = user email, roles = role names.
type tokenClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// decodeIdentity extracts an Identity from a credential artifact. The console
// never holds the signing secret, so the signature is not verified here; the
// backend re-verifies every request. Expiry is still enforced locally so a
// stale token degrades to logged-out instead of producing 401s on first use.
func decodeIdentity(token string, now time.Time) (Identity, error) {
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Identity{}, errors.Wrap(err, "parse token")
	}

	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
		return Identity{}, ErrTokenExpired
	}

	// Unknown role strings are decode failures, not silent non-matches.
	roles, err := authz.ParseRoles(claims.Roles)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		Subject: claims.Subject,
		Roles:   roles,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		id.ExpiresAt = &exp
	}
	return id, nil
}
