package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/domain"
)

const identityKey = "auth_identity"

type identityCtxKey struct{}

// Identity represents the caller resolved from a verified token for one request.
type Identity struct {
	SubjectID     int64
	Username      string
	Authenticated bool
	Role          domain.Role
	IssuedAt      time.Time
	ExpiresAt     time.Time
	// Anonymous marks the sentinel attached by the Optional gate when no token resolved.
	Anonymous bool
}

// HasRole reports whether the identity holds one of roles.
func (i *Identity) HasRole(roles ...domain.Role) bool {
	if i == nil || i.Role == domain.RoleNone {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// anonymousIdentity is attached by the Optional gate on resolution failure.
func anonymousIdentity() *Identity {
	return &Identity{Anonymous: true}
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext retrieves the identity attached to a request context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return id, ok && id != nil
}

// IdentityFromFiber retrieves the identity a gate attached to c.
func IdentityFromFiber(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	id, ok := val.(*Identity)
	return id, ok
}

func attachIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(identityKey, id)
	c.SetUserContext(WithIdentity(c.UserContext(), id))
}
