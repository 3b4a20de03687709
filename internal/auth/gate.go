package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/domain"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// Deny codes returned by the gates.
const (
	CodeNoAuthData       = "NO_AUTH_DATA"
	CodeNoMemberData     = "NO_MEMBER_DATA"
	CodeNoAdminData      = "NO_ADMIN_DATA"
	CodeNoSuperAdminData = "NO_SUPERADMIN_DATA"
	CodeInvalidAuth      = "INVALID_AUTH"

	resolverDenyMessage = "Refer to the code"
	minStaticSecretLen  = 5
)

// Gate builds fiber handlers enforcing named authorization policies.
type Gate struct {
	resolver     *Resolver
	staticSecret string
}

// NewGate constructs the gate family. staticSecret backs StaticSecret.
func NewGate(resolver *Resolver, staticSecret string) *Gate {
	return &Gate{resolver: resolver, staticSecret: staticSecret}
}

// Any requires an authenticated token.
func (g *Gate) Any() fiber.Handler {
	return g.policy(func(id *Identity) bool { return id.Authenticated },
		"No auth data found in the token", CodeNoAuthData)
}

// Member requires an authenticated token. It shares the predicate of Any but
// reports its own deny code.
func (g *Gate) Member() fiber.Handler {
	return g.policy(func(id *Identity) bool { return id.Authenticated },
		"No member data found in the token", CodeNoMemberData)
}

// Admin requires the ADMIN role.
func (g *Gate) Admin() fiber.Handler {
	return g.policy(func(id *Identity) bool { return id.HasRole(domain.RoleAdmin) },
		"No admin data found in the token", CodeNoAdminData)
}

// SuperAdmin requires the SUPERADMIN role.
func (g *Gate) SuperAdmin() fiber.Handler {
	return g.policy(func(id *Identity) bool { return id.HasRole(domain.RoleSuperAdmin) },
		"No Super Admin data found in the token", CodeNoSuperAdminData)
}

// AdminOrSuperAdmin requires either administrative role. Denials reuse NO_SUPERADMIN_DATA.
func (g *Gate) AdminOrSuperAdmin() fiber.Handler {
	return g.policy(func(id *Identity) bool { return id.HasRole(domain.RoleAdmin, domain.RoleSuperAdmin) },
		"No superadmin/admin data found in the token", CodeNoSuperAdminData)
}

// Optional never denies. When no identity resolves, an anonymous sentinel is attached.
func (g *Gate) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.resolver.Resolve(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			id = anonymousIdentity()
		}
		attachIdentity(c, id)
		return c.Next()
	}
}

// StaticSecret requires the Authorization header to equal the deployment-wide
// shared secret. Secrets shorter than five characters never match.
func (g *Gate) StaticSecret() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(g.staticSecret) < minStaticSecretLen {
			return apperrors.NewForbidden("Invalid auth", CodeInvalidAuth)
		}
		presented := c.Get(fiber.HeaderAuthorization)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(g.staticSecret)) != 1 {
			return apperrors.NewForbidden("Invalid auth", CodeInvalidAuth)
		}
		return c.Next()
	}
}

func (g *Gate) policy(allow func(*Identity) bool, denyMessage, denyCode string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.resolver.Resolve(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return denyResolution(err)
		}
		if !allow(id) {
			return apperrors.NewForbidden(denyMessage, denyCode)
		}
		attachIdentity(c, id)
		return c.Next()
	}
}

// denyResolution keeps the resolver's code and replaces the message. Configuration
// failures are surfaced unchanged.
func denyResolution(err error) error {
	if IsConfigurationFailure(err) {
		return err
	}
	de := apperrors.ToDomainError(err)
	denied := apperrors.NewForbidden(resolverDenyMessage, de.Code)
	denied.Err = err
	return denied
}
