package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitordesk/visitor-service/internal/domain"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

type gateResponse struct {
	Status   int
	Code     string `json:"code"`
	Message  string `json:"message"`
	Subject  int64  `json:"subject_id"`
	Role     string `json:"role"`
	Anon     bool   `json:"anonymous"`
	Resolved bool   `json:"resolved"`
}

func newGateApp(gate *Gate, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(de)
		},
	})
	app.Get("/guarded", guard, func(c *fiber.Ctx) error {
		id, ok := IdentityFromFiber(c)
		ctxID, ctxOK := IdentityFromContext(c.UserContext())
		if ok != ctxOK || (ok && id != ctxID) {
			return errors.New("identity not attached consistently")
		}
		if !ok {
			return c.JSON(fiber.Map{"resolved": false})
		}
		return c.JSON(fiber.Map{
			"resolved":   true,
			"subject_id": id.SubjectID,
			"role":       id.Role,
			"anonymous":  id.Anonymous,
		})
	})
	return app
}

func callGate(t *testing.T, app *fiber.App, authorization string) gateResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out gateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	out.Status = resp.StatusCode
	return out
}

func issueBearer(t *testing.T, codec *Codec, claims Claims, ttl time.Duration) string {
	t.Helper()
	token, _, err := codec.Issue(claims, ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGatesWithoutToken(t *testing.T) {
	gate := NewGate(NewResolver(newTestCodec(t)), "")
	guards := map[string]fiber.Handler{
		"any":                 gate.Any(),
		"member":              gate.Member(),
		"admin":               gate.Admin(),
		"superadmin":          gate.SuperAdmin(),
		"admin_or_superadmin": gate.AdminOrSuperAdmin(),
	}

	for name, guard := range guards {
		out := callGate(t, newGateApp(gate, guard), "")
		assert.Equal(t, http.StatusForbidden, out.Status, name)
		assert.Equal(t, CodeNoTokenProvided, out.Code, name)
		assert.Equal(t, "Refer to the code", out.Message, name)
	}

	out := callGate(t, newGateApp(gate, gate.Optional()), "")
	assert.Equal(t, http.StatusOK, out.Status)
	assert.True(t, out.Resolved)
	assert.True(t, out.Anon)
}

func TestRoleGates(t *testing.T) {
	codec := newTestCodec(t)
	gate := NewGate(NewResolver(codec), "")
	admin := issueBearer(t, codec, Claims{SubjectID: 7, Authenticated: true, Role: domain.RoleAdmin}, 7*24*time.Hour)
	super := issueBearer(t, codec, Claims{SubjectID: 1, Authenticated: true, Role: domain.RoleSuperAdmin}, time.Hour)
	member := issueBearer(t, codec, Claims{SubjectID: 9, Authenticated: true}, time.Hour)
	unauthenticated := issueBearer(t, codec, Claims{SubjectID: 9}, time.Hour)

	cases := []struct {
		name   string
		guard  fiber.Handler
		header string
		status int
		code   string
	}{
		{"admin on superadmin", gate.SuperAdmin(), admin, http.StatusForbidden, CodeNoSuperAdminData},
		{"admin on admin", gate.Admin(), admin, http.StatusOK, ""},
		{"admin on either", gate.AdminOrSuperAdmin(), admin, http.StatusOK, ""},
		{"super on superadmin", gate.SuperAdmin(), super, http.StatusOK, ""},
		{"super on admin", gate.Admin(), super, http.StatusForbidden, CodeNoAdminData},
		{"super on either", gate.AdminOrSuperAdmin(), super, http.StatusOK, ""},
		{"member on either", gate.AdminOrSuperAdmin(), member, http.StatusForbidden, CodeNoSuperAdminData},
		{"member on any", gate.Any(), member, http.StatusOK, ""},
		{"member on member", gate.Member(), member, http.StatusOK, ""},
		{"unauthenticated on any", gate.Any(), unauthenticated, http.StatusForbidden, CodeNoAuthData},
		{"unauthenticated on member", gate.Member(), unauthenticated, http.StatusForbidden, CodeNoMemberData},
	}

	for _, tc := range cases {
		out := callGate(t, newGateApp(gate, tc.guard), tc.header)
		assert.Equal(t, tc.status, out.Status, tc.name)
		assert.Equal(t, tc.code, out.Code, tc.name)
	}
}

func TestAdminOrSuperAdminAttachesIdentity(t *testing.T) {
	codec := newTestCodec(t)
	gate := NewGate(NewResolver(codec), "")
	header := issueBearer(t, codec, Claims{SubjectID: 7, Authenticated: true, Role: domain.RoleAdmin}, 7*24*time.Hour)

	out := callGate(t, newGateApp(gate, gate.AdminOrSuperAdmin()), header)
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, int64(7), out.Subject)
	assert.Equal(t, "ADMIN", out.Role)
	assert.False(t, out.Anon)
}

func TestGateExpiredAndInvalidTokens(t *testing.T) {
	codec := newTestCodec(t)
	gate := NewGate(NewResolver(codec), "")
	expired := issueBearer(t, codec, Claims{SubjectID: 1, Authenticated: true, Role: domain.RoleSuperAdmin}, -time.Hour)

	out := callGate(t, newGateApp(gate, gate.SuperAdmin()), expired)
	assert.Equal(t, http.StatusForbidden, out.Status)
	assert.Equal(t, CodeTokenExpired, out.Code)
	assert.Equal(t, "Refer to the code", out.Message)

	out = callGate(t, newGateApp(gate, gate.SuperAdmin()), "Bearer not.a.jwt")
	assert.Equal(t, http.StatusForbidden, out.Status)
	assert.Equal(t, CodeInvalidToken, out.Code)

	out = callGate(t, newGateApp(gate, gate.Optional()), expired)
	assert.Equal(t, http.StatusOK, out.Status)
	assert.True(t, out.Anon)
}

func TestGateWithoutSecretReportsConfiguration(t *testing.T) {
	gate := NewGate(NewResolver(nil), "")

	out := callGate(t, newGateApp(gate, gate.Any()), "Bearer whatever")
	assert.Equal(t, http.StatusInternalServerError, out.Status)
	assert.Equal(t, apperrors.CodeNoSecretDefined, out.Code)
}

func TestStaticSecretGate(t *testing.T) {
	strong := NewGate(NewResolver(newTestCodec(t)), "dev-shared-secret")
	weak := NewGate(NewResolver(newTestCodec(t)), "abc")

	out := callGate(t, newGateApp(strong, strong.StaticSecret()), "dev-shared-secret")
	assert.Equal(t, http.StatusOK, out.Status)
	assert.False(t, out.Resolved)

	out = callGate(t, newGateApp(strong, strong.StaticSecret()), "wrong-secret")
	assert.Equal(t, http.StatusForbidden, out.Status)
	assert.Equal(t, CodeInvalidAuth, out.Code)

	out = callGate(t, newGateApp(weak, weak.StaticSecret()), "abc")
	assert.Equal(t, http.StatusForbidden, out.Status)
	assert.Equal(t, CodeInvalidAuth, out.Code)
}
