package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/api/http/handlers"
	"github.com/visitordesk/visitor-service/internal/auth"
	"github.com/visitordesk/visitor-service/internal/config"
	"github.com/visitordesk/visitor-service/internal/events"
	"github.com/visitordesk/visitor-service/internal/observability"
	"github.com/visitordesk/visitor-service/internal/repository/memory"
	"github.com/visitordesk/visitor-service/internal/service"
	"github.com/visitordesk/visitor-service/internal/storage"
)

const devSecret = "dev-shared-secret"

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	codec, err := auth.NewCodec("router-test-secret")
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(4)
	dispatcher := events.NewInMemoryDispatcher(logger)
	authService := service.NewAuthService(config.AuthConfig{LoginMaxAttempts: 50}, service.AuthDependencies{
		UserRepo: store.Users(),
		Codec:    codec,
		Hasher:   hasher,
	})
	userService := service.NewUserService(store.Users(), hasher, dispatcher, logger)
	staffService := service.NewStaffService(store.Staff())
	visitorService := service.NewVisitorService(store.Visitors(), staffService, dispatcher, time.UTC, logger)
	uploadService := service.NewUploadService(storage.NewMemoryStorage("https://cdn.test"), storage.NewKeyBuilder("visitor"), logger)
	metrics := observability.NewMetrics()

	app := NewApp(logger, metrics, ServerOptions{Name: "test", RequestTimeout: 5 * time.Second}, RouteConfig{
		Gate:     auth.NewGate(auth.NewResolver(codec), devSecret),
		Health:   handlers.NewHealthHandler("visitor-service", "test", metrics),
		Auth:     handlers.NewAuthHandler(authService),
		Users:    handlers.NewUsersHandler(authService, userService),
		Visitors: handlers.NewVisitorsHandler(visitorService),
		Staff:    handlers.NewStaffHandler(staffService),
		Uploads:  handlers.NewUploadsHandler(uploadService),
	})
	return &testServer{app: app}
}

type result struct {
	status int
	header nethttp.Header
	raw    []byte
	body   map[string]any
}

func (s *testServer) do(t *testing.T, method, path, authorization string, payload any) result {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request) result {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := result{status: resp.StatusCode, header: resp.Header, raw: raw}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		_ = json.Unmarshal(raw, &out.body)
	}
	return out
}

// bootstrap creates a superadmin and an admin and returns their bearer headers.
func (s *testServer) bootstrap(t *testing.T) (string, string) {
	t.Helper()
	res := s.do(t, nethttp.MethodPost, "/api/v1/users/create/superadmin", "", fiber.Map{"username": "root", "password": "pw", "role": "SUPERADMIN"})
	require.Equal(t, nethttp.StatusOK, res.status, string(res.raw))
	_, hasHash := res.body["PasswordHash"]
	assert.False(t, hasHash)

	super := s.login(t, "root", "pw")
	res = s.do(t, nethttp.MethodPost, "/api/v1/users/create/admin", super, fiber.Map{"username": "desk", "password": "pw", "role": "ADMIN"})
	require.Equal(t, nethttp.StatusOK, res.status, string(res.raw))
	return super, s.login(t, "desk", "pw")
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	res := s.do(t, nethttp.MethodPost, "/api/v1/users/login", "", fiber.Map{"username": username, "password": password})
	require.Equal(t, nethttp.StatusOK, res.status, string(res.raw))
	token, _ := res.body["token"].(string)
	require.NotEmpty(t, token)
	return "Bearer " + token
}

func TestUserRoutesEnforceRoles(t *testing.T) {
	s := newTestServer(t)
	super, admin := s.bootstrap(t)

	res := s.do(t, nethttp.MethodPost, "/api/v1/users/create/admin", admin, fiber.Map{"username": "x", "password": "pw", "role": "ADMIN"})
	assert.Equal(t, nethttp.StatusForbidden, res.status)
	assert.Equal(t, auth.CodeNoSuperAdminData, res.body["code"])
	assert.Equal(t, "Refer to the code", res.body["message"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/users/self", admin, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, "desk", res.body["username"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/users/all/inactive", super, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)

	res = s.do(t, nethttp.MethodDelete, "/api/v1/users/1", super, nil)
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, service.CodeSelfDeletionNotAllowed, res.body["code"])

	res = s.do(t, nethttp.MethodDelete, "/api/v1/users/abc", super, nil)
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, "BAD_PARAM", res.body["code"])
}

func TestLoginValidation(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, nethttp.MethodPost, "/api/v1/users/login", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, res.status)
	assert.Equal(t, "MISSING_BODY_ERROR", res.body["code"])

	res = s.do(t, nethttp.MethodPost, "/api/v1/users/login", "", fiber.Map{"username": "root"})
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, "MISSING_INFO", res.body["code"])

	res = s.do(t, nethttp.MethodPost, "/api/v1/users/login", "", fiber.Map{"username": "ghost", "password": "pw"})
	assert.Equal(t, nethttp.StatusNotFound, res.status)
	assert.Equal(t, "USERNAME_NOT_FOUND", res.body["code"])

	res = s.do(t, nethttp.MethodPost, "/api/v1/users/create/superadmin", "", fiber.Map{"username": "a", "password": "pw", "role": "ADMIN"})
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, service.CodeInvalidUserRole, res.body["code"])
}

func TestTokenValidationUsesUnauthorized(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.bootstrap(t)

	res := s.do(t, nethttp.MethodGet, "/api/v1/auth/validate", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.status)
	assert.Equal(t, auth.CodeNoTokenProvided, res.body["code"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/auth/validate", "Bearer garbage", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, res.status)
	assert.Equal(t, auth.CodeInvalidToken, res.body["code"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/auth/validate", admin, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, true, res.body["success"])
}

func TestVisitorLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.bootstrap(t)

	res := s.do(t, nethttp.MethodGet, "/api/v1/visitors/all", "", nil)
	assert.Equal(t, nethttp.StatusForbidden, res.status)
	assert.Equal(t, auth.CodeNoTokenProvided, res.body["code"])

	res = s.do(t, nethttp.MethodPost, "/api/v1/staff", admin, fiber.Map{"name": "Dana Host", "phone_number": "+62811"})
	require.Equal(t, nethttp.StatusCreated, res.status, string(res.raw))
	staffID := res.body["data"].(map[string]any)["id"]

	res = s.do(t, nethttp.MethodPost, "/api/v1/visitors/create", admin, fiber.Map{"visitor_name": "Alice", "phone_number": "111"})
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, "MISSING_INFO", res.body["code"])

	res = s.do(t, nethttp.MethodPost, "/api/v1/visitors/create", admin, fiber.Map{
		"visitor_name": "Alice", "phone_number": "111", "visitor_profile": "Player", "staff_id": staffID,
	})
	require.Equal(t, nethttp.StatusOK, res.status, string(res.raw))
	data := res.body["data"].(map[string]any)
	assert.Equal(t, "Active", data["status"])
	assert.Equal(t, "Dana Host", data["staff_name"])
	id := int(data["id"].(float64))
	visitorPath := "/api/v1/visitors/" + strconv.Itoa(id)

	res = s.do(t, nethttp.MethodPost, visitorPath+"/checkout", admin, nil)
	require.Equal(t, nethttp.StatusOK, res.status, string(res.raw))
	assert.Equal(t, "Checked Out", res.body["data"].(map[string]any)["status"])

	res = s.do(t, nethttp.MethodPost, visitorPath+"/checkout", admin, nil)
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, "Visitor already checked out", res.body["message"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/visitors/all?includeCheckedOut=false", admin, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, float64(0), res.body["count"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/visitors/stats", "", nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, float64(1), res.body["data"].(map[string]any)["totalVisitors"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/visitors/export", admin, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, "attachment; filename=visitors_export.csv", res.header.Get(fiber.HeaderContentDisposition))
	lines := strings.Split(strings.TrimSpace(string(res.raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Visitor Name,Phone Number"))

	res = s.do(t, nethttp.MethodGet, "/api/v1/visitors/999", admin, nil)
	assert.Equal(t, nethttp.StatusNotFound, res.status)
	assert.Equal(t, "VISITOR_NOT_FOUND", res.body["code"])

	res = s.do(t, nethttp.MethodGet, "/api/v1/staff/validate?name=Dana%20Host", admin, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, true, res.body["valid"])
}

func TestUploadAndDownload(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.bootstrap(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="upload"; filename="badge.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/upload/public/image", &body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	res := s.send(t, req)
	require.Equal(t, nethttp.StatusOK, res.status, string(res.raw))
	location := res.body["location"].(string)
	assert.True(t, strings.HasPrefix(location, "https://cdn.test/visitor/uploads/image/"))

	res = s.do(t, nethttp.MethodPost, "/api/v1/upload/public/file", "", fiber.Map{})
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
	assert.Equal(t, "File not uploaded", res.body["message"])

	key := strings.TrimPrefix(location, "https://cdn.test/")
	res = s.do(t, nethttp.MethodPost, "/api/v1/upload/download", admin, fiber.Map{"url": key})
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, "png-bytes", string(res.raw))
	assert.Contains(t, res.header.Get(fiber.HeaderContentDisposition), "badge.png")

	res = s.do(t, nethttp.MethodPost, "/api/v1/upload/public/3dfile", admin, fiber.Map{})
	assert.Equal(t, nethttp.StatusBadRequest, res.status)
}

func TestNormalizerShapes(t *testing.T) {
	s := newTestServer(t)
	s.app.Get("/boom", func(*fiber.Ctx) error { return errors.New("boom") })
	s.app.Get("/panic", func(*fiber.Ctx) error { panic("kaboom") })

	res := s.do(t, nethttp.MethodGet, "/boom", "", nil)
	assert.Equal(t, nethttp.StatusInternalServerError, res.status)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", res.body["code"])
	detail := res.body["detail"].(map[string]any)
	assert.Equal(t, "boom", detail["message"])
	assert.NotEmpty(t, detail["stack"])

	res = s.do(t, nethttp.MethodGet, "/panic", "", nil)
	assert.Equal(t, nethttp.StatusInternalServerError, res.status)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", res.body["code"])

	res = s.do(t, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, res.status)
	assert.Equal(t, "NOT_FOUND", res.body["code"])
	assert.NotEmpty(t, res.header.Get(observability.HeaderRequestID))
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Equal(t, "alive", res.body["status"])

	res = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, res.status)

	res = s.do(t, nethttp.MethodGet, "/internal/metrics", "wrong", nil)
	assert.Equal(t, nethttp.StatusForbidden, res.status)
	assert.Equal(t, auth.CodeInvalidAuth, res.body["code"])

	res = s.do(t, nethttp.MethodGet, "/internal/metrics", devSecret, nil)
	assert.Equal(t, nethttp.StatusOK, res.status)
	assert.Contains(t, res.body, "total_requests")
}
