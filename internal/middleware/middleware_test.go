package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	users map[string]*model.User
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error { return nil }

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrSessionExpired
}

func (f *fakeAuth) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	return nil
}

func newAuthEngine() *gin.Engine {
	mw := NewAuthMiddleware(&fakeAuth{users: map[string]*model.User{
		"admin-token": {Base: model.Base{ID: 1}, Role: model.RoleAdmin},
		"rec-token":   {Base: model.Base{ID: 5}, Role: model.RoleReceptionist},
	}})

	r := gin.New()
	r.Use(RequestID())
	r.GET("/users", mw.Authenticate(), mw.RequirePermission(access.PermUsersManage), func(c *gin.Context) {
		handler.OK(c, handler.CurrentUser(c).ID)
	})
	r.GET("/access", mw.OptionalAuthenticate(), func(c *gin.Context) {
		handler.OK(c, handler.CurrentUser(c) != nil)
	})
	return r
}

func do(r http.Handler, method, path, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := newAuthEngine()

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/users", "admin-token", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/users", "rec-token", "").Code)

	w := do(r, http.MethodGet, "/users", "stale", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "session expired", resp.Message)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/users", "", "").Code)
}

func TestAuthFailuresUseErrorBody(t *testing.T) {
	r := newAuthEngine()

	tests := []struct {
		name  string
		token string
		code  int
		msg   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"stale session", "stale", http.StatusUnauthorized, "session expired"},
		{"wrong role", "rec-token", http.StatusForbidden, "permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/users", tt.token, "")
			require.Equal(t, tt.code, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, handler.StatusError, resp.Status)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.msg, resp.Message)
			assert.NotEmpty(t, resp.TraceID)
			assert.Equal(t, w.Header().Get(HeaderXRequestID), resp.TraceID)
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	r := newAuthEngine()

	assert.Contains(t, do(r, http.MethodGet, "/access", "admin-token", "").Body.String(), `"data":true`)
	anon := do(r, http.MethodGet, "/access", "", "")
	assert.Equal(t, http.StatusOK, anon.Code)
	assert.NotContains(t, anon.Body.String(), `"data":true`)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/missing", func(c *gin.Context) { handler.Fail(c, apperrors.NotFound("patient", nil)) })
	r.GET("/boom", func(c *gin.Context) { handler.Fail(c, errors.New("pq: connection refused")) })
	r.GET("/slow", func(c *gin.Context) { handler.Fail(c, context.DeadlineExceeded) })

	w := do(r, http.MethodGet, "/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "patient not found", resp.Message)
	assert.Equal(t, w.Header().Get(HeaderXRequestID), resp.TraceID)

	w = do(r, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	assert.Equal(t, http.StatusGatewayTimeout, do(r, http.MethodGet, "/slow", "", "").Code)
}

func TestValidationReportsJSONFieldNames(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), Validation(DefaultValidationConfig()))
	r.POST("/login", func(c *gin.Context) {
		var req model.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handler.FailBind(c, err)
			return
		}
		handler.OK(c, nil)
	})

	w := do(r, http.MethodPost, "/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "password", resp.Errors[0].Field)
	assert.Equal(t, "Field is required", resp.Errors[0].Message)

	w = do(r, http.MethodPost, "/login", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("nil map") })

	w := do(r, http.MethodGet, "/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRequestIDReusesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "bad id with spaces")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "spaces")
	assert.Len(t, w.Body.String(), 36)

	w = do(r, http.MethodGet, "/", "", "")
	assert.Len(t, w.Body.String(), 36)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	r := gin.New()
	r.Use(RequestID())
	r.POST("/login", NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1}).RateLimit(),
		func(c *gin.Context) { handler.OK(c, nil) })
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "", "").Code)
	w := do(r, http.MethodPost, "/login", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, "https://desk.example", cfg.allowedOrigin("https://desk.example"))

	cfg.AllowOrigins = []string{"https://desk.example"}
	assert.Equal(t, "", cfg.allowedOrigin("https://evil.example"))

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://desk.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://desk.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", SizeLimit(SizeLimitConfig{MaxBodySize: 8}), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusRequestEntityTooLarge, do(r, http.MethodPost, "/", "", `{"a":"0123456789"}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/", "", `{}`).Code)
}

func TestHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()), NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/", "", "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store, private", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}
