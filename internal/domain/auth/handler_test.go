package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubal/internal/pkg/jwt"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(NewRepository(newTestDB(t)), jwt.New("test-secret", time.Hour), &fakeProvisioner{})
	h := NewHandler(svc)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)

	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})
	h.RegisterProtectedRoutes(protected)
	return r
}

func doJSONRequest(r http.Handler, method, path string, body any, userID int64) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_RegisterValidation(t *testing.T) {
	r := setupRouter(t)

	w := doJSONRequest(r, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "bad", "password": "short", "name": "x"}, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
}

func TestHandler_RegisterRoleFlow(t *testing.T) {
	r := setupRouter(t)

	w := doJSONRequest(r, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "a@example.com", "password": "password123", "name": "Amal"}, 0)
	require.Equal(t, http.StatusCreated, w.Code)

	var reg AuthResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &reg))
	userID := reg.User.ID

	w = doJSONRequest(r, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "a@example.com", "password": "password123", "name": "Amal"}, 0)
	assert.Equal(t, http.StatusConflict, w.Code)

	for i, wantAlready := range []bool{false, true} {
		w = doJSONRequest(r, http.MethodPost, "/api/v1/auth/role", map[string]string{"role": "customer"}, userID)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i)

		var rr RoleResult
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &rr))
		assert.Equal(t, RoleCustomer, rr.Role)
		assert.Equal(t, wantAlready, rr.AlreadyAssigned)
		assert.NotEmpty(t, rr.Token)
	}

	w = doJSONRequest(r, http.MethodGet, "/api/v1/auth/me", nil, userID)
	require.Equal(t, http.StatusOK, w.Code)
	var session Session
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &session))
	assert.Equal(t, RoleCustomer, session.Role)
}

func TestHandler_MeRequiresUser(t *testing.T) {
	r := setupRouter(t)

	w := doJSONRequest(r, http.MethodGet, "/api/v1/auth/me", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_LoginWrongPassword(t *testing.T) {
	r := setupRouter(t)

	doJSONRequest(r, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "b@example.com", "password": "password123", "name": "Badr"}, 0)
	w := doJSONRequest(r, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "b@example.com", "password": "nope-nope"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w).Error.Code)
}

func TestHandler_PublicProfile(t *testing.T) {
	r := setupRouter(t)

	w := doJSONRequest(r, http.MethodGet, "/api/v1/profiles/42", nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSONRequest(r, http.MethodGet, "/api/v1/profiles/abc", nil, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
