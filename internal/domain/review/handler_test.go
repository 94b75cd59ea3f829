package review

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, completed pairGate) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t, completed, pairGate{})
	r := gin.New()
	public := r.Group("/api/v1")
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(public, protected)
	return r, f
}

func doJSONRequest(r http.Handler, method, path string, body any, userID int64, role string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateAndList(t *testing.T) {
	r, f := setupRouter(t, pairGate{{customerID, designerID}: true})
	f.notifier.On("NotifyNewReview", mock.Anything, designerID, mock.Anything, 4).Return(nil)

	body := map[string]any{"designer_id": designerID, "rating": 4, "comment": "  solid work  "}

	w := doJSONRequest(r, http.MethodPost, "/api/v1/reviews", body, designerID, "designer")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSONRequest(r, http.MethodPost, "/api/v1/reviews", map[string]any{"designer_id": designerID, "rating": 6}, customerID, "customer")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSONRequest(r, http.MethodPost, "/api/v1/reviews", body, customerID, "customer")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSONRequest(r, http.MethodPost, "/api/v1/reviews", body, customerID, "customer")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_REVIEWED")

	w = doJSONRequest(r, http.MethodGet, "/api/v1/designers/"+strconv.FormatInt(designerID, 10)+"/reviews", nil, 0, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Noura", list.Data[0].CustomerName)
	f.notifier.AssertExpectations(t)
}

func TestHandler_NotEligible(t *testing.T) {
	r, _ := setupRouter(t, pairGate{})

	w := doJSONRequest(r, http.MethodPost, "/api/v1/reviews", map[string]any{"designer_id": designerID, "rating": 5}, customerID, "customer")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_ELIGIBLE")

	w = doJSONRequest(r, http.MethodGet, "/api/v1/designers/"+strconv.FormatInt(designerID, 10)+"/review-eligibility", nil, customerID, "customer")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data Eligibility `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Data.CanReview)
	assert.False(t, got.Data.HasCompletedWork)
}

func TestHandler_InvalidServiceRequest(t *testing.T) {
	r, _ := setupRouter(t, pairGate{{customerID, designerID}: true})

	body := map[string]any{"designer_id": designerID, "service_request_id": 42, "rating": 5}
	w := doJSONRequest(r, http.MethodPost, "/api/v1/reviews", body, customerID, "customer")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SERVICE_REQUEST")
}
