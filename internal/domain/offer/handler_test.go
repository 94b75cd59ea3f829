package offer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	RegisterRoutes(group, NewHandler(f.svc))
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

func TestHandler_Negotiation(t *testing.T) {
	r, f := setupRouter(t)
	d := f.openDesign(t)
	designPath := "/api/v1/room-designs/" + strconv.FormatInt(d.ID, 10) + "/offers"

	w := doJSONRequest(r, http.MethodPost, designPath, map[string]any{"price": 0}, designerID, "designer")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSONRequest(r, http.MethodPost, designPath, map[string]any{"price": 5000, "estimated_days": 7}, customerID, "customer")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSONRequest(r, http.MethodPost, designPath, map[string]any{"price": 5000, "estimated_days": 7}, designerID, "designer")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, Actions(StatusPending), created.Data.Actions)
	offerPath := "/api/v1/offers/" + strconv.FormatInt(created.Data.ID, 10)

	w = doJSONRequest(r, http.MethodPost, designPath, map[string]any{"price": 4000}, designerID, "designer")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OFFER_EXISTS")

	w = doJSONRequest(r, http.MethodPost, offerPath+"/accept-counter", nil, customerID, "customer")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSONRequest(r, http.MethodPost, offerPath+"/counter", map[string]any{"price": 6000}, designerID, "designer")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSONRequest(r, http.MethodGet, designPath, nil, customerID, "customer")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, []Action{ActionAcceptCounter, ActionReject, ActionChat}, list.Data[0].Actions)

	w = doJSONRequest(r, http.MethodPost, offerPath+"/accept-counter", nil, customerID, "customer")
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 6000.0, res.Data.Offer.Price)
	assert.NotNil(t, res.Data.ConversationID)

	w = doJSONRequest(r, http.MethodPost, offerPath+"/chat", nil, designerID, "designer")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSONRequest(r, http.MethodGet, "/api/v1/offers/mine", nil, designerID, "designer")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_UnknownOffer(t *testing.T) {
	r, _ := setupRouter(t)
	w := doJSONRequest(r, http.MethodPost, "/api/v1/offers/404/accept", nil, customerID, "customer")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSONRequest(r, http.MethodGet, "/api/v1/offers/x", nil, customerID, "customer")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
