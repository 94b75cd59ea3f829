package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hubal/internal/domain/roomdesign"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, imageURL, prompt string) (*Result, error) {
	args := m.Called(ctx, imageURL, prompt)
	if r, ok := args.Get(0).(*Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDesignGenerated(ctx context.Context, customerID, roomDesignID int64) error {
	return m.Called(ctx, customerID, roomDesignID).Error(0)
}

type fixture struct {
	svc      *Service
	designs  *roomdesign.Service
	gateway  *MockGateway
	notifier *MockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:generation_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&roomdesign.RoomDesign{}))

	designs := roomdesign.NewService(roomdesign.NewRepository(db))
	gw := &MockGateway{}
	n := &MockNotifier{}
	return &fixture{svc: NewService(designs, gw, n), designs: designs, gateway: gw, notifier: n}
}

func (f *fixture) draft(t *testing.T) *roomdesign.RoomDesign {
	t.Helper()
	d, err := f.designs.Create(context.Background(), 1, roomdesign.CreateRequest{
		OriginalImageURL: "https://img/u1.jpg",
		Prompt:           "modern warm living room",
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) status(t *testing.T, id int64) roomdesign.Status {
	t.Helper()
	d, err := f.designs.GetOwned(context.Background(), 1, id)
	require.NoError(t, err)
	return d.Status
}

func TestGenerate_MissingInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Generate(context.Background(), 1, Request{ImageURL: "https://img/u1.jpg", Prompt: "  "})
	assert.ErrorIs(t, err, ErrMissingInput)
	_, err = f.svc.Generate(context.Background(), 1, Request{Prompt: "p"})
	assert.ErrorIs(t, err, ErrMissingInput)
	f.gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_SuccessCompletesDesign(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)
	f.gateway.On("Generate", mock.Anything, d.OriginalImageURL, d.Prompt).
		Return(&Result{ImageURL: "https://img/gen.png", Text: "done"}, nil).Once()
	f.notifier.On("NotifyDesignGenerated", mock.Anything, int64(1), d.ID).Return(nil).Once()

	out, err := f.svc.GenerateForDesign(context.Background(), 1, d.ID)
	require.NoError(t, err)
	assert.Equal(t, &Output{GeneratedImageURL: "https://img/gen.png", Description: "done"}, out)
	assert.Equal(t, roomdesign.StatusCompleted, f.status(t, d.ID))
	f.notifier.AssertExpectations(t)
}

func TestGenerate_FailuresMarkDesignFailed(t *testing.T) {
	cases := []struct {
		name   string
		result *Result
		err    error
		check  func(t *testing.T, err error)
	}{
		{"rate limited", nil, ErrRateLimited, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrRateLimited) }},
		{"payment", nil, ErrPaymentRequired, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrPaymentRequired) }},
		{"no image", &Result{Text: "sorry"}, nil, func(t *testing.T, err error) {
			var ni *NoImageError
			require.ErrorAs(t, err, &ni)
			assert.Equal(t, "sorry", ni.Details)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			d := f.draft(t)
			f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(tc.result, tc.err).Once()

			_, err := f.svc.Generate(context.Background(), 1, Request{ImageURL: d.OriginalImageURL, Prompt: d.Prompt, RoomDesignID: &d.ID})
			tc.check(t, err)
			assert.Equal(t, roomdesign.StatusFailed, f.status(t, d.ID))
			f.notifier.AssertNotCalled(t, "NotifyDesignGenerated", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGenerate_CancelledRequestMarksDesignFailed(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.gateway.On("Generate", mock.Anything, d.OriginalImageURL, d.Prompt).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled).Once()

	_, err := f.svc.GenerateForDesign(ctx, 1, d.ID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, roomdesign.StatusFailed, f.status(t, d.ID))

	f.gateway.On("Generate", mock.Anything, d.OriginalImageURL, d.Prompt).
		Return(&Result{ImageURL: "https://img/gen.png"}, nil).Once()
	f.notifier.On("NotifyDesignGenerated", mock.Anything, int64(1), d.ID).Return(nil).Once()
	_, err = f.svc.GenerateForDesign(context.Background(), 1, d.ID)
	require.NoError(t, err)

	published, err := f.designs.Publish(context.Background(), 1, d.ID)
	require.NoError(t, err)
	assert.Equal(t, roomdesign.StatusOpen, published.Status)
}

// brokenStore fails to persist the generated image.
type brokenStore struct {
	*roomdesign.Service
}

func (brokenStore) CompleteGeneration(context.Context, int64, string) (*roomdesign.RoomDesign, error) {
	return nil, errors.New("disk full")
}

func TestGenerate_StoreFailureMarksDesignFailed(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)
	svc := NewService(brokenStore{f.designs}, f.gateway, f.notifier)
	f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&Result{ImageURL: "https://img/gen.png"}, nil).Once()

	_, err := svc.GenerateForDesign(context.Background(), 1, d.ID)
	require.Error(t, err)
	assert.Equal(t, roomdesign.StatusFailed, f.status(t, d.ID))
	f.notifier.AssertNotCalled(t, "NotifyDesignGenerated", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_NotOwner(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	_, err := f.svc.Generate(context.Background(), 2, Request{ImageURL: "https://img/x.jpg", Prompt: "p", RoomDesignID: &d.ID})
	assert.ErrorIs(t, err, roomdesign.ErrForbidden)
	assert.Equal(t, roomdesign.StatusPending, f.status(t, d.ID))
}

func TestGenerate_WithoutDesign(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("Generate", mock.Anything, "https://img/x.jpg", "p").Return(&Result{ImageURL: "https://img/y.png"}, nil).Once()

	out, err := f.svc.Generate(context.Background(), 1, Request{ImageURL: "https://img/x.jpg", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "https://img/y.png", out.GeneratedImageURL)
}

func setupRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})
	RegisterRoutes(group, NewHandler(f.svc), func(c *gin.Context) { c.Next() })
	return r
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User-ID", "1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_FunctionContract(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f)
	d := f.draft(t)

	w := post(r, "/api/v1/functions/generate-room-design", map[string]any{"prompt": "p"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"image URL and prompt are required"}`, w.Body.String())

	f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, ErrRateLimited).Once()
	w = post(r, "/api/v1/functions/generate-room-design", map[string]any{"imageUrl": d.OriginalImageURL, "prompt": d.Prompt, "roomDesignId": d.ID})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Rate limits exceeded, please try again later."}`, w.Body.String())

	f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, ErrPaymentRequired).Once()
	w = post(r, "/api/v1/functions/generate-room-design", map[string]any{"imageUrl": d.OriginalImageURL, "prompt": d.Prompt, "roomDesignId": d.ID})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"error":"Payment required, please add funds to your workspace."}`, w.Body.String())

	f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&Result{Text: "text only"}, nil).Once()
	w = post(r, "/api/v1/functions/generate-room-design", map[string]any{"imageUrl": d.OriginalImageURL, "prompt": d.Prompt, "roomDesignId": d.ID})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to generate image","details":"text only"}`, w.Body.String())

	f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(&Result{ImageURL: "https://img/gen.png", Text: "ok"}, nil).Once()
	f.notifier.On("NotifyDesignGenerated", mock.Anything, int64(1), d.ID).Return(nil).Once()
	w = post(r, "/api/v1/functions/generate-room-design", map[string]any{"imageUrl": d.OriginalImageURL, "prompt": d.Prompt, "roomDesignId": d.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"generatedImageUrl":"https://img/gen.png","description":"ok"}`, w.Body.String())
}

func TestHandler_GenerateForDesignEnvelope(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f)
	d := f.draft(t)

	f.gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, ErrRateLimited).Once()
	w := post(r, "/api/v1/room-designs/"+strconv.FormatInt(d.ID, 10)+"/generate", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	w = post(r, "/api/v1/room-designs/999/generate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
