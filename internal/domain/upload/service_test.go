package upload

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hubal/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:upload_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Upload{}))

	dir := t.TempDir()
	return NewService(NewRepository(db), storage.NewLocalStore(dir, "/static/uploads")), dir
}

func TestPut_StoresUnderPurposeKey(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	u, err := svc.Put(ctx, 7, PurposeRoomDesigns, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)

	assert.Equal(t, "image/png", u.MimeType)
	assert.Equal(t, "room-designs/"+u.ID+".png", u.ObjectKey)
	assert.Equal(t, "/static/uploads/room-designs/"+u.ID+".png", u.URL)

	data, err := os.ReadFile(filepath.Join(dir, "room-designs", u.ID+".png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	list, err := svc.ListByUser(ctx, 7, PurposeRoomDesigns)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.ListByUser(ctx, 7, PurposeAvatars)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPut_RejectsNonImages(t *testing.T) {
	svc, _ := newTestService(t)
	body := []byte("just some text, not an image")

	_, err := svc.Put(context.Background(), 7, PurposeAvatars, bytes.NewReader(body), int64(len(body)))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	u, err := svc.Put(ctx, 7, PurposePortfolio, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, u.ID, 8), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, u.ID, 7))

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(u.ObjectKey)))
	assert.True(t, os.IsNotExist(err))
	_, err = svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func multipartRequest(t *testing.T, purpose string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("purpose", purpose))
	fw, err := mw.CreateFormFile("file", "room.png")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User-ID", "7")
	return req
}

func TestHandler_Upload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})
	RegisterRoutes(group, NewHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "room-designs", pngHeader))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"/static/uploads/room-designs/`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "documents", pngHeader))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "avatars", []byte(strings.Repeat("a", 100))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
