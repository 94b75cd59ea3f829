package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hubal/internal/storage"
)

const MaxFileSize = 10 * 1024 * 1024 // 10 MB

// allowedMimeTypes maps accepted sniffed types to the stored extension.
var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service stores images in the configured object store and records them.
type Service struct {
	repo  Repository
	store storage.Store
}

func NewService(repo Repository, store storage.Store) *Service {
	return &Service{repo: repo, store: store}
}

// Upload stores the file under <purpose>/<uuid>.<ext> and returns its record.
func (s *Service) Upload(ctx context.Context, userID int64, purpose Purpose, fileHeader *multipart.FileHeader) (*Upload, error) {
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose
	}
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return s.Put(ctx, userID, purpose, file, fileHeader.Size)
}

// Put sniffs, stores and records an image read from r.
func (s *Service) Put(ctx context.Context, userID int64, purpose Purpose, r io.ReadSeeker, size int64) (*Upload, error) {
	// Detect MIME type from first 512 bytes
	buf := make([]byte, 512)
	n, _ := io.ReadFull(r, buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]

	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return nil, ErrInvalidMimeType
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind file: %w", err)
	}

	id := uuid.New().String()
	key := string(purpose) + "/" + id + ext

	url, err := s.store.Put(ctx, key, r, size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}

	upload := &Upload{
		ID:        id,
		UserID:    userID,
		Purpose:   purpose,
		ObjectKey: key,
		URL:       url,
		MimeType:  mimeType,
		Size:      size,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		_ = s.store.Delete(ctx, key) // rollback object on DB error
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("upload_id", id).
		Str("key", key).
		Int64("size", size).
		Msg("image stored")
	return upload, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the stored object and the record.
func (s *Service) Delete(ctx context.Context, id string, userID int64) error {
	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if upload.UserID != userID {
		return ErrNotOwner
	}

	if err := s.store.Delete(ctx, upload.ObjectKey); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", upload.ObjectKey).Msg("delete stored object failed")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID int64, purpose Purpose) ([]*Upload, error) {
	return s.repo.ListByUserID(ctx, userID, purpose)
}
