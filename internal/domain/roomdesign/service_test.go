package roomdesign

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:roomdesign_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&RoomDesign{}))
	return db
}

func newTestService(t *testing.T) (*Service, Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	return NewService(repo), repo
}

func TestCreate_PromptBounds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		prompt string
		err    error
	}{
		{"empty", "", ErrInvalidPrompt},
		{"whitespace", "   ", ErrInvalidPrompt},
		{"one", "x", nil},
		{"max", strings.Repeat("ب", MaxPromptLength), nil},
		{"too long", strings.Repeat("ب", MaxPromptLength+1), ErrInvalidPrompt},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, 1, CreateRequest{OriginalImageURL: "https://img/u1.jpg", Prompt: tc.prompt})
		if tc.err == nil {
			assert.NoError(t, err, tc.name)
		} else {
			assert.ErrorIs(t, err, tc.err, tc.name)
		}
	}
}

func TestCreate_PublishOpensImmediately(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, 1, CreateRequest{OriginalImageURL: "https://img/u1.jpg", Prompt: "modern warm living room"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, draft.Status)

	open, err := svc.Create(ctx, 1, CreateRequest{OriginalImageURL: "https://img/u2.jpg", Prompt: "minimal kitchen", Publish: true})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, open.Status)

	list, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestGenerationCycle(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, CreateRequest{OriginalImageURL: "https://img/u1.jpg", Prompt: "modern warm living room"})
	require.NoError(t, err)

	_, err = svc.MarkGenerating(ctx, 2, d.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.MarkGenerating(ctx, 1, d.ID)
	require.NoError(t, err)

	// a second generate while one is running is rejected
	_, err = svc.MarkGenerating(ctx, 1, d.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, svc.FailGeneration(ctx, d.ID))

	_, err = svc.MarkGenerating(ctx, 1, d.ID)
	require.NoError(t, err)
	done, err := svc.CompleteGeneration(ctx, d.ID, "https://img/gen.png")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	stored, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GeneratedImageURL)
	assert.Equal(t, "https://img/gen.png", *stored.GeneratedImageURL)

	_, err = svc.Publish(ctx, 1, d.ID)
	require.NoError(t, err)
}

func TestStartWork(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, CreateRequest{OriginalImageURL: "https://img/u1.jpg", Prompt: "p", Publish: true})
	require.NoError(t, err)

	_, err = svc.StartWork(ctx, 5, d.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, repo.UpdateStatus(ctx, d.ID, StatusOpen, StatusAccepted, map[string]any{"designer_id": int64(5), "accepted_offer_id": int64(3)}))

	_, err = svc.StartWork(ctx, 6, d.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	started, err := svc.StartWork(ctx, 5, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, started.Status)

	got, err := svc.Get(ctx, 5, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)

	_, err = svc.Get(ctx, 7, d.ID)
	assert.ErrorIs(t, err, ErrDesignNotFound)
}

func TestRepository_ConditionalUpdate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, CreateRequest{OriginalImageURL: "https://img/u1.jpg", Prompt: "p", Publish: true})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, d.ID, StatusOpen, StatusAccepted, nil))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, d.ID, StatusOpen, StatusAccepted, nil), ErrStatusChanged)
}
