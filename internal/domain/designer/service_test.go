package designer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hubal/internal/domain/auth"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Healthy() bool {
	return m.Called().Bool(0)
}

func (m *MockSearcher) Search(ctx context.Context, q, city string, limit int) ([]int64, error) {
	args := m.Called(ctx, q, city, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockSearcher) Index(ctx context.Context, docs ...Document) error {
	return m.Called(ctx, docs).Error(0)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:designer_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auth.Profile{}, &Designer{}))
	return db
}

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, db *gorm.DB, userID int64, name string, d Designer) {
	t.Helper()
	if name != "" {
		require.NoError(t, db.Create(&auth.Profile{UserID: userID, Name: name}).Error)
	}
	d.UserID = userID
	if d.City == "" {
		d.City = DefaultCity
	}
	d.IsActive = true
	require.NoError(t, db.Create(&d).Error)
}

func TestList_FiltersAndOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), auth.NewRepository(db), nil)

	seed(t, db, 1, "Low", Designer{Rating: 3.5, MinBudget: ptr(1000.0), MaxBudget: ptr(5000.0), Services: []string{"living"}})
	seed(t, db, 2, "High", Designer{Rating: 4.9, MinBudget: ptr(20000.0), MaxBudget: ptr(90000.0), Services: []string{"villa"}})
	seed(t, db, 3, "", Designer{Rating: 4.0, City: "جدة", BusinessName: ptr("Jeddah Studio"), Services: []string{}})
	require.NoError(t, db.Model(&Designer{}).Where("user_id = ?", 2).Update("is_active", false).Error)
	seed(t, db, 4, "Top", Designer{Rating: 5.0, Services: []string{}})

	all, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(4), all[0].UserID)
	assert.Equal(t, "Jeddah Studio", all[1].DisplayName)

	cheap, err := svc.List(context.Background(), ListFilter{City: DefaultCity, MinBudget: ptr(6000.0)})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, int64(4), cheap[0].UserID, "designer 1 tops out at 5000, designer 4 has no limit")
}

func TestGet_DisplayNameFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), auth.NewRepository(db), nil)
	seed(t, db, 7, "", Designer{Services: []string{}})

	v, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "مصمم", v.DisplayName)

	_, err = svc.Get(context.Background(), 8)
	assert.ErrorIs(t, err, ErrDesignerNotFound)
}

func TestEnsureProfile_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), auth.NewRepository(db), nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureProfile(ctx, 11, "Rawan Designs"))
	require.NoError(t, db.Model(&Designer{}).Where("user_id = ?", 11).Update("city", "الدمام").Error)
	require.NoError(t, svc.EnsureProfile(ctx, 11, "Other"))

	d, err := NewRepository(db).GetByUserID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "الدمام", d.City)
	assert.Equal(t, "Rawan Designs", *d.BusinessName)
	assert.True(t, d.IsActive)
}

func TestUpdateMine(t *testing.T) {
	db := newTestDB(t)
	searcher := new(MockSearcher)
	searcher.On("Healthy").Return(true)
	searcher.On("Index", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(NewRepository(db), auth.NewRepository(db), searcher)
	seed(t, db, 5, "Huda", Designer{Services: []string{}})

	_, err := svc.UpdateMine(context.Background(), 5, UpdateRequest{City: "جدة", MinBudget: ptr(9.0), MaxBudget: ptr(1.0), Services: []string{"x"}})
	assert.ErrorIs(t, err, ErrBudgetRange)

	v, err := svc.UpdateMine(context.Background(), 5, UpdateRequest{
		City:      "جدة",
		Bio:       ptr("Modern interiors"),
		MinBudget: ptr(1000.0),
		MaxBudget: ptr(50000.0),
		Services:  []string{"living rooms", "kitchens"},
	})
	require.NoError(t, err)
	assert.Equal(t, "جدة", v.City)
	assert.Equal(t, []string{"living rooms", "kitchens"}, []string(v.Services))
	assert.Empty(t, v.PortfolioImages)
	searcher.AssertCalled(t, "Index", mock.Anything, mock.Anything)

	_, err = svc.UpdateMine(context.Background(), 99, UpdateRequest{City: "جدة", Services: []string{"x"}})
	assert.ErrorIs(t, err, ErrDesignerNotFound)
}

func TestSearch_UsesIndexThenFallsBack(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 1, "Alpha", Designer{Bio: ptr("minimalist kitchens"), Services: []string{}})
	seed(t, db, 2, "Beta", Designer{Services: []string{"majlis"}})

	searcher := new(MockSearcher)
	searcher.On("Healthy").Return(true)
	searcher.On("Search", mock.Anything, "beta", "", searchLimit).Return([]int64{2, 1}, nil).Once()
	svc := NewService(NewRepository(db), auth.NewRepository(db), searcher)

	got, err := svc.Search(context.Background(), "beta", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].UserID)

	searcher.On("Search", mock.Anything, "kitchen", "", searchLimit).Return(nil, errors.New("down")).Once()
	got, err = svc.Search(context.Background(), "kitchen", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].UserID)

	noIndex := NewService(NewRepository(db), auth.NewRepository(db), nil)
	got, err = noIndex.Search(context.Background(), "majlis", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].UserID)
}

func TestSearchLike_WildcardsMatchLiterally(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, 1, "Alpha", Designer{Bio: ptr("100% natural materials"), Services: []string{}})
	seed(t, db, 2, "Beta", Designer{Bio: ptr("plain rooms"), Services: []string{}})
	seed(t, db, 3, "Gamma_Studio", Designer{Services: []string{}})
	repo := NewRepository(db)
	ctx := context.Background()

	cases := []struct {
		q    string
		want []int64
	}{
		{"%", []int64{1}},
		{"_", []int64{3}},
		{"0% n", []int64{1}},
		{`\`, nil},
	}
	for _, tc := range cases {
		got, err := repo.SearchLike(ctx, tc.q, "", searchLimit)
		require.NoError(t, err)
		var ids []int64
		for _, d := range got {
			ids = append(ids, d.UserID)
		}
		assert.Equal(t, tc.want, ids, "query %q", tc.q)
	}
}

func TestHitID(t *testing.T) {
	id, ok := hitID(json.RawMessage(`42`))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = hitID(json.RawMessage(`"17"`))
	assert.True(t, ok)
	assert.Equal(t, int64(17), id)

	_, ok = hitID(nil)
	assert.False(t, ok)
}
