package review

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hubal/internal/domain/auth"
	"hubal/internal/domain/designer"
)

const (
	customerID = int64(1)
	designerID = int64(2)
	otherID    = int64(3)
)

type pairGate map[[2]int64]bool

func (g pairGate) HasCompleted(_ context.Context, c, d int64) (bool, error) {
	return g[[2]int64{c, d}], nil
}

func (g pairGate) HasAccepted(_ context.Context, c, d int64) (bool, error) {
	return g[[2]int64{c, d}], nil
}

func (g pairGate) CompletedBetween(context.Context, int64, int64, int64) (bool, error) {
	return false, nil
}

type loggedRequest struct {
	customerID, designerID int64
	completed              bool
}

// requestLog answers pair eligibility from pairGate and anchors from byID.
type requestLog struct {
	pairGate
	byID map[int64]loggedRequest
}

func (l requestLog) CompletedBetween(_ context.Context, id, c, d int64) (bool, error) {
	r, ok := l.byID[id]
	return ok && r.completed && r.customerID == c && r.designerID == d, nil
}

type stubProfiles map[int64]auth.PublicProfile

func (p stubProfiles) PublicProfiles(_ context.Context, ids []int64) (map[int64]auth.PublicProfile, error) {
	out := map[int64]auth.PublicProfile{}
	for _, id := range ids {
		if v, ok := p[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewReview(ctx context.Context, designerID, reviewID int64, rating int) error {
	return m.Called(ctx, designerID, reviewID, rating).Error(0)
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	notifier *MockNotifier
}

func newFixture(t *testing.T, completed CompletedWork, accepted AcceptedOffers) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:review_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&designer.Designer{}, Model()))
	require.NoError(t, db.Create(&designer.Designer{UserID: designerID, City: "الرياض", IsActive: true}).Error)

	n := &MockNotifier{}
	profiles := stubProfiles{customerID: {UserID: customerID, Name: "Noura"}}
	return &fixture{
		svc:      NewService(NewRepository(db), completed, accepted, profiles, n),
		db:       db,
		notifier: n,
	}
}

func (f *fixture) designer(t *testing.T) designer.Designer {
	t.Helper()
	var d designer.Designer
	require.NoError(t, f.db.First(&d, "user_id = ?", designerID).Error)
	return d
}

func TestCreate_RequiresCompletedWork(t *testing.T) {
	f := newFixture(t, pairGate{}, pairGate{})

	_, err := f.svc.Create(context.Background(), customerID, CreateRequest{DesignerID: designerID, Rating: 5})
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCreate_AcceptedOfferCounts(t *testing.T) {
	f := newFixture(t, pairGate{}, pairGate{{customerID, designerID}: true})
	f.notifier.On("NotifyNewReview", mock.Anything, designerID, mock.Anything, 4).Return(nil).Once()

	rv, err := f.svc.Create(context.Background(), customerID, CreateRequest{DesignerID: designerID, Rating: 4, Comment: " great "})
	require.NoError(t, err)
	assert.Equal(t, "great", rv.Comment)
	f.notifier.AssertExpectations(t)
}

func TestCreate_ServiceRequestAnchorChecked(t *testing.T) {
	work := requestLog{
		pairGate: pairGate{{customerID, designerID}: true},
		byID: map[int64]loggedRequest{
			10: {customerID: otherID, designerID: designerID, completed: true},
			11: {customerID: customerID, designerID: designerID},
			12: {customerID: customerID, designerID: designerID, completed: true},
		},
	}
	f := newFixture(t, work, pairGate{})
	f.notifier.On("NotifyNewReview", mock.Anything, designerID, mock.Anything, 5).Return(nil).Once()
	ctx := context.Background()
	anchor := func(id int64) *int64 { return &id }

	cases := []struct {
		name string
		id   int64
	}{
		{"foreign request", 10},
		{"request not completed", 11},
		{"unknown request", 99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, ServiceRequestID: anchor(tc.id), Rating: 5})
			assert.ErrorIs(t, err, ErrInvalidServiceRequest)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(Model()).Count(&count).Error)
	assert.Zero(t, count)

	rv, err := f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, ServiceRequestID: anchor(12), Rating: 5})
	require.NoError(t, err)
	require.NotNil(t, rv.ServiceRequestID)
	assert.Equal(t, int64(12), *rv.ServiceRequestID)
	f.notifier.AssertExpectations(t)
}

func TestCreate_SecondReviewFailsDistinguishably(t *testing.T) {
	f := newFixture(t, pairGate{{customerID, designerID}: true}, pairGate{})
	f.notifier.On("NotifyNewReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, Rating: 3})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	// the unique index backs the pre-check
	err = NewRepository(f.db).Create(ctx, &Review{CustomerID: customerID, DesignerID: designerID, Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestRatingRecomputed(t *testing.T) {
	completed := pairGate{{customerID, designerID}: true, {otherID, designerID}: true}
	f := newFixture(t, completed, pairGate{})
	f.notifier.On("NotifyNewReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, otherID, CreateRequest{DesignerID: designerID, Rating: 2})
	require.NoError(t, err)

	d := f.designer(t)
	assert.Equal(t, 2, d.ReviewCount)
	assert.InDelta(t, 3.5, d.Rating, 0.001)

	_, err = f.svc.Update(ctx, customerID, first.ID, UpdateRequest{Rating: 4})
	require.NoError(t, err)
	d = f.designer(t)
	assert.Equal(t, 2, d.ReviewCount)
	assert.InDelta(t, 3.0, d.Rating, 0.001)
}

func TestUpdate_AuthorOnly(t *testing.T) {
	completed := pairGate{{customerID, designerID}: true}
	f := newFixture(t, completed, pairGate{})
	f.notifier.On("NotifyNewReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, otherID, rv.ID, UpdateRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(ctx, customerID, 999, UpdateRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	_, err = f.svc.Update(ctx, customerID, rv.ID, UpdateRequest{Rating: 1, Comment: strings.Repeat("c", MaxCommentLength+1)})
	assert.ErrorIs(t, err, ErrCommentTooLong)
}

func TestEligibility(t *testing.T) {
	completed := pairGate{{customerID, designerID}: true}
	f := newFixture(t, completed, pairGate{})
	f.notifier.On("NotifyNewReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	e, err := f.svc.Eligibility(ctx, customerID, designerID)
	require.NoError(t, err)
	assert.Equal(t, Eligibility{CanReview: true, HasCompletedWork: true}, *e)

	e, err = f.svc.Eligibility(ctx, otherID, designerID)
	require.NoError(t, err)
	assert.Equal(t, Eligibility{}, *e)

	_, err = f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, Rating: 5})
	require.NoError(t, err)

	e, err = f.svc.Eligibility(ctx, customerID, designerID)
	require.NoError(t, err)
	assert.Equal(t, Eligibility{CanReview: false, HasReviewed: true, HasCompletedWork: true}, *e)
}

func TestListByDesigner_NameFallback(t *testing.T) {
	completed := pairGate{{customerID, designerID}: true, {otherID, designerID}: true}
	f := newFixture(t, completed, pairGate{})
	f.notifier.On("NotifyNewReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, customerID, CreateRequest{DesignerID: designerID, Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, otherID, CreateRequest{DesignerID: designerID, Rating: 4})
	require.NoError(t, err)

	list, err := f.svc.ListByDesigner(ctx, designerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, otherID, list[0].CustomerID)
	assert.Equal(t, fallbackName, list[0].CustomerName)
	assert.Equal(t, "Noura", list[1].CustomerName)
}
