package services

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"civicreport-be/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeNotificationStore struct {
	notifications []*models.Notification
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationStore) ListByRecipient(ctx context.Context, recipient primitive.ObjectID, page, pageSize int) ([]*models.Notification, int64, error) {
	var mine []*models.Notification
	for _, n := range f.notifications {
		if n.Recipient == recipient {
			mine = append(mine, n)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	total := int64(len(mine))
	start := (page - 1) * pageSize
	if start > len(mine) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, recipient primitive.ObjectID) (bool, error) {
	for _, n := range f.notifications {
		if n.ID == id && n.Recipient == recipient {
			n.IsRead = true
			now := time.Now()
			n.ReadAt = &now
			return true, nil
		}
	}
	return false, nil
}

func newTestNotificationService(t *testing.T) (*NotificationService, *fakeNotificationStore) {
	t.Helper()
	store := &fakeNotificationStore{}
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewNotificationService(store, logger), store
}

func seedNotification(store *fakeNotificationStore, recipient primitive.ObjectID, createdAt time.Time) *models.Notification {
	n := &models.Notification{
		ID:        primitive.NewObjectID(),
		Recipient: recipient,
		Title:     "Issue Status Updated",
		Message:   "status changed",
		Type:      models.NotifStatusChange,
		Priority:  models.NotifPriorityMedium,
		CreatedAt: createdAt,
	}
	store.notifications = append(store.notifications, n)
	return n
}

func TestNotificationList_PagesNewestFirst(t *testing.T) {
	service, store := newTestNotificationService(t)
	ctx := context.Background()
	recipient := primitive.NewObjectID()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		seedNotification(store, recipient, base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(store, primitive.NewObjectID(), base) // someone else's

	page, err := service.List(ctx, recipient, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, int64(25), page.UnreadCount)
	require.Len(t, page.Notifications, 20)
	for i := 1; i < len(page.Notifications); i++ {
		assert.False(t, page.Notifications[i].CreatedAt.After(page.Notifications[i-1].CreatedAt))
	}

	second, err := service.List(ctx, recipient, 2, 20)
	require.NoError(t, err)
	assert.Len(t, second.Notifications, 5)
}

func TestNotificationList_ClampsPagination(t *testing.T) {
	service, store := newTestNotificationService(t)
	ctx := context.Background()
	recipient := primitive.NewObjectID()
	seedNotification(store, recipient, time.Now())

	page, err := service.List(ctx, recipient, -3, 100000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestNotificationMarkRead(t *testing.T) {
	service, store := newTestNotificationService(t)
	ctx := context.Background()
	recipient := primitive.NewObjectID()
	n := seedNotification(store, recipient, time.Now())

	require.NoError(t, service.MarkRead(ctx, n.ID, recipient))
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)

	count, err := service.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationMarkRead_WrongRecipient(t *testing.T) {
	service, store := newTestNotificationService(t)
	ctx := context.Background()
	n := seedNotification(store, primitive.NewObjectID(), time.Now())

	err := service.MarkRead(ctx, n.ID, primitive.NewObjectID())
	require.Error(t, err)
	se := AsServiceError(err)
	require.NotNil(t, se)
	assert.Equal(t, "NOT_FOUND", se.Code)
}
