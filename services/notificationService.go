package services

import (
	"context"
	"fmt"

	"civicreport-be/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStore is the persistence contract for delivered notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipient primitive.ObjectID, page, pageSize int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, recipient primitive.ObjectID) (bool, error)
}

// NotificationService exposes a user's notification inbox.
type NotificationService struct {
	store  NotificationStore
	logger *logrus.Logger
}

func NewNotificationService(store NotificationStore, logger *logrus.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// NotificationPage is one page of a recipient's inbox plus its tallies.
type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unreadCount"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"pageSize"`
}

// List returns one newest-first page of the recipient's notifications.
func (s *NotificationService) List(ctx context.Context, recipient primitive.ObjectID, page, pageSize int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.store.ListByRecipient(ctx, recipient, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnread(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	return &NotificationPage{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// UnreadCount returns how many unread notifications the recipient has.
func (s *NotificationService) UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	count, err := s.store.CountUnread(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipient primitive.ObjectID) error {
	found, err := s.store.MarkRead(ctx, id, recipient)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !found {
		return notFound("notification not found")
	}
	return nil
}
