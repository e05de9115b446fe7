package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType enum
type NotificationType string

const (
	NotifIssueUpdate  NotificationType = "issue_update"
	NotifStatusChange NotificationType = "status_change"
	NotifAssignment   NotificationType = "assignment"
	NotifReminder     NotificationType = "reminder"
	NotifAnnouncement NotificationType = "announcement"
	NotifSystem       NotificationType = "system"
)

// NotificationPriority enum
type NotificationPriority string

const (
	NotifPriorityLow    NotificationPriority = "low"
	NotifPriorityMedium NotificationPriority = "medium"
	NotifPriorityHigh   NotificationPriority = "high"
	NotifPriorityUrgent NotificationPriority = "urgent"
)

// Notification is a one-way message to a user, produced as a side effect of
// issue transitions. Delivery is queued; a send failure never fails the
// mutation that produced it.
type Notification struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Recipient      primitive.ObjectID   `bson:"recipient" json:"recipient"`
	Title          string               `bson:"title" json:"title"`
	Message        string               `bson:"message" json:"message"`
	Type           NotificationType     `bson:"type" json:"type"`
	RelatedIssue   *primitive.ObjectID  `bson:"relatedIssue,omitempty" json:"relatedIssue,omitempty"`
	Priority       NotificationPriority `bson:"priority" json:"priority"`
	ActionRequired bool                 `bson:"actionRequired" json:"actionRequired"`
	IsRead         bool                 `bson:"isRead" json:"isRead"`
	ReadAt         *time.Time           `bson:"readAt,omitempty" json:"readAt,omitempty"`
	IsSent         bool                 `bson:"isSent" json:"isSent"`
	SentAt         *time.Time           `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}
