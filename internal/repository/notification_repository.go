package repository

import (
	"context"

	"regassist-be/internal/model"

	"github.com/google/uuid"
)

// NotificationRepository backs the staff inbox. Rows land here when bus
// events (feedback submissions, rejections, broadcasts) resolve to persisted
// notifications; the websocket push is separate and does not go through
// this repository.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	// Registry lookups, used when resolving an event code to its targets.
	GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error)
	GetUsersByRole(ctx context.Context, role string) ([]model.User, error)
}
