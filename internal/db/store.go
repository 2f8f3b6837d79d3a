package db

import (
	"context"
)

// Store provides all functions to read and mutate the chat documents.
type Store interface {
	GetChat(ctx context.Context, chatID string) (Chat, error)
	GetUser(ctx context.Context, userID string) (User, error)
	CreateNotification(ctx context.Context, record NotificationRecord) (notificationID string, err error)
	// MarkNotificationSent writes the sent status, sentAt and the FCM message ID,
	// only if the record is still pending.
	MarkNotificationSent(ctx context.Context, notificationID, fcmMessageID string) error
	// MarkNotificationFailed writes the error status, sentAt and the failure
	// message, only if the record is still pending.
	MarkNotificationFailed(ctx context.Context, notificationID, sendErr string) error
	UpdateUserFCMToken(ctx context.Context, userID, token string) error
}
