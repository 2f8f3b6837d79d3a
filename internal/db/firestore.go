package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/katatrina/chatpush-BE/internal/util"
)

// FirestoreStore implements Store on top of a Firestore client.
// The client is constructed once at process start and shared read-only.
type FirestoreStore struct {
	client                 *firestore.Client
	chatCollection         string
	userCollection         string
	notificationCollection string
}

// NewStore creates a new Store.
func NewStore(client *firestore.Client, config util.Config) Store {
	return &FirestoreStore{
		client:                 client,
		chatCollection:         config.ChatCollection,
		userCollection:         config.UserCollection,
		notificationCollection: config.NotificationCollection,
	}
}

func (store *FirestoreStore) GetChat(ctx context.Context, chatID string) (Chat, error) {
	snapshot, err := store.client.Collection(store.chatCollection).Doc(chatID).Get(ctx)
	if err != nil {
		if snapshot != nil && !snapshot.Exists() {
			return Chat{}, ErrRecordNotFound
		}
		return Chat{}, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}

	var chat Chat
	if err = snapshot.DataTo(&chat); err != nil {
		return Chat{}, fmt.Errorf("failed to decode chat %s: %w", chatID, err)
	}

	return chat, nil
}

func (store *FirestoreStore) GetUser(ctx context.Context, userID string) (User, error) {
	snapshot, err := store.client.Collection(store.userCollection).Doc(userID).Get(ctx)
	if err != nil {
		if snapshot != nil && !snapshot.Exists() {
			return User{}, ErrRecordNotFound
		}
		return User{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	var user User
	if err = snapshot.DataTo(&user); err != nil {
		return User{}, fmt.Errorf("failed to decode user %s: %w", userID, err)
	}

	return user, nil
}

// CreateNotification inserts a new notification document with a generated ID.
// This insertion is what arms the dispatcher.
func (store *FirestoreStore) CreateNotification(ctx context.Context, record NotificationRecord) (string, error) {
	ref, _, err := store.client.Collection(store.notificationCollection).Add(ctx, map[string]interface{}{
		"to": record.To,
		"notification": map[string]interface{}{
			"title": record.Notification.Title,
			"body":  record.Notification.Body,
		},
		"data":      record.Data,
		"status":    string(record.Status),
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}

	return ref.ID, nil
}

func (store *FirestoreStore) MarkNotificationSent(ctx context.Context, notificationID, fcmMessageID string) error {
	return store.finalizeNotification(ctx, notificationID, []firestore.Update{
		{Path: "status", Value: string(NotificationStatusSent)},
		{Path: "sentAt", Value: firestore.ServerTimestamp},
		{Path: "messageId", Value: fcmMessageID},
	})
}

func (store *FirestoreStore) MarkNotificationFailed(ctx context.Context, notificationID, sendErr string) error {
	return store.finalizeNotification(ctx, notificationID, []firestore.Update{
		{Path: "status", Value: string(NotificationStatusError)},
		{Path: "sentAt", Value: firestore.ServerTimestamp},
		{Path: "error", Value: sendErr},
	})
}

// finalizeNotification applies the terminal update inside a transaction,
// writing only while the record is still pending. A redelivered creation
// event can therefore never overwrite a terminal status.
func (store *FirestoreStore) finalizeNotification(ctx context.Context, notificationID string, updates []firestore.Update) error {
	ref := store.client.Collection(store.notificationCollection).Doc(notificationID)

	return store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snapshot, err := tx.Get(ref)
		if err != nil {
			if snapshot != nil && !snapshot.Exists() {
				return ErrRecordNotFound
			}
			return err
		}

		currentStatus, err := snapshot.DataAt("status")
		if err != nil {
			return fmt.Errorf("failed to read notification status: %w", err)
		}
		if currentStatus != string(NotificationStatusPending) {
			return ErrAlreadyFinalized
		}

		return tx.Update(ref, updates)
	})
}

// UpdateUserFCMToken stores the device token on the user document and keeps a
// per-device registration record so stale tokens can be traced back.
func (store *FirestoreStore) UpdateUserFCMToken(ctx context.Context, userID, token string) error {
	userRef := store.client.Collection(store.userCollection).Doc(userID)

	_, err := userRef.Set(ctx, map[string]interface{}{
		"fcmToken":          token,
		"fcmTokenUpdatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update fcm token for user %s: %w", userID, err)
	}

	_, err = userRef.Collection("devices").Doc(uuid.New().String()).Set(ctx, map[string]interface{}{
		"token":        token,
		"registeredAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to record device registration for user %s: %w", userID, err)
	}

	return nil
}
