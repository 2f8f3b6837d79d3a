package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/rs/zerolog/log"
)

const (
	NotificationTypeNewMessage = "new_message"
	ClickActionFlutter         = "FLUTTER_NOTIFICATION_CLICK"
)

// PayloadMessageCreated contain all data of the task that we want to store in Redis.
type PayloadMessageCreated struct {
	ChatID     string
	MessageID  string
	SenderID   string
	SenderName string
	Text       string
	Type       string
}

func (distributor *RedisTaskDistributor) DistributeTaskMessageCreated(
	ctx context.Context,
	payload *PayloadMessageCreated,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskMessageCreated, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Bytes("payload", task.Payload()).Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("task enqueued")

	return nil
}

// ProcessTaskMessageCreated resolves the recipient of a freshly created chat
// message and writes a pending notification record for them. Every missing
// relation (chat, recipient, token) is an expected no-op, and operational
// errors are logged and swallowed so the queue does not retry-storm a
// permanently broken message.
func (processor *RedisTaskProcessor) ProcessTaskMessageCreated(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadMessageCreated
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	if payload.SenderID == "" {
		log.Warn().Str("chat_id", payload.ChatID).Str("message_id", payload.MessageID).
			Msg("message has no sender data, skipping")
		return nil
	}

	chat, err := processor.store.GetChat(ctx, payload.ChatID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			log.Warn().Str("chat_id", payload.ChatID).Msg("chat does not exist, skipping")
			return nil
		}
		log.Error().Err(err).Str("chat_id", payload.ChatID).Msg("failed to get chat")
		return nil
	}

	var recipientID string
	for _, participantID := range chat.Participants {
		if participantID != payload.SenderID {
			recipientID = participantID
			break
		}
	}
	if recipientID == "" {
		log.Warn().Str("chat_id", payload.ChatID).Str("sender_id", payload.SenderID).
			Msg("no recipient found in chat participants, skipping")
		return nil
	}

	user, err := processor.store.GetUser(ctx, recipientID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			log.Warn().Str("user_id", recipientID).Msg("recipient does not exist, skipping")
			return nil
		}
		log.Error().Err(err).Str("user_id", recipientID).Msg("failed to get recipient")
		return nil
	}

	// Expected path for a recipient who never granted notification permission.
	if user.FCMToken == "" {
		log.Info().Str("user_id", recipientID).Msg("recipient has no device token, skipping")
		return nil
	}

	senderName := payload.SenderName
	if senderName == "" {
		senderName = "Someone"
	}

	body := payload.Text
	if body == "" {
		body = "You have a new message"
	}

	record := db.NotificationRecord{
		To: user.FCMToken,
		Notification: db.NotificationPayload{
			Title: fmt.Sprintf("New message from %s", senderName),
			Body:  body,
		},
		Data: map[string]string{
			"type":         NotificationTypeNewMessage,
			"chatId":       payload.ChatID,
			"senderId":     payload.SenderID,
			"messageId":    payload.MessageID,
			"click_action": ClickActionFlutter,
		},
		Status: db.NotificationStatusPending,
	}

	notificationID, err := processor.store.CreateNotification(ctx, record)
	if err != nil {
		log.Error().Err(err).Str("chat_id", payload.ChatID).Str("message_id", payload.MessageID).
			Msg("failed to create notification record")
		return nil
	}

	log.Info().Str("type", task.Type()).Str("notification_id", notificationID).
		Str("recipient_id", recipientID).Msg("task processed")

	return nil
}
