package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/katatrina/chatpush-BE/internal/fcm"
	"github.com/rs/zerolog/log"
)

// PayloadNotificationCreated contain all data of the task that we want to store in Redis.
type PayloadNotificationCreated struct {
	NotificationID string
	To             string
	Title          string
	Body           string
	Data           map[string]string
}

func (distributor *RedisTaskDistributor) DistributeTaskNotificationCreated(
	ctx context.Context,
	payload *PayloadNotificationCreated,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskNotificationCreated, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Bytes("payload", task.Payload()).Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("task enqueued")

	return nil
}

// ProcessTaskNotificationCreated sends a pending notification record through
// FCM and writes back exactly one terminal status. A failed send is recorded
// on the document and never retried automatically; a permanently invalid
// token needs the owning user to re-register, so retrying would only fan out
// forever.
func (processor *RedisTaskProcessor) ProcessTaskNotificationCreated(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadNotificationCreated
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	// A record without a destination token can never be delivered. It still
	// gets its terminal write so it does not sit pending forever.
	if payload.To == "" {
		log.Warn().Str("notification_id", payload.NotificationID).
			Msg("notification has no destination token")

		if markErr := processor.store.MarkNotificationFailed(ctx, payload.NotificationID, "missing destination token"); markErr != nil {
			processor.logFinalizeError(markErr, payload.NotificationID)
		}
		return nil
	}

	messageID, err := processor.sender.Send(ctx, fcm.PushMessage{
		Token: payload.To,
		Title: payload.Title,
		Body:  payload.Body,
		Data:  payload.Data,
	})
	if err != nil {
		log.Error().Err(err).Str("notification_id", payload.NotificationID).
			Msg("failed to send push message")

		if markErr := processor.store.MarkNotificationFailed(ctx, payload.NotificationID, err.Error()); markErr != nil {
			processor.logFinalizeError(markErr, payload.NotificationID)
		}
		return nil
	}

	if err = processor.store.MarkNotificationSent(ctx, payload.NotificationID, messageID); err != nil {
		processor.logFinalizeError(err, payload.NotificationID)
		return nil
	}

	log.Info().Str("type", task.Type()).Str("notification_id", payload.NotificationID).
		Str("message_id", messageID).Msg("task processed")

	return nil
}

func (processor *RedisTaskProcessor) logFinalizeError(err error, notificationID string) {
	// A redelivered creation event loses the conditional update to the first
	// delivery. The existing terminal status wins.
	if errors.Is(err, db.ErrAlreadyFinalized) {
		log.Info().Str("notification_id", notificationID).
			Msg("notification already finalized, keeping existing status")
		return
	}

	log.Error().Err(err).Str("notification_id", notificationID).
		Msg("failed to update notification status")
}
