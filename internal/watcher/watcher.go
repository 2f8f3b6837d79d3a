package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hibiken/asynq"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/katatrina/chatpush-BE/internal/util"
	"github.com/katatrina/chatpush-BE/internal/worker"
	"github.com/rs/zerolog/log"
)

// MessageSubcollection is the sub-collection holding a chat's messages.
const MessageSubcollection = "messages"

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = time.Minute
)

// Watcher subscribes to document-creation events and re-dispatches each one
// as an explicit queued task. The task ID is the deterministic key
// "<collection>:<document id>", so a duplicate snapshot of the same creation
// dedupes at enqueue while queue-level redelivery keeps at-least-once
// semantics downstream. No ordering between independent events is guaranteed
// or needed.
type Watcher struct {
	client                 *firestore.Client
	distributor            worker.TaskDistributor
	notificationCollection string
	taskRetention          asynq.Option
}

func New(client *firestore.Client, distributor worker.TaskDistributor, config util.Config) *Watcher {
	return &Watcher{
		client:                 client,
		distributor:            distributor,
		notificationCollection: config.NotificationCollection,
		taskRetention:          asynq.Retention(config.TaskRetention),
	}
}

// Start launches both listeners. They run until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx, "message listener", w.listenMessages)
	go w.watch(ctx, "notification listener", w.listenNotifications)
}

// watch keeps a snapshot listener alive until ctx is cancelled. A broken
// listener is re-established with a capped exponential delay; the delay
// resets once a reconnect delivers a snapshot again.
func (w *Watcher) watch(ctx context.Context, name string, listen func(ctx context.Context) (bool, error)) {
	var delay time.Duration

	for {
		received, err := listen(ctx)
		if ctx.Err() != nil {
			return
		}

		if received {
			delay = 0
		}
		delay = nextReconnectDelay(delay)

		log.Error().Err(err).Str("listener", name).Dur("retry_in", delay).
			Msg("listener interrupted, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// nextReconnectDelay doubles the previous delay up to a cap.
func nextReconnectDelay(current time.Duration) time.Duration {
	if current <= 0 {
		return initialReconnectDelay
	}

	next := current * 2
	if next > maxReconnectDelay {
		return maxReconnectDelay
	}
	return next
}

// listenMessages watches across every chat's messages sub-collection and
// enqueues a message:created task per new document. It reports whether at
// least one snapshot arrived before the iterator broke.
func (w *Watcher) listenMessages(ctx context.Context) (bool, error) {
	iter := w.client.CollectionGroup(MessageSubcollection).Snapshots(ctx)
	defer iter.Stop()

	// The first snapshot replays every existing document as an add.
	// Only documents created after the listener starts are dispatched.
	first := true

	for {
		snapshot, err := iter.Next()
		if err != nil {
			return !first, err
		}

		if first {
			first = false
			continue
		}

		for _, change := range snapshot.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			w.dispatchMessage(ctx, change.Doc)
		}
	}
}

func (w *Watcher) dispatchMessage(ctx context.Context, doc *firestore.DocumentSnapshot) {
	chatRef := doc.Ref.Parent.Parent
	if chatRef == nil {
		log.Warn().Str("path", doc.Ref.Path).Msg("message document has no parent chat, skipping")
		return
	}

	var message db.ChatMessage
	if err := doc.DataTo(&message); err != nil {
		log.Error().Err(err).Str("path", doc.Ref.Path).Msg("failed to decode message document")
		return
	}

	payload := &worker.PayloadMessageCreated{
		ChatID:     chatRef.ID,
		MessageID:  doc.Ref.ID,
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Text:       message.Text,
		Type:       message.Type,
	}

	taskID := fmt.Sprintf("%s:%s:%s", MessageSubcollection, chatRef.ID, doc.Ref.ID)
	err := w.distributor.DistributeTaskMessageCreated(ctx, payload,
		asynq.TaskID(taskID),
		asynq.Queue(worker.QueueDefault),
		w.taskRetention,
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Debug().Str("task_id", taskID).Msg("creation event already enqueued, skipping duplicate")
			return
		}
		log.Error().Err(err).Str("task_id", taskID).Msg("failed to enqueue message:created task")
	}
}

// listenNotifications watches the notifications collection and enqueues a
// notification:created task per new record.
func (w *Watcher) listenNotifications(ctx context.Context) (bool, error) {
	iter := w.client.Collection(w.notificationCollection).Snapshots(ctx)
	defer iter.Stop()

	first := true

	for {
		snapshot, err := iter.Next()
		if err != nil {
			return !first, err
		}

		if first {
			first = false
			continue
		}

		for _, change := range snapshot.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			w.dispatchNotification(ctx, change.Doc)
		}
	}
}

func (w *Watcher) dispatchNotification(ctx context.Context, doc *firestore.DocumentSnapshot) {
	var record db.NotificationRecord
	if err := doc.DataTo(&record); err != nil {
		log.Error().Err(err).Str("path", doc.Ref.Path).Msg("failed to decode notification document")
		return
	}

	payload := &worker.PayloadNotificationCreated{
		NotificationID: doc.Ref.ID,
		To:             record.To,
		Title:          record.Notification.Title,
		Body:           record.Notification.Body,
		Data:           record.Data,
	}

	taskID := fmt.Sprintf("%s:%s", w.notificationCollection, doc.Ref.ID)
	err := w.distributor.DistributeTaskNotificationCreated(ctx, payload,
		asynq.TaskID(taskID),
		asynq.Queue(worker.QueueCritical),
		w.taskRetention,
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Debug().Str("task_id", taskID).Msg("creation event already enqueued, skipping duplicate")
			return
		}
		log.Error().Err(err).Str("task_id", taskID).Msg("failed to enqueue notification:created task")
	}
}
