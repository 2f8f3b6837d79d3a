package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/katatrina/chatpush-BE/internal/fcm"
	"github.com/rs/zerolog/log"
)

/*
 This file contains code that will pick up the tasks from the Redis queue and process them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

type RedisTaskProcessor struct {
	server *asynq.Server
	store  db.Store
	sender fcm.Sender
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, store db.Store, sender fcm.Sender) *RedisTaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)

	return &RedisTaskProcessor{
		server: server,
		store:  store,
		sender: sender,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskMessageCreated, processor.ProcessTaskMessageCreated)
	mux.HandleFunc(TaskNotificationCreated, processor.ProcessTaskNotificationCreated)

	return processor.server.Start(mux)
}
