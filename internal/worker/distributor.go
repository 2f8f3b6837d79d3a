package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	TaskMessageCreated      = "message:created"
	TaskNotificationCreated = "notification:created"
)

/*
This file will contain the codes to create tasks and distributes them to the Redis queue.
*/

type TaskDistributor interface {
	DistributeTaskMessageCreated(ctx context.Context, payload *PayloadMessageCreated, opts ...asynq.Option) error
	DistributeTaskNotificationCreated(ctx context.Context, payload *PayloadNotificationCreated, opts ...asynq.Option) error
}

type RedisTaskDistributor struct {
	client *asynq.Client // client sends tasks to redis queue.
}

func NewTaskDistributor(redisOpt asynq.RedisClientOpt) TaskDistributor {
	client := asynq.NewClient(redisOpt)

	return &RedisTaskDistributor{
		client: client,
	}
}
