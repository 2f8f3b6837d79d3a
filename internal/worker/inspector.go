package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

type TaskInspector interface {
	GetQueueInfo(ctx context.Context, queue string) (*asynq.QueueInfo, error)
	ListQueues(ctx context.Context) ([]string, error)
}

type RedisTaskInspector struct {
	inspector *asynq.Inspector
}

func NewTaskInspector(redisOpt asynq.RedisClientOpt) TaskInspector {
	return &RedisTaskInspector{
		inspector: asynq.NewInspector(redisOpt),
	}
}

func (i *RedisTaskInspector) GetQueueInfo(ctx context.Context, queue string) (*asynq.QueueInfo, error) {
	return i.inspector.GetQueueInfo(queue)
}

func (i *RedisTaskInspector) ListQueues(ctx context.Context) ([]string, error) {
	return i.inspector.Queues()
}
