package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"smart-docs/internal/retry"
)

const maxRetryDelay = time.Minute

// Message headers set on every published task.
const (
	headerTaskID   = "Smartdocs-Task-Id"
	headerTaskType = "Smartdocs-Task-Type"
	headerAttempt  = "Smartdocs-Attempt"
)

// NATSOptions tunes subjects and redelivery. Zero values take the defaults.
type NATSOptions struct {
	SubjectPrefix  string        // default "smartdocs.tasks."
	GroupPrefix    string        // default "archivers-"
	MaxAttempts    int           // default 5
	RetryBase      time.Duration // default 1s
	HandlerTimeout time.Duration // default 30s
}

func (o NATSOptions) withDefaults() NATSOptions {
	if o.SubjectPrefix == "" {
		o.SubjectPrefix = "smartdocs.tasks."
	}
	if o.GroupPrefix == "" {
		o.GroupPrefix = "archivers-"
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.RetryBase <= 0 {
		o.RetryBase = time.Second
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = 30 * time.Second
	}
	return o
}

// NewNATS constructs a NATS-backed queue. Workers of the same task type share
// a queue group, so each event is archived once.
func NewNATS(log *slog.Logger, nc *nats.Conn, opts NATSOptions) Queue {
	return &natsQueue{log: log, nc: nc, opts: opts.withDefaults()}
}

type natsQueue struct {
	log  *slog.Logger
	nc   *nats.Conn
	opts NATSOptions
}

func (q *natsQueue) subject(t TaskType) string { return q.opts.SubjectPrefix + string(t) }

func (q *natsQueue) Enqueue(_ context.Context, task Task) error {
	msg, err := q.encode(task)
	if err != nil {
		return err
	}
	return q.nc.PublishMsg(msg)
}

func (q *natsQueue) encode(task Task) (*nats.Msg, error) {
	if task.Type == "" {
		return nil, errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.MaxAttempts == 0 {
		task.MaxAttempts = q.opts.MaxAttempts
	}
	body, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	msg := nats.NewMsg(q.subject(task.Type))
	msg.Data = body
	msg.Header.Set(headerTaskID, task.ID.String())
	msg.Header.Set(headerTaskType, string(task.Type))
	msg.Header.Set(headerAttempt, strconv.Itoa(task.Attempts))
	return msg, nil
}

func (q *natsQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	group := q.opts.GroupPrefix + string(taskType)
	sub, err := q.nc.QueueSubscribe(q.subject(taskType), group, func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	q.log.Info("worker subscribed", "subject", sub.Subject, "group", group)
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "subject", msg.Subject, "task_id", msg.Header.Get(headerTaskID), "err", err)
		return
	}

	if wait := time.Until(task.NotBefore); wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	hctx, cancel := context.WithTimeout(ctx, q.opts.HandlerTimeout)
	err := handler(hctx, task)
	cancel()
	if err == nil {
		return
	}
	next, ok := nextAttempt(task, q.opts, time.Now())
	if !ok {
		q.log.Error("task permanently failed", "task_id", task.ID, "type", task.Type, "attempts", next.Attempts, "err", err)
		return
	}
	if enqErr := q.Enqueue(ctx, next); enqErr != nil {
		q.log.Error("failed to re-enqueue task", "task_id", task.ID, "type", task.Type, "original_err", err, "enqueue_err", enqErr)
		return
	}
	q.log.Warn("task scheduled for retry", "task_id", task.ID, "type", task.Type, "attempt", next.Attempts, "not_before", next.NotBefore, "err", err)
}

// nextAttempt bumps the attempt count and schedules a retry. ok is false once
// the task has used up its attempts.
func nextAttempt(task Task, opts NATSOptions, now time.Time) (Task, bool) {
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = opts.MaxAttempts
	}
	if task.Attempts >= task.MaxAttempts {
		return task, false
	}
	task.NotBefore = now.Add(retry.CappedBackoff(task.Attempts, opts.RetryBase, maxRetryDelay))
	return task, true
}

// Close drains subscriptions and pending publishes before closing.
func (q *natsQueue) Close() error {
	return q.nc.Drain()
}
