package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	QueueEmail = "jobs:email"

	JobInvoiceEmail = "invoice_email"
)

// Job is the envelope for every queued task. Attempts counts failed runs.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// listPusher is the part of the Redis client used to enqueue.
type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Dispatcher enqueues jobs into Redis lists. The worker pool pops them with
// BRPOP.
type Dispatcher struct {
	rdb listPusher
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueInvoiceEmail queues delivery of an invoice PDF to a single address.
func (d *Dispatcher) EnqueueInvoiceEmail(ctx context.Context, invoiceID uuid.UUID, to string) error {
	return enqueue(ctx, d.rdb, QueueEmail, JobInvoiceEmail, EmailJobPayload{InvoiceID: invoiceID.String(), To: to})
}

func enqueue(ctx context.Context, rdb listPusher, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return push(ctx, rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb listPusher, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}
