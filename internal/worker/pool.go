package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts = 3
	popTimeout         = 5 * time.Second
)

// ErrPermanent marks a job failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// Handler runs one job payload.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Pool consumes QueueEmail with a fixed number of goroutines. Failed jobs
// are pushed back with Attempts+1 until MaxAttempts, then moved to the DLQ.
type Pool struct {
	rdb         *redis.Client
	pusher      listPusher
	handlers    map[string]Handler
	queues      []string
	maxAttempts int
	wg          sync.WaitGroup
}

func NewPool(rdb *redis.Client, maxAttempts int) *Pool {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Pool{
		rdb:         rdb,
		pusher:      rdb,
		handlers:    map[string]Handler{},
		queues:      []string{QueueEmail},
		maxAttempts: maxAttempts,
	}
}

func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines. They stop when ctx is cancelled;
// Wait blocks until all of them have returned.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
}

func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		// Blocks up to popTimeout, then loops to check ctx
		result, err := p.rdb.BRPop(ctx, popTimeout, p.queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Error().Err(err).Int("worker", id).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.handle(ctx, result[0], result[1])
	}
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.pusher, queue, "", json.RawMessage(raw), "unreadable job: "+err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.pusher, queue, job.Type, job.Payload, "no handler registered", job.Attempts)
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	job.Attempts++
	if errors.Is(err, ErrPermanent) || job.Attempts >= p.maxAttempts {
		SendToDLQ(ctx, p.pusher, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeueing")
	if perr := push(ctx, p.pusher, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("requeue failed")
	}
}
