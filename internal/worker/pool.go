package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCommissions = "jobs:commissions"

	JobCommissionRecalc = "commission_recalc"

	maxAttempts = 3

	popTimeout = 5 * time.Second

	// Bounds of the pause after a Redis failure (not a BRPOP timeout).
	minPollBackoff = 500 * time.Millisecond
	maxPollBackoff = 30 * time.Second
)

// ErrQueueUnavailable is returned when Redis is not configured.
var ErrQueueUnavailable = errors.New("job queue unavailable")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler runs one job. Handlers must be idempotent: a failed job is
// retried from the start.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecalculation pushes a commission recalculation job.
func (d *Dispatcher) EnqueueRecalculation(ctx context.Context, req dto.CommissionRecalcRequest) error {
	return d.enqueue(ctx, QueueCommissions, JobCommissionRecalc, req)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrQueueUnavailable
	}
	encoded, err := encodeJob(jobType, payload, 0)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}, attempts int) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data, Attempts: attempts})
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	metrics  *metrics.Metrics
	pop      func(ctx context.Context) ([]string, error)
}

func NewPool(rdb *redis.Client, m *metrics.Metrics) *Pool {
	p := &Pool{rdb: rdb, handlers: make(map[string]Handler), metrics: m}
	p.pop = func(ctx context.Context) ([]string, error) {
		return p.rdb.BRPop(ctx, popTimeout, QueueCommissions).Result()
	}
	return p
}

func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming the queues.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	var backoff time.Duration
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		// Blocking pop: waits up to popTimeout then loops to check ctx
		result, err := p.pop(ctx)
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			backoff = nextBackoff(backoff)
			log.Warn().Err(err).Int("worker", id).Dur("backoff", backoff).Msg("job queue unreachable")
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

// nextBackoff doubles the previous pause, clamped to
// [minPollBackoff, maxPollBackoff].
func nextBackoff(prev time.Duration) time.Duration {
	if prev < minPollBackoff {
		return minPollBackoff
	}
	if next := prev * 2; next < maxPollBackoff {
		return next
	}
	return maxPollBackoff
}

// outcome is what process decided to do with a job.
type outcome string

const (
	outcomeOK      outcome = "ok"
	outcomeRetry   outcome = "retry"
	outcomeDead    outcome = "dead"
	outcomeInvalid outcome = "invalid"
)

func (p *Pool) process(ctx context.Context, queue, raw string) outcome {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return outcomeInvalid
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for job")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler", job.Attempts)
		p.metrics.JobProcessed(job.Type, string(outcomeDead))
		return outcomeDead
	}

	job.Attempts++
	err := h(ctx, job.Payload)
	if err == nil {
		p.metrics.JobProcessed(job.Type, string(outcomeOK))
		return outcomeOK
	}

	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		p.metrics.JobProcessed(job.Type, string(outcomeDead))
		return outcomeDead
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeueing")
	p.metrics.JobProcessed(job.Type, string(outcomeRetry))
	if p.rdb != nil {
		encoded, encErr := encodeJob(job.Type, job.Payload, job.Attempts)
		if encErr == nil {
			encErr = p.rdb.LPush(ctx, queue, encoded).Err()
		}
		if encErr != nil {
			log.Error().Err(encErr).Str("type", job.Type).Msg("requeue failed")
		}
	}
	return outcomeRetry
}
