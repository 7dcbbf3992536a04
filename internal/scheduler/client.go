package scheduler

import (
	"context"
	"fmt"
	"time"

	"removals_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// SchedulerConfig is the configuration slice the scheduler needs.
type SchedulerConfig interface {
	GetRedisURL() string
}

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg SchedulerConfig, queue string) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSweep queues one ingestion sweep.
func (c *Client) EnqueueSweep(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewIngestionSweepTask(IngestionSweepPayload{RequestedAt: time.Now()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// PeriodicEnqueuer queues a sweep at a fixed interval.
type PeriodicEnqueuer struct {
	client   *Client
	log      *logger.Logger
	interval time.Duration
}

func NewPeriodicEnqueuer(client *Client, log *logger.Logger, interval time.Duration) *PeriodicEnqueuer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PeriodicEnqueuer{client: client, log: log, interval: interval}
}

// Run enqueues one sweep immediately, then on every tick until ctx ends.
func (p *PeriodicEnqueuer) Run(ctx context.Context) {
	if p == nil || p.client == nil {
		return
	}

	p.enqueue(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.enqueue(ctx)
		}
	}
}

func (p *PeriodicEnqueuer) enqueue(ctx context.Context) {
	if err := p.client.EnqueueSweep(ctx); err != nil {
		p.log.Warn("failed to enqueue ingestion sweep", "error", err)
	}
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
