package scheduler

import (
	"context"

	"removals_crm_backend/internal/ingest"
	"removals_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	ingest *ingest.Service
	lock   *SweepLock
	log    *logger.Logger
}

func NewWorker(cfg SchedulerConfig, queue string, concurrency int, ingestSvc *ingest.Service, lock *SweepLock, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	if queue == "" {
		queue = "default"
	}
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		ingest: ingestSvc,
		lock:   lock,
		log:    log,
	}

	mux.HandleFunc(TaskIngestionSweep, w.handleIngestionSweep)

	return w, nil
}

func (w *Worker) handleIngestionSweep(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseIngestionSweepPayload(task); err != nil {
		return err
	}

	acquired, err := w.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		w.log.Info("ingestion sweep already running elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := w.lock.Release(context.WithoutCancel(ctx)); err != nil {
			w.log.Warn("failed to release sweep lock", "error", err)
		}
	}()

	_, err = w.ingest.ProcessBacklog(ctx)
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
