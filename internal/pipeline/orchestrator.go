package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/stats"
	"github.com/FSlyne/gnote/internal/store"
	"github.com/google/uuid"
)

// Options sizes the worker pool.
type Options struct {
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration
}

// Orchestrator runs bulk refreshes of every source document.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	src    source.Source
	sink   store.Sink
	worker *Worker
	log    *slog.Logger
	opts   Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(opts Options, src source.Source, sink store.Sink, latency *stats.Recorder, log *slog.Logger) *Orchestrator {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = 100
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = time.Hour
	}
	return &Orchestrator{
		jobs:   NewJobStore(opts.JobTTL),
		queue:  make(chan *Job, opts.MaxQueueSize),
		src:    src,
		sink:   sink,
		worker: NewWorker(src, sink, latency, log),
		log:    log,
		opts:   opts,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.opts.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a scan and sync of docID.
func (o *Orchestrator) Submit(docID string) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:        uuid.NewString(),
		DocID:     docID,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return job, nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return job, fmt.Errorf("job queue is full (%d)", o.opts.MaxQueueSize)
	}
}

// Refresh submits one job per source document and removes sink documents
// the source no longer lists. Jobs submitted before the queue filled up are
// returned alongside the error.
func (o *Orchestrator) Refresh(ctx context.Context) ([]*Job, error) {
	ids, err := o.src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	o.prune(ctx, ids)

	jobs := make([]*Job, 0, len(ids))
	for _, id := range ids {
		job, err := o.Submit(id)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	o.log.Info("refresh queued", "documents", len(jobs))
	return jobs, nil
}

// prune removes sink documents missing from listed. Failures are logged
// and left for the next refresh.
func (o *Orchestrator) prune(ctx context.Context, listed []string) {
	corpus, err := o.sink.Corpus(ctx)
	if err != nil {
		o.log.Warn("prune skipped", "error", err)
		return
	}
	keep := make(map[string]struct{}, len(listed))
	for _, id := range listed {
		keep[id] = struct{}{}
	}
	removed := 0
	for id := range corpus {
		if _, ok := keep[id]; ok {
			continue
		}
		if err := o.sink.Remove(ctx, id); err != nil {
			o.log.Warn("remove failed", "doc_id", id, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		o.log.Info("pruned removed documents", "documents", removed)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
