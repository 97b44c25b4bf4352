package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/jobs"
	"github.com/voxmill/article2video/internal/models"
	"github.com/voxmill/article2video/pkg/logger"
	"github.com/voxmill/article2video/pkg/utils"
)

// PipelineRunner executes one claimed job to a terminal state.
type PipelineRunner interface {
	Execute(ctx context.Context, job *models.VideoJob) error
}

// Worker polls the job store for pending jobs, claims them one by one and
// dispatches each claim to a pipeline execution. The semaphore is the
// concurrency ceiling: it is held from claim to terminal state, so the
// limit holds across poll cycles.
type Worker struct {
	cfg       *config.Config
	logger    logger.Logger
	redisRepo jobs.RedisRepository
	jobRepo   jobs.Repository
	pipeline  PipelineRunner
	sem       chan struct{}
	wg        sync.WaitGroup
}

func NewWorker(cfg *config.Config, logger logger.Logger, redisRepo jobs.RedisRepository, jobRepo jobs.Repository, pipeline PipelineRunner) *Worker {
	return &Worker{
		cfg:       cfg,
		logger:    logger,
		redisRepo: redisRepo,
		jobRepo:   jobRepo,
		pipeline:  pipeline,
		sem:       make(chan struct{}, cfg.Worker.MaxConcurrentJobs),
	}
}

// Run blocks polling until ctx is cancelled, then waits for in-flight jobs.
func (w *Worker) Run(ctx context.Context) {
	interval := time.Duration(w.cfg.Worker.PollIntervalSeconds) * time.Second
	w.logger.Infof("worker started: max %d concurrent jobs, polling every %s",
		w.cfg.Worker.MaxConcurrentJobs, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping, waiting for running jobs")
			w.wg.Wait()
			return
		case <-ticker.C:
		}
	}
}

// poll claims up to the remaining capacity from the oldest pending jobs.
func (w *Worker) poll(ctx context.Context) {
	if w.cfg.Worker.MaxCPUUsage > 0 {
		if ok, usage := utils.CheckCPUUsage(w.cfg.Worker.MaxCPUUsage); !ok {
			w.logger.Warnf("CPU usage %.2f%% too high, skipping poll cycle", usage)
			return
		}
	}

	capacity := cap(w.sem) - len(w.sem)
	if capacity <= 0 {
		return
	}

	candidates, err := w.redisRepo.ListPending(ctx, capacity)
	if err != nil {
		w.logger.Errorf("poll: list pending: %v", err)
		return
	}

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return
		case w.sem <- struct{}{}:
		default:
			// Capacity filled up while iterating this batch.
			return
		}

		claimed, err := w.redisRepo.ClaimJob(ctx, candidate.JobID)
		if err != nil {
			<-w.sem
			if errors.Is(err, jobs.ErrClaimConflict) || errors.Is(err, jobs.ErrJobNotFound) {
				// Another scheduler got there first; not our job anymore.
				continue
			}
			w.logger.Errorf("poll: claim %s: %v", candidate.JobID, err)
			continue
		}

		w.wg.Add(1)
		go w.runJob(ctx, claimed)
	}
}

func (w *Worker) runJob(ctx context.Context, job *models.VideoJob) {
	defer w.wg.Done()
	defer func() { <-w.sem }()

	w.logger.Infof("processing job %s (%s)", job.JobID, job.SourceURL)
	start := time.Now()

	if err := w.pipeline.Execute(ctx, job); err != nil {
		w.logger.Errorf("job %s: pipeline: %v", job.JobID, err)
	}
	w.logger.Infof("job %s finished in %s", job.JobID, time.Since(start))

	w.archive(job.JobID)
}

// archive mirrors the terminal record into the durable store.
func (w *Worker) archive(jobID string) {
	if w.jobRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	final, err := w.redisRepo.GetJob(ctx, jobID)
	if err != nil {
		w.logger.Errorf("archive: get job %s: %v", jobID, err)
		return
	}
	if !final.Status.IsTerminal() {
		return
	}
	if err := w.jobRepo.ArchiveJob(ctx, final); err != nil {
		w.logger.Errorf("archive: job %s: %v", jobID, err)
	}
}
