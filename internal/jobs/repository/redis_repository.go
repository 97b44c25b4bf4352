package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/voxmill/article2video/internal/jobs"
	"github.com/voxmill/article2video/internal/models"
)

const (
	jobKeyPrefix    = "job:"
	cancelKeyPrefix = "job:cancel:"
	pendingQueueKey = "jobs:pending"
	allJobsKey      = "jobs:all"
	eventChanPrefix = "jobs:events:"
)

// claimScript is the single compare-and-swap the whole claim protocol rests
// on: it checks the status, flips it to processing and dequeues the job in
// one atomic step, so two schedulers can never both win.
var claimScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return redis.error_reply('not_found')
end
local job = cjson.decode(raw)
if job['status'] ~= 'pending' then
  return ''
end
job['status'] = 'processing'
job['started_at'] = ARGV[1]
local updated = cjson.encode(job)
redis.call('SET', KEYS[1], updated)
redis.call('ZREM', KEYS[2], ARGV[2])
return updated
`)

type jobRedisRepo struct {
	redisClient *redis.Client
}

func NewJobRedisRepo(redisClient *redis.Client) jobs.RedisRepository {
	return &jobRedisRepo{redisClient: redisClient}
}

func (r *jobRedisRepo) CreateJob(ctx context.Context, job *models.VideoJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	pipe := r.redisClient.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.JobID, data, 0)
	pipe.ZAdd(ctx, pendingQueueKey, &redis.Z{Score: float64(job.CreatedAt.UnixNano()), Member: job.JobID})
	pipe.ZAdd(ctx, allJobsKey, &redis.Z{Score: float64(job.CreatedAt.UnixNano()), Member: job.JobID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create job %s: %w", job.JobID, err)
	}
	return nil
}

func (r *jobRedisRepo) GetJob(ctx context.Context, jobID string) (*models.VideoJob, error) {
	raw, err := r.redisClient.Get(ctx, jobKeyPrefix+jobID).Result()
	if err == redis.Nil {
		return nil, jobs.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return unmarshalJob([]byte(raw))
}

func (r *jobRedisRepo) ListJobs(ctx context.Context, limit int) ([]*models.VideoJob, error) {
	if limit <= 0 {
		limit = 50
	}
	ids, err := r.redisClient.ZRevRange(ctx, allJobsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return r.fetchJobs(ctx, ids)
}

func (r *jobRedisRepo) ListPending(ctx context.Context, limit int) ([]*models.VideoJob, error) {
	if limit <= 0 {
		return nil, nil
	}
	// Oldest first: claim fairness depends on the score being creation time.
	ids, err := r.redisClient.ZRange(ctx, pendingQueueKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	return r.fetchJobs(ctx, ids)
}

func (r *jobRedisRepo) ClaimJob(ctx context.Context, jobID string) (*models.VideoJob, error) {
	startedAt := time.Now().UTC().Format(time.RFC3339Nano)
	raw, err := claimScript.Run(ctx, r.redisClient,
		[]string{jobKeyPrefix + jobID, pendingQueueKey},
		startedAt, jobID,
	).Text()
	if err != nil {
		if err == redis.Nil || strings.Contains(err.Error(), "not_found") {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("claim job %s: %w", jobID, err)
	}
	if raw == "" {
		return nil, jobs.ErrClaimConflict
	}
	return unmarshalJob([]byte(raw))
}

func (r *jobRedisRepo) UpdateProgress(ctx context.Context, jobID string, step models.JobStep, progress int, message string) error {
	return r.mutateJob(ctx, jobID, func(job *models.VideoJob) error {
		if job.Status.IsTerminal() {
			return jobs.ErrJobTerminal
		}
		job.CurrentStep = step
		job.Progress = progress
		job.ProgressMessage = message
		return nil
	})
}

func (r *jobRedisRepo) MarkCompleted(ctx context.Context, jobID string, videoPath string) error {
	return r.mutateJob(ctx, jobID, func(job *models.VideoJob) error {
		if job.Status.IsTerminal() {
			return jobs.ErrJobTerminal
		}
		job.Status = models.JobStatusCompleted
		job.Progress = 100
		job.ProgressMessage = "completed"
		job.VideoPath = videoPath
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (r *jobRedisRepo) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	return r.mutateJob(ctx, jobID, func(job *models.VideoJob) error {
		if job.Status.IsTerminal() {
			return jobs.ErrJobTerminal
		}
		job.Status = models.JobStatusFailed
		job.ErrorMessage = errMsg
		job.CompletedAt = time.Now().UTC()
		return nil
	})
}

func (r *jobRedisRepo) MarkCancelled(ctx context.Context, jobID string) error {
	err := r.mutateJob(ctx, jobID, func(job *models.VideoJob) error {
		if job.Status.IsTerminal() {
			return jobs.ErrJobTerminal
		}
		job.Status = models.JobStatusCancelled
		job.CompletedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return err
	}
	return r.redisClient.Del(ctx, cancelKeyPrefix+jobID).Err()
}

func (r *jobRedisRepo) RequestCancel(ctx context.Context, jobID string) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	switch job.Status {
	case models.JobStatusPending:
		// Never claimed: cancel directly and dequeue.
		if err := r.MarkCancelled(ctx, jobID); err != nil {
			return err
		}
		return r.redisClient.ZRem(ctx, pendingQueueKey, jobID).Err()
	case models.JobStatusProcessing:
		// The pipeline holding the claim observes the flag at its next
		// stage boundary.
		return r.redisClient.Set(ctx, cancelKeyPrefix+jobID, "1", 24*time.Hour).Err()
	default:
		return jobs.ErrJobTerminal
	}
}

func (r *jobRedisRepo) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, cancelKeyPrefix+jobID).Result()
	if err != nil {
		return false, fmt.Errorf("cancel check %s: %w", jobID, err)
	}
	return n > 0, nil
}

// mutateJob applies fn to the stored record and republishes it. Only the
// pipeline holding the claim mutates an active job, so a plain get/set is
// sufficient here; the claim itself is the only cross-worker race.
func (r *jobRedisRepo) mutateJob(ctx context.Context, jobID string, fn func(*models.VideoJob) error) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := fn(job); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", jobID, err)
	}
	if err := r.redisClient.Set(ctx, jobKeyPrefix+jobID, data, 0).Err(); err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	return r.publishEvent(ctx, job)
}

type jobEvent struct {
	JobID           string           `json:"job_id"`
	Status          models.JobStatus `json:"status"`
	Progress        int              `json:"progress"`
	ProgressMessage string           `json:"progress_message"`
	CurrentStep     models.JobStep   `json:"current_step"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

func (r *jobRedisRepo) publishEvent(ctx context.Context, job *models.VideoJob) error {
	event := jobEvent{
		JobID:           job.JobID,
		Status:          job.Status,
		Progress:        job.Progress,
		ProgressMessage: job.ProgressMessage,
		CurrentStep:     job.CurrentStep,
		ErrorMessage:    job.ErrorMessage,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.redisClient.Publish(ctx, eventChanPrefix+job.JobID, data).Err()
}

func (r *jobRedisRepo) fetchJobs(ctx context.Context, ids []string) ([]*models.VideoJob, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKeyPrefix + id
	}
	raws, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}
	result := make([]*models.VideoJob, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		job, err := unmarshalJob([]byte(s))
		if err != nil {
			continue
		}
		result = append(result, job)
	}
	return result, nil
}

func unmarshalJob(data []byte) (*models.VideoJob, error) {
	job := &models.VideoJob{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return job, nil
}
