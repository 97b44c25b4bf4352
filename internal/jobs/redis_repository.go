package jobs

import (
	"context"

	"github.com/voxmill/article2video/internal/models"
)

// RedisRepository is the live job store: the source of truth while a job is
// pending or processing, and the channel live progress flows through.
type RedisRepository interface {
	CreateJob(ctx context.Context, job *models.VideoJob) error
	GetJob(ctx context.Context, jobID string) (*models.VideoJob, error)
	ListJobs(ctx context.Context, limit int) ([]*models.VideoJob, error)

	// ListPending returns claimable jobs oldest-first.
	ListPending(ctx context.Context, limit int) ([]*models.VideoJob, error)

	// ClaimJob atomically transitions pending -> processing. A job in any
	// other state returns ErrClaimConflict.
	ClaimJob(ctx context.Context, jobID string) (*models.VideoJob, error)

	UpdateProgress(ctx context.Context, jobID string, step models.JobStep, progress int, message string) error
	MarkCompleted(ctx context.Context, jobID string, videoPath string) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
	MarkCancelled(ctx context.Context, jobID string) error

	// RequestCancel cancels a pending job immediately or flags a processing
	// job for cooperative cancellation at its next stage boundary.
	RequestCancel(ctx context.Context, jobID string) error
	CancelRequested(ctx context.Context, jobID string) (bool, error)
}
