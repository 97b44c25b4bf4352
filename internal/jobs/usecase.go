package jobs

import (
	"context"

	"github.com/voxmill/article2video/internal/models"
)

type UseCase interface {
	SubmitJob(ctx context.Context, input *models.JobSubmitInput) (*models.VideoJob, error)
	GetJob(ctx context.Context, jobID string) (*models.VideoJob, error)
	ListJobs(ctx context.Context, limit int) (*models.JobList, error)
	CancelJob(ctx context.Context, jobID string) error
	GetPlaybackURL(ctx context.Context, jobID string) (string, error)
}
