package jobs

import (
	"context"

	"github.com/voxmill/article2video/internal/models"
)

// Repository is the durable archive of finished jobs.
type Repository interface {
	ArchiveJob(ctx context.Context, job *models.VideoJob) error
	GetJobByID(ctx context.Context, jobID string) (*models.VideoJob, error)
	ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error)
}
