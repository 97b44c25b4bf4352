package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/voxmill/article2video/internal/jobs"
	"github.com/voxmill/article2video/internal/models"
)

type jobRepo struct {
	db *sqlx.DB
}

func NewJobRepo(db *sqlx.DB) jobs.Repository {
	return &jobRepo{db: db}
}

func (r *jobRepo) ArchiveJob(ctx context.Context, job *models.VideoJob) error {
	_, err := r.db.ExecContext(ctx, archiveJobQuery,
		job.JobID,
		job.SourceURL,
		job.Status,
		job.Progress,
		job.ProgressMessage,
		job.CurrentStep,
		job.VideoPath,
		job.ErrorMessage,
		job.CreatedAt,
		job.StartedAt,
		job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("archive job %s: %w", job.JobID, err)
	}
	return nil
}

func (r *jobRepo) GetJobByID(ctx context.Context, jobID string) (*models.VideoJob, error) {
	job := &models.VideoJob{}
	if err := r.db.GetContext(ctx, job, getJobByIDQuery, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return job, nil
}

func (r *jobRepo) ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countJobsQuery); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	list := make([]*models.VideoJob, 0, limit)
	if err := r.db.SelectContext(ctx, &list, listJobsQuery, offset, limit); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return &models.JobList{Jobs: list, TotalCount: total}, nil
}
