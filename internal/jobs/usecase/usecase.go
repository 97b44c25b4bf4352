package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/jobs"
	"github.com/voxmill/article2video/internal/models"
	"github.com/voxmill/article2video/pkg/logger"
	"github.com/voxmill/article2video/pkg/utils"
)

type jobUC struct {
	cfg       *config.Config
	redisRepo jobs.RedisRepository
	jobRepo   jobs.Repository
	awsRepo   jobs.AWSRepository
	logger    logger.Logger
}

func NewJobUseCase(
	cfg *config.Config,
	redisRepo jobs.RedisRepository,
	jobRepo jobs.Repository,
	awsRepo jobs.AWSRepository,
	log logger.Logger,
) jobs.UseCase {
	return &jobUC{
		cfg:       cfg,
		redisRepo: redisRepo,
		jobRepo:   jobRepo,
		awsRepo:   awsRepo,
		logger:    log,
	}
}

func (u *jobUC) SubmitJob(ctx context.Context, input *models.JobSubmitInput) (*models.VideoJob, error) {
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("SubmitJob - ValidateStruct error: %v", err)
		return nil, fmt.Errorf("invalid input: %v", err)
	}

	job := &models.VideoJob{
		JobID:           uuid.New().String(),
		SourceURL:       input.SourceURL,
		Status:          models.JobStatusPending,
		Progress:        0,
		ProgressMessage: "queued",
		CreatedAt:       time.Now().UTC(),
	}
	if err := u.redisRepo.CreateJob(ctx, job); err != nil {
		u.logger.Errorf("SubmitJob - CreateJob error: %v", err)
		return nil, fmt.Errorf("failed to queue the job: %v", err)
	}
	u.logger.Infof("job %s submitted for %s", job.JobID, job.SourceURL)
	return job, nil
}

// GetJob serves the live record while the job is active and falls back to
// the durable archive for records the live store has let go of.
func (u *jobUC) GetJob(ctx context.Context, jobID string) (*models.VideoJob, error) {
	job, err := u.redisRepo.GetJob(ctx, jobID)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, jobs.ErrJobNotFound) {
		return nil, err
	}
	return u.jobRepo.GetJobByID(ctx, jobID)
}

func (u *jobUC) ListJobs(ctx context.Context, limit int) (*models.JobList, error) {
	list, err := u.redisRepo.ListJobs(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &models.JobList{Jobs: list, TotalCount: len(list)}, nil
}

func (u *jobUC) CancelJob(ctx context.Context, jobID string) error {
	if err := u.redisRepo.RequestCancel(ctx, jobID); err != nil {
		u.logger.Errorf("CancelJob %s: %v", jobID, err)
		return err
	}
	u.logger.Infof("cancellation requested for job %s", jobID)
	return nil
}

func (u *jobUC) GetPlaybackURL(ctx context.Context, jobID string) (string, error) {
	job, err := u.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != models.JobStatusCompleted || job.VideoPath == "" {
		return "", fmt.Errorf("job %s has no video yet (status %s)", jobID, job.Status)
	}
	return u.awsRepo.GetPlaybackURL(ctx, job.VideoPath)
}
