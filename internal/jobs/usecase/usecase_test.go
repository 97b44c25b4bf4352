package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/jobs"
	"github.com/voxmill/article2video/internal/models"
)

func newUC(redisRepo *RedisRepoMock, jobRepo *RepoMock, awsRepo *AWSRepoMock) jobs.UseCase {
	return NewJobUseCase(&config.Config{}, redisRepo, jobRepo, awsRepo, nopLogger{})
}

func TestSubmitJob_QueuesPendingJob(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	uc := newUC(redisRepo, new(RepoMock), new(AWSRepoMock))

	var queued *models.VideoJob
	redisRepo.On("CreateJob", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			queued = args.Get(1).(*models.VideoJob)
		}).
		Return(nil).
		Once()

	job, err := uc.SubmitJob(ctx, &models.JobSubmitInput{SourceURL: "https://example.com/post"})
	require.NoError(t, err)
	require.Equal(t, queued, job)

	require.NotEmpty(t, job.JobID)
	require.Equal(t, models.JobStatusPending, job.Status)
	require.Equal(t, 0, job.Progress)
	require.Equal(t, "https://example.com/post", job.SourceURL)
	require.False(t, job.CreatedAt.IsZero())
	redisRepo.AssertExpectations(t)
}

func TestSubmitJob_InvalidURLRejected(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	uc := newUC(redisRepo, new(RepoMock), new(AWSRepoMock))

	// Validation failures must never reach the queue.
	job, err := uc.SubmitJob(ctx, &models.JobSubmitInput{SourceURL: "not a url"})
	require.Error(t, err)
	require.Nil(t, job)
	redisRepo.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything)
}

func TestGetJob_LiveRecordWins(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	jobRepo := new(RepoMock)
	uc := newUC(redisRepo, jobRepo, new(AWSRepoMock))

	want := &models.VideoJob{JobID: "j1", Status: models.JobStatusProcessing}
	redisRepo.On("GetJob", mock.Anything, "j1").Return(want, nil).Once()

	got, err := uc.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, want, got)
	jobRepo.AssertNotCalled(t, "GetJobByID", mock.Anything, mock.Anything)
}

func TestGetJob_FallsBackToArchive(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	jobRepo := new(RepoMock)
	uc := newUC(redisRepo, jobRepo, new(AWSRepoMock))

	archived := &models.VideoJob{JobID: "j1", Status: models.JobStatusCompleted}
	redisRepo.On("GetJob", mock.Anything, "j1").Return(nil, jobs.ErrJobNotFound).Once()
	jobRepo.On("GetJobByID", mock.Anything, "j1").Return(archived, nil).Once()

	got, err := uc.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, archived, got)
	redisRepo.AssertExpectations(t)
	jobRepo.AssertExpectations(t)
}

func TestGetJob_InfrastructureErrorPropagated(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	jobRepo := new(RepoMock)
	uc := newUC(redisRepo, jobRepo, new(AWSRepoMock))

	// A store outage is not "not found"; the archive must not be consulted.
	redisRepo.On("GetJob", mock.Anything, "j1").Return(nil, fmt.Errorf("connection refused")).Once()

	_, err := uc.GetJob(ctx, "j1")
	require.Error(t, err)
	jobRepo.AssertNotCalled(t, "GetJobByID", mock.Anything, mock.Anything)
}

func TestCancelJob_DelegatesToStore(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	uc := newUC(redisRepo, new(RepoMock), new(AWSRepoMock))

	redisRepo.On("RequestCancel", mock.Anything, "j1").Return(nil).Once()
	require.NoError(t, uc.CancelJob(ctx, "j1"))

	redisRepo.On("RequestCancel", mock.Anything, "j2").Return(jobs.ErrJobTerminal).Once()
	require.ErrorIs(t, uc.CancelJob(ctx, "j2"), jobs.ErrJobTerminal)
	redisRepo.AssertExpectations(t)
}

func TestGetPlaybackURL_CompletedJobOnly(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	awsRepo := new(AWSRepoMock)
	uc := newUC(redisRepo, new(RepoMock), awsRepo)

	redisRepo.On("GetJob", mock.Anything, "running").
		Return(&models.VideoJob{JobID: "running", Status: models.JobStatusProcessing}, nil).Once()

	_, err := uc.GetPlaybackURL(ctx, "running")
	require.Error(t, err)
	awsRepo.AssertNotCalled(t, "GetPlaybackURL", mock.Anything, mock.Anything)

	redisRepo.On("GetJob", mock.Anything, "done").
		Return(&models.VideoJob{JobID: "done", Status: models.JobStatusCompleted, VideoPath: "videos/done/video.mp4"}, nil).Once()
	awsRepo.On("GetPlaybackURL", mock.Anything, "videos/done/video.mp4").
		Return("https://cdn.example.com/signed", nil).Once()

	url, err := uc.GetPlaybackURL(ctx, "done")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/signed", url)
	awsRepo.AssertExpectations(t)
}

func TestListJobs_WrapsCount(t *testing.T) {
	ctx := context.Background()
	redisRepo := new(RedisRepoMock)
	uc := newUC(redisRepo, new(RepoMock), new(AWSRepoMock))

	list := []*models.VideoJob{{JobID: "a"}, {JobID: "b"}}
	redisRepo.On("ListJobs", mock.Anything, 10).Return(list, nil).Once()

	got, err := uc.ListJobs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, got.TotalCount)
	require.Len(t, got.Jobs, 2)
}
