package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/voxmill/article2video/internal/models"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                                 {}
func (nopLogger) Debug(args ...interface{})                   {}
func (nopLogger) Debugf(template string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})                    {}
func (nopLogger) Infof(template string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})                    {}
func (nopLogger) Warnf(template string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})                   {}
func (nopLogger) Errorf(template string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})                   {}
func (nopLogger) Fatalf(template string, args ...interface{}) {}

type RedisRepoMock struct {
	mock.Mock
}

func (m *RedisRepoMock) CreateJob(ctx context.Context, job *models.VideoJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *RedisRepoMock) GetJob(ctx context.Context, jobID string) (*models.VideoJob, error) {
	args := m.Called(ctx, jobID)
	if v := args.Get(0); v != nil {
		return v.(*models.VideoJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RedisRepoMock) ListJobs(ctx context.Context, limit int) ([]*models.VideoJob, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.VideoJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RedisRepoMock) ListPending(ctx context.Context, limit int) ([]*models.VideoJob, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.VideoJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RedisRepoMock) ClaimJob(ctx context.Context, jobID string) (*models.VideoJob, error) {
	args := m.Called(ctx, jobID)
	if v := args.Get(0); v != nil {
		return v.(*models.VideoJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RedisRepoMock) UpdateProgress(ctx context.Context, jobID string, step models.JobStep, progress int, message string) error {
	args := m.Called(ctx, jobID, step, progress, message)
	return args.Error(0)
}

func (m *RedisRepoMock) MarkCompleted(ctx context.Context, jobID string, videoPath string) error {
	args := m.Called(ctx, jobID, videoPath)
	return args.Error(0)
}

func (m *RedisRepoMock) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	args := m.Called(ctx, jobID, errMsg)
	return args.Error(0)
}

func (m *RedisRepoMock) MarkCancelled(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *RedisRepoMock) RequestCancel(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *RedisRepoMock) CancelRequested(ctx context.Context, jobID string) (bool, error) {
	args := m.Called(ctx, jobID)
	return args.Bool(0), args.Error(1)
}

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ArchiveJob(ctx context.Context, job *models.VideoJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *RepoMock) GetJobByID(ctx context.Context, jobID string) (*models.VideoJob, error) {
	args := m.Called(ctx, jobID)
	if v := args.Get(0); v != nil {
		return v.(*models.VideoJob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) ListJobs(ctx context.Context, limit, offset int) (*models.JobList, error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.(*models.JobList), args.Error(1)
	}
	return nil, args.Error(1)
}

type AWSRepoMock struct {
	mock.Mock
}

func (m *AWSRepoMock) PublishVideo(ctx context.Context, jobID, localPath string) (string, error) {
	args := m.Called(ctx, jobID, localPath)
	return args.String(0), args.Error(1)
}

func (m *AWSRepoMock) GetPlaybackURL(ctx context.Context, videoKey string) (string, error) {
	args := m.Called(ctx, videoKey)
	return args.String(0), args.Error(1)
}
