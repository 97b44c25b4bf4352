package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/voxmill/article2video/internal/jobs"
)

type awsRepository struct {
	client        *s3.Client
	preSignClient *s3.PresignClient
	bucket        string
}

func NewAwsRepository(awsClient *s3.Client, preSignClient *s3.PresignClient, bucket string) jobs.AWSRepository {
	return &awsRepository{
		client:        awsClient,
		preSignClient: preSignClient,
		bucket:        bucket,
	}
}

// PublishVideo uploads the rendered file and returns its object key, which
// the pipeline records as the job's video path.
func (a *awsRepository) PublishVideo(ctx context.Context, jobID, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open rendered video: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("videos/%s/video.mp4", jobID)
	contentType := "video/mp4"
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        file,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	return key, nil
}

func (a *awsRepository) GetPlaybackURL(ctx context.Context, videoKey string) (string, error) {
	req, err := a.preSignClient.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: &a.bucket,
			Key:    &videoKey,
		},
		s3.WithPresignExpires(60*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}
	return req.URL, nil
}
