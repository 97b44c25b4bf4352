package jobs

import (
	"context"
)

// AWSRepository publishes finished videos to object storage and hands out
// playback links.
type AWSRepository interface {
	PublishVideo(ctx context.Context, jobID, localPath string) (string, error)
	GetPlaybackURL(ctx context.Context, videoKey string) (string, error)
}
