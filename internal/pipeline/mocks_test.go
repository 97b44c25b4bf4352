package pipeline

import (
	"context"
	"os"
	"sync"

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

// Function-backed collaborator fakes. The pipeline computes output paths
// itself, so canned return values are not enough; each fake delegates to a
// closure the test controls.

type scriptFake struct {
	fn func(ctx context.Context, sourceURL string) (string, []models.ScriptSection, error)
}

func (f scriptFake) Generate(ctx context.Context, sourceURL string) (string, []models.ScriptSection, error) {
	return f.fn(ctx, sourceURL)
}

type ttsFake struct {
	fn func(ctx context.Context, text, outPath string) (string, error)
}

func (f ttsFake) Synthesize(ctx context.Context, text, outPath string) (string, error) {
	return f.fn(ctx, text, outPath)
}

type slidesFake struct {
	fn func(ctx context.Context, visual models.Visual, seed int, outPath string) (string, error)
}

func (f slidesFake) Generate(ctx context.Context, visual models.Visual, seed int, outPath string) (string, error) {
	return f.fn(ctx, visual, seed, outPath)
}

type rendererFake struct {
	fn func(ctx context.Context, compositionPath, outputPath string) error
}

func (f rendererFake) Render(ctx context.Context, compositionPath, outputPath string) error {
	return f.fn(ctx, compositionPath, outputPath)
}

// writeAsset creates a small non-empty file so duration probing and size
// checks have something to look at.
func writeAsset(path string) (string, error) {
	if err := os.WriteFile(path, []byte("asset"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// updaterRecorder is an in-memory JobUpdater that captures every transition
// so tests can assert the terminal state and the progress trail without
// redis.
type updaterRecorder struct {
	mu sync.Mutex

	status       models.JobStatus
	videoPath    string
	errorMessage string
	progress     []int
	steps        []models.JobStep
	cancelSignal bool
	cancelChecks int
}

func newUpdaterRecorder() *updaterRecorder {
	return &updaterRecorder{status: models.JobStatusProcessing}
}

func (u *updaterRecorder) UpdateProgress(_ context.Context, _ string, step models.JobStep, progress int, _ string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.progress = append(u.progress, progress)
	u.steps = append(u.steps, step)
	return nil
}

func (u *updaterRecorder) MarkCompleted(_ context.Context, _ string, videoPath string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = models.JobStatusCompleted
	u.videoPath = videoPath
	return nil
}

func (u *updaterRecorder) MarkFailed(_ context.Context, _ string, errMsg string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = models.JobStatusFailed
	u.errorMessage = errMsg
	return nil
}

func (u *updaterRecorder) MarkCancelled(_ context.Context, _ string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = models.JobStatusCancelled
	return nil
}

func (u *updaterRecorder) CancelRequested(_ context.Context, _ string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cancelChecks++
	return u.cancelSignal, nil
}

func (u *updaterRecorder) requestCancel() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cancelSignal = true
}

func (u *updaterRecorder) finalStatus() models.JobStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

func (u *updaterRecorder) progressTrail() []int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]int{}, u.progress...)
}
