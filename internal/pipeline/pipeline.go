package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
	"github.com/voxmill/article2video/pkg/logger"
)

// ScriptProvider is the script-writing collaborator.
type ScriptProvider interface {
	Generate(ctx context.Context, sourceURL string) (string, []models.ScriptSection, error)
}

// Synthesizer is the text-to-speech collaborator.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) (string, error)
}

// SlideGenerator is the image-generation collaborator.
type SlideGenerator interface {
	Generate(ctx context.Context, visual models.Visual, seed int, outPath string) (string, error)
}

// Renderer is the video-rendering collaborator.
type Renderer interface {
	Render(ctx context.Context, compositionPath, outputPath string) error
}

// JobUpdater is the slice of the job store the pipeline mutates while it
// holds the claim. No other component writes these fields concurrently.
type JobUpdater interface {
	UpdateProgress(ctx context.Context, jobID string, step models.JobStep, progress int, message string) error
	MarkCompleted(ctx context.Context, jobID string, videoPath string) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
	MarkCancelled(ctx context.Context, jobID string) error
	CancelRequested(ctx context.Context, jobID string) (bool, error)
}

// Publisher moves the finished video out of the job's working directory and
// returns the path recorded on the job.
type Publisher interface {
	PublishVideo(ctx context.Context, jobID, localPath string) (string, error)
}

// LocalPublisher leaves the video where the renderer wrote it.
type LocalPublisher struct{}

func (LocalPublisher) PublishVideo(_ context.Context, _ string, localPath string) (string, error) {
	return localPath, nil
}

// Pipeline runs one claimed job through the four stages, composes the
// timeline, persists it and invokes the renderer. Stage outcomes translate
// into job status transitions; a cancellation observed at a stage boundary
// short-circuits without being treated as an error.
type Pipeline struct {
	cfg       *config.Config
	tuning    *config.PipelineTuning
	updater   JobUpdater
	script    ScriptProvider
	tts       Synthesizer
	slides    SlideGenerator
	renderer  Renderer
	store     *Store
	composer  *Composer
	publisher Publisher
	logger    logger.Logger
}

func NewPipeline(
	cfg *config.Config,
	tuning *config.PipelineTuning,
	updater JobUpdater,
	script ScriptProvider,
	tts Synthesizer,
	slides SlideGenerator,
	renderer Renderer,
	store *Store,
	composer *Composer,
	publisher Publisher,
	logger logger.Logger,
) *Pipeline {
	if publisher == nil {
		publisher = LocalPublisher{}
	}
	return &Pipeline{
		cfg:       cfg,
		tuning:    tuning,
		updater:   updater,
		script:    script,
		tts:       tts,
		slides:    slides,
		renderer:  renderer,
		store:     store,
		composer:  composer,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute drives one job from claim to a terminal state. The returned error
// reflects infrastructure trouble reaching the job store, not job failure:
// job-level failures are written to the job record.
func (p *Pipeline) Execute(ctx context.Context, job *models.VideoJob) error {
	workDir := filepath.Join(p.cfg.Pipeline.JobDataDir, job.JobID)
	audioDir := filepath.Join(workDir, "audio")
	slideDir := filepath.Join(workDir, "slides")
	for _, dir := range []string{workDir, audioDir, slideDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return p.fail(ctx, job, models.StepScript, fmt.Errorf("create work dir: %w", err))
		}
	}

	progress := p.progressSink(ctx, job)

	// Script stage: one item, the whole article.
	var (
		title    string
		sections []models.ScriptSection
	)
	scriptOp := func(opCtx context.Context, _ int) (string, error) {
		t, secs, err := p.script.Generate(opCtx, job.SourceURL)
		if err != nil {
			return "", err
		}
		title, sections = t, secs
		scriptPath := filepath.Join(workDir, "script.json")
		if err := saveScript(scriptPath, t, secs); err != nil {
			return "", err
		}
		return scriptPath, nil
	}
	if done, err := p.runStage(ctx, job, models.StepScript, p.tuning.Script, 1, scriptOp, progress); done {
		return err
	}

	if done, err := p.checkCancelled(ctx, job); done {
		return err
	}

	// Audio stage: one synthesis call per section.
	audioOp := func(opCtx context.Context, idx int) (string, error) {
		out := filepath.Join(audioDir, fmt.Sprintf("phrase_%03d.mp3", idx))
		return p.tts.Synthesize(opCtx, sections[idx].Narration, out)
	}
	audioOutcome, done, err := p.runStageOutcome(ctx, job, models.StepAudio, p.tuning.Audio, len(sections), audioOp, progress)
	if done {
		return err
	}

	if done, err := p.checkCancelled(ctx, job); done {
		return err
	}

	// Slide stage: only sections carrying a visual produce an item; results
	// are mapped back onto section indices.
	visualIdx := make([]int, 0, len(sections))
	for i, s := range sections {
		if s.Visual.Kind != models.VisualNone {
			visualIdx = append(visualIdx, i)
		}
	}
	slideOp := func(opCtx context.Context, idx int) (string, error) {
		sectionIdx := visualIdx[idx]
		out := filepath.Join(slideDir, fmt.Sprintf("slide_%03d.jpg", sectionIdx))
		return p.slides.Generate(opCtx, sections[sectionIdx].Visual, sectionIdx, out)
	}
	slideOutcome, done, err := p.runStageOutcome(ctx, job, models.StepSlides, p.tuning.Slides, len(visualIdx), slideOp, progress)
	if done {
		return err
	}
	slideAssets := make([]string, len(sections))
	for i, asset := range slideOutcome.Assets() {
		slideAssets[visualIdx[i]] = asset
	}

	if done, err := p.checkCancelled(ctx, job); done {
		return err
	}

	// Compose and persist the timeline.
	comp, warnings, err := p.composer.Compose(ComposeInput{
		Title:       title,
		Sections:    sections,
		AudioAssets: audioOutcome.Assets(),
		SlideAssets: slideAssets,
	})
	if err != nil {
		return p.fail(ctx, job, models.StepSlides, err)
	}
	for _, w := range warnings {
		p.logger.Warnf("job %s: %s", job.JobID, w)
	}
	compositionPath := filepath.Join(workDir, "composition.json")
	if err := p.store.Save(comp, compositionPath); err != nil {
		return p.fail(ctx, job, models.StepVideo, err)
	}

	// Video stage: one render invocation.
	videoPath := filepath.Join(workDir, "video.mp4")
	renderOp := func(opCtx context.Context, _ int) (string, error) {
		if err := p.renderer.Render(opCtx, compositionPath, videoPath); err != nil {
			return "", err
		}
		return videoPath, nil
	}
	if done, err := p.runStage(ctx, job, models.StepVideo, p.tuning.Video, 1, renderOp, progress); done {
		return err
	}

	publishedPath, err := p.publisher.PublishVideo(ctx, job.JobID, videoPath)
	if err != nil {
		return p.fail(ctx, job, models.StepVideo, err)
	}

	p.logger.Infof("job %s completed: %s (%.1fs, %d phrases, %d slides)",
		job.JobID, publishedPath, comp.TotalDuration(), len(comp.Phrases), len(SlideRanges(comp)))
	return p.updater.MarkCompleted(ctx, job.JobID, publishedPath)
}

// runStage executes a stage whose outcome is pass/fail only.
func (p *Pipeline) runStage(ctx context.Context, job *models.VideoJob, step models.JobStep, tuning config.StageTuning, total int, op ItemFunc, progress ProgressFunc) (bool, error) {
	_, done, err := p.runStageOutcome(ctx, job, step, tuning, total, op, progress)
	return done, err
}

// runStageOutcome executes one stage under its wall-clock budget and applies
// the success policy. done reports that the job reached a terminal state and
// the caller must stop.
func (p *Pipeline) runStageOutcome(ctx context.Context, job *models.VideoJob, step models.JobStep, tuning config.StageTuning, total int, op ItemFunc, progress ProgressFunc) (*StageOutcome, bool, error) {
	budget := time.Duration(tuning.StageBudgetSec) * time.Second
	if budget <= 0 {
		budget = 15 * time.Minute
	}
	stageCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	outcome, err := RunStage(stageCtx, step, tuning, total, op, progress)
	if err != nil {
		if ctx.Err() != nil {
			// The worker itself is shutting down or the job was cancelled
			// from outside; not a stage failure.
			return outcome, true, p.updater.MarkCancelled(ctx, job.JobID)
		}
		return outcome, true, p.fail(ctx, job, step, fmt.Errorf("stage budget %s exceeded", budget))
	}
	if err := outcome.Evaluate(tuning.MinSuccessRatio); err != nil {
		return outcome, true, p.fail(ctx, job, step, err)
	}
	if failed := outcome.Failed(); failed > 0 {
		p.logger.Warnf("job %s: %s degraded, %d/%d items failed", job.JobID, step, failed, total)
	}
	return outcome, false, nil
}

// checkCancelled observes the cooperative cancellation signal at a stage
// boundary.
func (p *Pipeline) checkCancelled(ctx context.Context, job *models.VideoJob) (bool, error) {
	cancelled, err := p.updater.CancelRequested(ctx, job.JobID)
	if err != nil {
		p.logger.Errorf("job %s: cancel check: %v", job.JobID, err)
		return false, nil
	}
	if !cancelled {
		return false, nil
	}
	p.logger.Infof("job %s cancelled", job.JobID)
	return true, p.updater.MarkCancelled(ctx, job.JobID)
}

func (p *Pipeline) fail(ctx context.Context, job *models.VideoJob, step models.JobStep, cause error) error {
	msg := fmt.Sprintf("%s: %v", stageLabel(step), cause)
	p.logger.Errorf("job %s failed: %s", job.JobID, msg)
	return p.updater.MarkFailed(ctx, job.JobID, msg)
}

func stageLabel(step models.JobStep) string {
	switch step {
	case models.StepScript:
		return "script generation failed"
	case models.StepAudio:
		return "audio synthesis failed"
	case models.StepSlides:
		return "slide generation failed"
	case models.StepVideo:
		return "video rendering failed"
	default:
		return "stage failed"
	}
}

// progressSink adapts stage progress events into job record updates and
// keeps the reported percentage non-decreasing even under concurrent item
// completions.
func (p *Pipeline) progressSink(ctx context.Context, job *models.VideoJob) ProgressFunc {
	var mu sync.Mutex
	last := job.Progress
	return func(event ProgressEvent) {
		mu.Lock()
		if event.Percent < last {
			mu.Unlock()
			return
		}
		last = event.Percent
		mu.Unlock()

		if err := p.updater.UpdateProgress(ctx, job.JobID, event.Step, event.Percent, event.Message); err != nil {
			p.logger.Errorf("job %s: progress update: %v", job.JobID, err)
		}
	}
}

type scriptFile struct {
	Title    string                 `json:"title"`
	Sections []models.ScriptSection `json:"sections"`
}

func saveScript(path, title string, sections []models.ScriptSection) error {
	data, err := json.MarshalIndent(scriptFile{Title: title, Sections: sections}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
