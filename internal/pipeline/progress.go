package pipeline

import (
	"fmt"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
)

// ProgressEvent is emitted after every item resolution within a stage. The
// pipeline translates events into job record updates; this package never
// touches the job record itself.
type ProgressEvent struct {
	Step    models.JobStep
	Percent int
	Message string
}

// ProgressFunc consumes progress events.
type ProgressFunc func(event ProgressEvent)

var stepMessages = map[models.JobStep]string{
	models.StepScript: "extracting script (%d/%d)",
	models.StepAudio:  "synthesizing narration (%d/%d)",
	models.StepSlides: "generating slides (%d/%d)",
	models.StepVideo:  "rendering video (%d/%d)",
}

// ComputeProgress maps a stage position onto the stage's percentage band.
// Within the band the value is linear in completed items; an empty stage
// reports the band end immediately. Values are clamped to the band so a
// stage can never report outside its own range.
func ComputeProgress(tuning config.StageTuning, step models.JobStep, completed, total int) (int, string) {
	if completed < 0 {
		completed = 0
	}
	if total > 0 && completed > total {
		completed = total
	}

	width := tuning.BandEnd - tuning.BandStart

	var percent int
	if total == 0 {
		percent = tuning.BandEnd
		total = 0
	} else {
		percent = tuning.BandStart + (completed*width)/total
		if percent < tuning.BandStart {
			percent = tuning.BandStart
		}
		if completed == total {
			percent = tuning.BandEnd
		}
		if percent > tuning.BandEnd {
			percent = tuning.BandEnd
		}
	}

	template, ok := stepMessages[step]
	if !ok {
		template = "processing (%d/%d)"
	}
	return percent, fmt.Sprintf(template, completed, total)
}
