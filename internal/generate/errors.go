package generate

import "github.com/pkg/errors"

// Collaborator failure taxonomy. Callers wrap these with context so the
// pipeline can name the failing stage in the job's error message.
var (
	ErrContentFetch     = errors.New("content fetch failed")
	ErrScriptGeneration = errors.New("script generation failed")
	ErrSynthesis        = errors.New("audio synthesis failed")
	ErrSlideGeneration  = errors.New("slide generation failed")
	ErrRender           = errors.New("render failed")
)
