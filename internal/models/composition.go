package models

// Phrase is a timed narration unit. StartTime is always computed from the
// durations of the phrases before it, never supplied externally.
type Phrase struct {
	Text      string  `json:"text"`
	Duration  float64 `json:"duration"`
	StartTime float64 `json:"start_time"`
}

// Composition is the renderer-ready schedule for one job. AudioPaths is
// index-aligned with Phrases. Immutable once written by the composer.
type Composition struct {
	Title      string   `json:"title"`
	Phrases    []Phrase `json:"phrases"`
	SlidePaths []string `json:"slide_paths"`
	AudioPaths []string `json:"audio_paths"`
}

// TotalDuration is the sum of all phrase durations. Since start times are
// running totals, it equals the last phrase's start plus its duration.
func (c *Composition) TotalDuration() float64 {
	if len(c.Phrases) == 0 {
		return 0
	}
	last := c.Phrases[len(c.Phrases)-1]
	return last.StartTime + last.Duration
}

// SlideRange is one slide's time window on screen.
type SlideRange struct {
	Path  string  `json:"path"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
