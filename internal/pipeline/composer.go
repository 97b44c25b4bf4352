package pipeline

import (
	"fmt"
	"math"

	"github.com/voxmill/article2video/internal/models"
	"github.com/voxmill/article2video/pkg/logger"
	"github.com/voxmill/article2video/pkg/utils"
)

// DurationFunc reads the decoded length of an audio asset in seconds.
type DurationFunc func(path string) (float64, error)

// Composer turns script sections plus the (possibly gappy) audio and slide
// assets of a job into a deterministic, renderer-ready schedule.
type Composer struct {
	placeholderSec float64
	probe          DurationFunc
	logger         logger.Logger
}

func NewComposer(placeholderSec float64, probe DurationFunc, logger logger.Logger) *Composer {
	if probe == nil {
		probe = utils.ProbeDuration
	}
	if placeholderSec <= 0 {
		placeholderSec = 3.0
	}
	return &Composer{placeholderSec: placeholderSec, probe: probe, logger: logger}
}

// ComposeInput carries one job's stage outputs. AudioAssets and SlideAssets
// are index-aligned with Sections; an empty string marks a missing asset.
type ComposeInput struct {
	Title       string
	Sections    []models.ScriptSection
	AudioAssets []string
	SlideAssets []string
}

// Compose builds the composition. Missing audio falls back to the
// placeholder duration, missing slides are covered by the nearest prior
// valid slide, and both are reported as warnings rather than failures.
// Phrase start times are running totals of the preceding durations, so the
// total duration equals the duration sum exactly by construction; rounding
// is applied per-duration before summing, never accumulated afterwards.
func (c *Composer) Compose(in ComposeInput) (*models.Composition, []string, error) {
	if len(in.AudioAssets) != len(in.Sections) || len(in.SlideAssets) != len(in.Sections) {
		return nil, nil, fmt.Errorf("compose: asset slices must align with sections (%d sections, %d audio, %d slides)",
			len(in.Sections), len(in.AudioAssets), len(in.SlideAssets))
	}

	var warnings []string

	comp := &models.Composition{
		Title:      in.Title,
		Phrases:    make([]models.Phrase, 0, len(in.Sections)),
		AudioPaths: make([]string, 0, len(in.Sections)),
	}

	elapsed := 0.0
	for i, section := range in.Sections {
		duration := c.placeholderSec
		audioPath := in.AudioAssets[i]
		if audioPath == "" {
			warnings = append(warnings, fmt.Sprintf("phrase %d: no audio asset, using %.1fs placeholder", i, c.placeholderSec))
		} else if probed, err := c.probe(audioPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("phrase %d: unreadable audio %s (%v), using %.1fs placeholder", i, audioPath, err, c.placeholderSec))
			audioPath = ""
		} else {
			duration = roundMilli(probed)
		}

		comp.Phrases = append(comp.Phrases, models.Phrase{
			Text:      section.Narration,
			Duration:  duration,
			StartTime: roundMilli(elapsed),
		})
		comp.AudioPaths = append(comp.AudioPaths, audioPath)
		elapsed = roundMilli(elapsed + duration)
	}

	comp.SlidePaths, warnings = assignSlides(in.SlideAssets, len(comp.Phrases), warnings)

	if len(comp.Phrases) == 0 {
		warnings = append(warnings, "no phrases: composition is an empty no-op")
	}
	for _, w := range warnings {
		c.logger.Warnf("compose %q: %s", in.Title, w)
	}
	return comp, warnings, nil
}

// assignSlides produces one slide path per phrase: each phrase shows the
// most recent valid slide at or before it, and leading phrases with no
// prior slide borrow the first valid one so no range is ever blank. Zero
// valid slides yields an empty visual track plus a warning.
func assignSlides(slideAssets []string, phraseCount int, warnings []string) ([]string, []string) {
	firstValid := ""
	for _, p := range slideAssets {
		if p != "" {
			firstValid = p
			break
		}
	}
	if firstValid == "" {
		if phraseCount > 0 {
			warnings = append(warnings, "no valid slides: composition has no visual track")
		}
		return []string{}, warnings
	}

	paths := make([]string, phraseCount)
	current := firstValid
	for i := 0; i < phraseCount; i++ {
		if i < len(slideAssets) && slideAssets[i] != "" {
			current = slideAssets[i]
		} else if i < len(slideAssets) {
			warnings = append(warnings, fmt.Sprintf("slide %d missing, extending previous slide", i))
		}
		paths[i] = current
	}
	return paths, warnings
}

// SlideRanges derives the visual schedule from a composition: consecutive
// phrases sharing a slide collapse into one contiguous range. Ranges cover
// [0, total duration] with no gaps or overlaps, and the final range ends at
// the total exactly.
func SlideRanges(c *models.Composition) []models.SlideRange {
	if len(c.Phrases) == 0 || len(c.SlidePaths) == 0 {
		return nil
	}

	var ranges []models.SlideRange
	for i, phrase := range c.Phrases {
		path := c.SlidePaths[i]
		end := phrase.StartTime + phrase.Duration
		if len(ranges) > 0 && ranges[len(ranges)-1].Path == path {
			ranges[len(ranges)-1].End = end
			continue
		}
		ranges = append(ranges, models.SlideRange{Path: path, Start: phrase.StartTime, End: end})
	}
	ranges[len(ranges)-1].End = c.TotalDuration()
	return ranges
}

// roundMilli keeps the schedule bit-exact across serialization by pinning
// every timing value to millisecond precision.
func roundMilli(v float64) float64 {
	return math.Round(v*1000) / 1000
}
