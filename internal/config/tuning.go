package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StageTuning overrides the per-stage execution policy. Loaded from the
// optional YAML file pointed at by pipeline.configPath; zero values fall
// back to the defaults below.
type StageTuning struct {
	BandStart         int     `yaml:"band_start"`
	BandEnd           int     `yaml:"band_end"`
	ItemConcurrency   int     `yaml:"item_concurrency"`
	ItemTimeoutSec    int     `yaml:"item_timeout_sec"`
	StageBudgetSec    int     `yaml:"stage_budget_sec"`
	MinSuccessRatio   float64 `yaml:"min_success_ratio"`
	PlaceholderSec    float64 `yaml:"placeholder_sec"`
	RetriesPerItem    int     `yaml:"retries_per_item"`
	RetryBackoffMilli int     `yaml:"retry_backoff_ms"`
}

type PipelineTuning struct {
	Script StageTuning `yaml:"script"`
	Audio  StageTuning `yaml:"audio"`
	Slides StageTuning `yaml:"slides"`
	Video  StageTuning `yaml:"video"`
}

// DefaultTuning returns the band layout and execution limits used when no
// override file is configured. Bands are contiguous and cover 0-100.
func DefaultTuning() *PipelineTuning {
	return &PipelineTuning{
		Script: StageTuning{BandStart: 0, BandEnd: 20, ItemConcurrency: 1, ItemTimeoutSec: 120, StageBudgetSec: 300, PlaceholderSec: 3.0},
		Audio:  StageTuning{BandStart: 20, BandEnd: 55, ItemConcurrency: 3, ItemTimeoutSec: 90, StageBudgetSec: 900, PlaceholderSec: 3.0},
		Slides: StageTuning{BandStart: 55, BandEnd: 80, ItemConcurrency: 3, ItemTimeoutSec: 90, StageBudgetSec: 900, PlaceholderSec: 3.0},
		Video:  StageTuning{BandStart: 80, BandEnd: 100, ItemConcurrency: 1, ItemTimeoutSec: 600, StageBudgetSec: 1200, PlaceholderSec: 3.0},
	}
}

// LoadTuning merges the override file (if any) over the defaults.
func LoadTuning(path string) (*PipelineTuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline tuning %s: %w", path, err)
	}
	var overrides PipelineTuning
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse pipeline tuning %s: %w", path, err)
	}
	mergeStage(&tuning.Script, overrides.Script)
	mergeStage(&tuning.Audio, overrides.Audio)
	mergeStage(&tuning.Slides, overrides.Slides)
	mergeStage(&tuning.Video, overrides.Video)
	if err := validateBands(tuning); err != nil {
		return nil, err
	}
	return tuning, nil
}

func mergeStage(dst *StageTuning, src StageTuning) {
	if src.BandStart > 0 || src.BandEnd > 0 {
		dst.BandStart = src.BandStart
		dst.BandEnd = src.BandEnd
	}
	if src.ItemConcurrency > 0 {
		dst.ItemConcurrency = src.ItemConcurrency
	}
	if src.ItemTimeoutSec > 0 {
		dst.ItemTimeoutSec = src.ItemTimeoutSec
	}
	if src.StageBudgetSec > 0 {
		dst.StageBudgetSec = src.StageBudgetSec
	}
	if src.MinSuccessRatio > 0 {
		dst.MinSuccessRatio = src.MinSuccessRatio
	}
	if src.PlaceholderSec > 0 {
		dst.PlaceholderSec = src.PlaceholderSec
	}
	if src.RetriesPerItem > 0 {
		dst.RetriesPerItem = src.RetriesPerItem
	}
	if src.RetryBackoffMilli > 0 {
		dst.RetryBackoffMilli = src.RetryBackoffMilli
	}
}

// validateBands enforces the contiguous 0-100 band layout.
func validateBands(t *PipelineTuning) error {
	stages := []StageTuning{t.Script, t.Audio, t.Slides, t.Video}
	prevEnd := 0
	for _, s := range stages {
		if s.BandStart != prevEnd {
			return fmt.Errorf("invalid progress bands: stage starts at %d, expected %d", s.BandStart, prevEnd)
		}
		if s.BandEnd <= s.BandStart {
			return fmt.Errorf("invalid progress bands: empty band %d-%d", s.BandStart, s.BandEnd)
		}
		prevEnd = s.BandEnd
	}
	if prevEnd != 100 {
		return fmt.Errorf("invalid progress bands: last band ends at %d, expected 100", prevEnd)
	}
	return nil
}
