package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
)

func TestComputeProgress_LinearWithinBand(t *testing.T) {
	tuning := config.StageTuning{BandStart: 20, BandEnd: 55}

	cases := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{name: "stage start", completed: 0, total: 10, want: 20},
		{name: "halfway", completed: 5, total: 10, want: 37},
		{name: "stage end", completed: 10, total: 10, want: 55},
		{name: "single item done", completed: 1, total: 1, want: 55},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := ComputeProgress(tuning, models.StepAudio, tc.completed, tc.total)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestComputeProgress_EmptyStageReportsBandEnd(t *testing.T) {
	tuning := config.StageTuning{BandStart: 55, BandEnd: 80}

	got, msg := ComputeProgress(tuning, models.StepSlides, 0, 0)
	require.Equal(t, 80, got)
	require.Contains(t, msg, "0/0")
}

func TestComputeProgress_ClampedToBand(t *testing.T) {
	tuning := config.StageTuning{BandStart: 0, BandEnd: 20}

	// Out-of-range positions must never escape the band.
	low, _ := ComputeProgress(tuning, models.StepScript, -3, 4)
	require.Equal(t, 0, low)

	high, _ := ComputeProgress(tuning, models.StepScript, 9, 4)
	require.Equal(t, 20, high)
}

func TestComputeProgress_MonotonicAcrossStage(t *testing.T) {
	tuning := config.StageTuning{BandStart: 80, BandEnd: 100}

	prev := -1
	for done := 0; done <= 7; done++ {
		got, _ := ComputeProgress(tuning, models.StepVideo, done, 7)
		require.GreaterOrEqual(t, got, prev)
		require.GreaterOrEqual(t, got, 80)
		require.LessOrEqual(t, got, 100)
		prev = got
	}
	require.Equal(t, 100, prev)
}

func TestComputeProgress_StepMessages(t *testing.T) {
	tuning := config.StageTuning{BandStart: 20, BandEnd: 55}

	_, msg := ComputeProgress(tuning, models.StepAudio, 2, 5)
	require.Equal(t, "synthesizing narration (2/5)", msg)

	_, unknown := ComputeProgress(tuning, models.JobStep("mystery"), 1, 2)
	require.Equal(t, "processing (1/2)", unknown)
}
