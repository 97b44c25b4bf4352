package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
)

// StageItemError records one failed item without aborting its siblings.
type StageItemError struct {
	Step  models.JobStep
	Index int
	Err   error
}

func (e *StageItemError) Error() string {
	return fmt.Sprintf("%s item %d: %v", e.Step, e.Index, e.Err)
}

func (e *StageItemError) Unwrap() error {
	return e.Err
}

// ItemResult is the outcome for one input index. Exactly one of Asset and
// Err is set.
type ItemResult struct {
	Asset string
	Err   *StageItemError
}

// StageOutcome aggregates per-item results in input index order.
type StageOutcome struct {
	Step    models.JobStep
	Results []ItemResult
}

func (o *StageOutcome) Succeeded() int {
	n := 0
	for _, r := range o.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

func (o *StageOutcome) Failed() int {
	return len(o.Results) - o.Succeeded()
}

// Assets returns the result slice as index-aligned asset paths, empty
// strings marking failed items.
func (o *StageOutcome) Assets() []string {
	assets := make([]string, len(o.Results))
	for i, r := range o.Results {
		if r.Err == nil {
			assets[i] = r.Asset
		}
	}
	return assets
}

// FirstError returns the first failed item's error in index order, nil when
// everything succeeded.
func (o *StageOutcome) FirstError() error {
	for _, r := range o.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Evaluate applies the stage success policy: a stage with zero successes
// fails outright, and an optional minimum success ratio tightens that
// default. A passing outcome with failures is a degraded success the
// pipeline continues with.
func (o *StageOutcome) Evaluate(minSuccessRatio float64) error {
	if len(o.Results) == 0 {
		return nil
	}
	succeeded := o.Succeeded()
	if succeeded == 0 {
		return fmt.Errorf("%d/%d items failed: %v", o.Failed(), len(o.Results), o.FirstError())
	}
	ratio := float64(succeeded) / float64(len(o.Results))
	if minSuccessRatio > 0 && ratio < minSuccessRatio {
		return fmt.Errorf("only %d/%d items succeeded, below required ratio %.2f: %v",
			succeeded, len(o.Results), minSuccessRatio, o.FirstError())
	}
	return nil
}

// ItemFunc produces the asset for one input index.
type ItemFunc func(ctx context.Context, index int) (string, error)

// RunStage fans total independent items out over a bounded pool of workers
// and collects results into a pre-sized slice indexed by input position, so
// the returned order always matches the input order regardless of
// completion order. Each item gets its own timeout and optional retries; a
// failed item is recorded, never fatal here. Cancellation is observed
// before every dispatch; in-flight items run to their own timeout. The
// caller owns the stage's wall-clock budget through ctx.
func RunStage(ctx context.Context, step models.JobStep, tuning config.StageTuning, total int, op ItemFunc, onProgress ProgressFunc) (*StageOutcome, error) {
	outcome := &StageOutcome{
		Step:    step,
		Results: make([]ItemResult, total),
	}

	if total == 0 {
		percent, message := ComputeProgress(tuning, step, 0, 0)
		onProgress(ProgressEvent{Step: step, Percent: percent, Message: message})
		return outcome, nil
	}

	concurrency := tuning.ItemConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > total {
		concurrency = total
	}

	var (
		wg        sync.WaitGroup
		completed int32
	)
	sem := make(chan struct{}, concurrency)

dispatch:
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			asset, err := runItem(ctx, tuning, idx, op)
			if err != nil {
				outcome.Results[idx] = ItemResult{Err: &StageItemError{Step: step, Index: idx, Err: err}}
			} else {
				outcome.Results[idx] = ItemResult{Asset: asset}
			}

			done := int(atomic.AddInt32(&completed, 1))
			percent, message := ComputeProgress(tuning, step, done, total)
			onProgress(ProgressEvent{Step: step, Percent: percent, Message: message})
		}(i)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func runItem(ctx context.Context, tuning config.StageTuning, idx int, op ItemFunc) (string, error) {
	timeout := time.Duration(tuning.ItemTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}

	var lastErr error
	attempts := tuning.RetriesPerItem + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		itemCtx, cancel := context.WithTimeout(ctx, timeout)
		asset, err := op(itemCtx, idx)
		cancel()
		if err == nil {
			return asset, nil
		}
		lastErr = err

		if backoff := time.Duration(tuning.RetryBackoffMilli) * time.Millisecond; backoff > 0 && attempt < attempts-1 {
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
		}
	}
	return "", lastErr
}
