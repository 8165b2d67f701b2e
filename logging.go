// Package runlog provides the metadata logging operations of the Logger.
package runlog

import (
	"context"

	"github.com/modelfold/runlog/errors"
)

// metricPoint is one appended sample in a metric series.
type metricPoint struct {
	Value float64 `json:"value"`
	Step  int     `json:"step"`
}

// LogHyperparams records the run's hyperparameters under
// "<prefix>/hyperparams", replacing any previously recorded set.
//
// Nested structure can be expressed with slash-joined keys, e.g.
// "optimizer/lr"; the run store reflects the hierarchy.
func (l *Logger) LogHyperparams(ctx context.Context, params map[string]any) error {
	if !l.authoritative {
		return nil
	}
	if params == nil {
		return errors.NewRunError("logHyperparams", l.runID, errors.ErrInvalidInput).
			WithMessage("params cannot be nil")
	}

	path := l.pathWithPrefix(ParametersKey)
	if err := l.store.SetValue(ctx, path, params); err != nil {
		return errors.NewPathError("logHyperparams", l.runID, path, err)
	}
	return nil
}

// LogMetrics appends numeric metric values to their series under the
// configured prefix. The step is recorded with each sample but ordering is
// not enforced; callers may log non-monotonic steps.
func (l *Logger) LogMetrics(ctx context.Context, metrics map[string]float64, step int) error {
	if !l.authoritative {
		return nil
	}

	for key, value := range metrics {
		path := l.pathWithPrefix(key)
		if err := l.store.AppendValue(ctx, path, metricPoint{Value: value, Step: step}); err != nil {
			return errors.NewPathError("logMetrics", l.runID, path, err)
		}
	}
	return nil
}

// LogModelSummary stores a textual model summary at "<prefix>/model/summary".
func (l *Logger) LogModelSummary(ctx context.Context, summary string) error {
	if !l.authoritative {
		return nil
	}

	path := l.pathWithPrefix("model", "summary")
	if err := l.store.SetContent(ctx, path, []byte(summary), "txt"); err != nil {
		return errors.NewPathError("logModelSummary", l.runID, path, err)
	}
	return nil
}

// Finalize records the terminal status of the run, e.g. "success" or
// "failed". An empty status records nothing.
func (l *Logger) Finalize(ctx context.Context, status string) error {
	if !l.authoritative || status == "" {
		return nil
	}

	path := l.pathWithPrefix("status")
	if err := l.store.SetValue(ctx, path, status); err != nil {
		return errors.NewPathError("finalize", l.runID, path, err)
	}
	return nil
}
