// Package runlog is an experiment-tracking logger for training jobs.
//
// A Logger binds a training loop's lifecycle events (metrics, hyperparameters,
// checkpoint saves) to a remote run store, a tree-shaped namespace addressed
// by slash-joined paths. Model checkpoints are mirrored into the run under
// "<prefix>/model/checkpoints": after every checkpoint save the remote leaf
// set is synchronized to exactly the current "best-k plus last" set, uploading
// additions and deleting stale entries.
//
// Example:
//
//	logger, err := runlog.New(
//	    runlog.WithBucket("experiments"),
//	    runlog.WithRunName("resnet-baseline"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	err = logger.LogMetrics(ctx, map[string]float64{"train/loss": loss}, step)
package runlog
