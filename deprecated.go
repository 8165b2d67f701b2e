// Package runlog retains the method names of the legacy logger API.
// Each shim fails with ErrDeprecated and points at the replacement call.
package runlog

import (
	"github.com/modelfold/runlog/errors"
)

// deprecatedAPIUsage builds the error every removed legacy method returns.
func (l *Logger) deprecatedAPIUsage(name, sample string) error {
	return errors.New(name, errors.ErrDeprecated).
		WithMessage("instead of logger." + name + " use: " + sample)
}

// LogMetric is deprecated.
//
// Deprecated: use LogMetrics with a single-entry map instead.
func (l *Logger) LogMetric(_ string, _ float64) error {
	return l.deprecatedAPIUsage("LogMetric",
		`logger.LogMetrics(ctx, map[string]float64{"`+l.prefix+`/key": 42}, step)`)
}

// LogText is deprecated.
//
// Deprecated: write text through the run store instead.
func (l *Logger) LogText(_, _ string) error {
	return l.deprecatedAPIUsage("LogText",
		`logger.Store().SetContent(ctx, "`+l.prefix+`/key", []byte("text"), "txt")`)
}

// LogImage is deprecated.
//
// Deprecated: upload image files through the run store instead.
func (l *Logger) LogImage(_, _ string) error {
	return l.deprecatedAPIUsage("LogImage",
		`logger.Store().UploadFile(ctx, "`+l.prefix+`/key", "path_to_image")`)
}

// LogArtifact is deprecated.
//
// Deprecated: upload artifacts through the run store instead.
func (l *Logger) LogArtifact(_ string) error {
	return l.deprecatedAPIUsage("LogArtifact",
		`logger.Store().UploadFile(ctx, "`+l.prefix+`/`+ArtifactsKey+`/key", "path_to_file")`)
}

// SetProperty is deprecated.
//
// Deprecated: set values through the run store instead.
func (l *Logger) SetProperty(_ string, _ any) error {
	return l.deprecatedAPIUsage("SetProperty",
		`logger.Store().SetValue(ctx, "`+l.prefix+`/`+ParametersKey+`/key", value)`)
}

// AppendTags is deprecated.
//
// Deprecated: append tags through the run store instead.
func (l *Logger) AppendTags(_ ...string) error {
	return l.deprecatedAPIUsage("AppendTags",
		`logger.Store().AppendValue(ctx, "sys/tags", "tag")`)
}
