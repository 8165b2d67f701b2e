// Package runlog provides functional options for configuring Logger behavior.
// These options follow the functional options pattern for clean, composable configuration.
package runlog

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/sirupsen/logrus"

	"github.com/modelfold/runlog/runlogtypes"
)

// WithBucket sets the S3 bucket the run tree is stored in.
// Required unless an already initialized store is provided.
func WithBucket(bucket string) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.Bucket = bucket
	}
}

// WithRegion sets the AWS region for the run store.
// If not specified, uses the default region from the credential chain.
func WithRegion(region string) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.Region = region
	}
}

// WithRunName sets the editable, human-readable name of the run.
func WithRunName(name string) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.RunName = name
	}
}

// WithPrefix sets the root namespace for all metadata logging.
// Default is "training".
func WithPrefix(prefix string) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.Prefix = prefix
	}
}

// WithLogCheckpoints controls whether model checkpoints are mirrored to the
// run store after each checkpoint save. Default is true.
func WithLogCheckpoints(enabled bool) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.LogCheckpoints = enabled
	}
}

// WithAuthority marks whether this process is the logging-authoritative one.
// In distributed training only one process should write to the run; loggers
// constructed with WithAuthority(false) turn all write methods into no-ops.
// Default is true.
func WithAuthority(authoritative bool) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.Authoritative = authoritative
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.CustomAWSConfig = config
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithFilesystem sets a custom filesystem implementation for checkpoint reads.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger used for diagnostic output.
// Defaults to the logrus standard logger.
func WithLogger(log logrus.FieldLogger) runlogtypes.Option {
	return func(c *runlogtypes.LoggerConfig) {
		c.Log = log
	}
}

// WithSyncRefreshExisting re-uploads desired checkpoint entries even when a
// leaf with the same name is already present remotely. Uploads are idempotent
// overwrites, so this is safe; it trades extra writes for refreshing entries
// whose local content may have changed under an unchanged name.
func WithSyncRefreshExisting(refresh bool) runlogtypes.SyncOption {
	return func(c *runlogtypes.SyncOptionConfig) {
		c.RefreshExisting = refresh
	}
}
