// Package runlog provides Logger initialization and configuration.
//
// The Logger provides a high-level interface for recording experiment
// metadata to a remote run store, supporting metrics, hyperparameters,
// model summaries, and checkpoint mirroring.
package runlog

import (
	"context"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/modelfold/runlog/errors"
	"github.com/modelfold/runlog/runlogtypes"
	"github.com/modelfold/runlog/runstore"
)

// Version is the library version recorded on every run it creates.
const Version = "0.2.0"

const (
	// JoinChar separates namespace path segments
	JoinChar = "/"

	// ParametersKey is the namespace hyperparameters are stored under
	ParametersKey = "hyperparams"

	// ArtifactsKey is the namespace generic artifacts are stored under
	ArtifactsKey = "artifacts"

	// integrationVersionKey records which library version wrote the run
	integrationVersionKey = "source/integrations/runlog"
)

// Logger records experiment metadata to a remote run store.
// All write methods are no-ops on loggers that are not logging-authoritative,
// so the same construction code can run on every process of a distributed job.
type Logger struct {
	store          runstore.Store
	runID          string
	runName        string
	prefix         string
	logCheckpoints bool
	authoritative  bool
	log            logrus.FieldLogger
}

// New creates a Logger backed by a fresh S3 run store.
// A new run ID is generated unless the store adopts an existing one.
//
// Example:
//
//	logger, err := runlog.New(
//	    runlog.WithBucket("experiments"),
//	    runlog.WithRegion("us-west-2"),
//	    runlog.WithRunName("mlp-quick-run"),
//	)
func New(opts ...runlogtypes.Option) (*Logger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := verifyConfig(cfg); err != nil {
		return nil, err
	}

	runID := newRunID()
	store, err := runstore.NewS3(context.Background(), &runstore.Config{
		Bucket:          cfg.Bucket,
		RunID:           runID,
		Region:          cfg.Region,
		CustomAWSConfig: cfg.CustomAWSConfig,
		ForcePathStyle:  cfg.ForcePathStyle,
		Filesystem:      cfg.Filesystem,
	})
	if err != nil {
		return nil, err
	}

	return finishInit(store, runID, cfg)
}

// NewWithStore creates a Logger over an already initialized run store.
// Store-initialization options (bucket, region, AWS configuration, path
// style, filesystem) cannot be combined with an existing store; passing any
// of them is an error, mirroring the constructor validation of the original
// run-based initialization.
func NewWithStore(store runstore.Store, opts ...runlogtypes.Option) (*Logger, error) {
	if store == nil {
		return nil, errors.New("new", errors.ErrInvalidInput).
			WithMessage("store cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Bucket != "" || cfg.Region != "" || cfg.CustomAWSConfig != nil ||
		cfg.ForcePathStyle || cfg.Filesystem != nil {
		return nil, errors.New("new", errors.ErrRunConflict).
			WithMessage("when an already initialized store is provided you can't provide store initialization options")
	}
	if err := verifyConfig(cfg); err != nil {
		return nil, err
	}

	runID := newRunID()
	if ident, ok := store.(interface{ RunID() string }); ok && ident.RunID() != "" {
		runID = ident.RunID()
	}

	return finishInit(store, runID, cfg)
}

// finishInit assembles the Logger and stamps the run with the integration
// version, for both newly created and adopted stores.
func finishInit(store runstore.Store, runID string, cfg *runlogtypes.LoggerConfig) (*Logger, error) {
	l := &Logger{
		store:          store,
		runID:          runID,
		runName:        cfg.RunName,
		prefix:         cfg.Prefix,
		logCheckpoints: cfg.LogCheckpoints,
		authoritative:  cfg.Authoritative,
		log:            cfg.Log,
	}

	if l.authoritative {
		if err := store.SetValue(context.Background(), integrationVersionKey, Version); err != nil {
			return nil, errors.NewRunError("new", runID, err).
				WithMessage("failed to record integration version")
		}
	}

	return l, nil
}

// defaultConfig returns the baseline logger configuration.
func defaultConfig() *runlogtypes.LoggerConfig {
	return &runlogtypes.LoggerConfig{
		Prefix:         "training",
		LogCheckpoints: true,
		Authoritative:  true,
		Log:            logrus.StandardLogger(),
	}
}

// verifyConfig checks option combinations that cannot produce a usable run.
func verifyConfig(cfg *runlogtypes.LoggerConfig) error {
	if cfg.Prefix != "" {
		if strings.HasPrefix(cfg.Prefix, JoinChar) || strings.HasSuffix(cfg.Prefix, JoinChar) {
			return errors.New("new", errors.ErrInvalidInput).
				WithPath(cfg.Prefix).
				WithMessage("prefix cannot start or end with " + JoinChar)
		}
	}
	return nil
}

// newRunID generates a short, sortable run identifier.
func newRunID() string {
	return "RUN-" + ksuid.New().String()
}

// Name returns the editable run name.
func (l *Logger) Name() string {
	return l.runName
}

// Version returns the run's short identifier.
func (l *Logger) Version() string {
	return l.runID
}

// Store returns the underlying run store. It allows recording metadata this
// adapter has no dedicated method for, at caller-chosen namespace paths.
func (l *Logger) Store() runstore.Store {
	return l.store
}

// pathWithPrefix returns the given keys joined by JoinChar, started with the
// configured prefix if defined.
func (l *Logger) pathWithPrefix(keys ...string) string {
	if l.prefix != "" {
		return strings.Join(append([]string{l.prefix}, keys...), JoinChar)
	}
	return strings.Join(keys, JoinChar)
}
