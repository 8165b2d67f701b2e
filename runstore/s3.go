package runstore

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/modelfold/runlog/errors"
	"github.com/modelfold/runlog/internal/storeapi"
	"github.com/modelfold/runlog/runlogtypes"
)

const (
	// defaultContentType is used when content type detection fails
	defaultContentType = "application/octet-stream"

	// listPageSize is the ListObjectsV2 page size (AWS default and maximum)
	listPageSize = 1000
)

// Config holds configuration for an S3-backed run store.
type Config struct {
	// Bucket is the S3 bucket run trees live in
	Bucket string

	// RunID is the run identifier; every key is rooted under it
	RunID string

	// Region is the AWS region, falling back to the credential chain default
	Region string

	// CustomAWSConfig overrides the default AWS configuration loading
	CustomAWSConfig *aws.Config

	// ForcePathStyle forces path-style URLs for S3-compatible services
	ForcePathStyle bool

	// Filesystem is the local filesystem abstraction for file reads;
	// defaults to the OS filesystem
	Filesystem fs.Filesystem
}

// S3Store implements Store against an S3 bucket. A run's tree maps to object
// keys of the form "<runID>/<slash-joined path>".
type S3Store struct {
	api    storeapi.S3API
	bucket string
	runID  string
	fs     fs.Filesystem
}

// NewS3 creates an S3-backed store using the default AWS credential chain,
// unless a custom AWS configuration is provided.
func NewS3(ctx context.Context, cfg *Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("newS3", errors.ErrInvalidInput).
			WithMessage("bucket cannot be empty")
	}
	if cfg.RunID == "" {
		return nil, errors.New("newS3", errors.ErrInvalidInput).
			WithMessage("run ID cannot be empty")
	}

	var awsCfg aws.Config
	var err error
	if cfg.CustomAWSConfig != nil {
		awsCfg = *cfg.CustomAWSConfig
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewRunError("newS3", cfg.RunID, err)
		}
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	var s3Opts []func(*s3.Options)
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &S3Store{
		api:    s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		runID:  cfg.RunID,
		fs:     filesystem,
	}, nil
}

// NewS3WithClient creates an S3-backed store with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewS3WithClient(api storeapi.S3API, bucket, runID string, filesystem fs.Filesystem) *S3Store {
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}
	return &S3Store{
		api:    api,
		bucket: bucket,
		runID:  runID,
		fs:     filesystem,
	}
}

// RunID returns the run identifier this store is rooted under.
func (s *S3Store) RunID() string {
	return s.runID
}

// key maps a slash-joined tree path to the backing object key.
func (s *S3Store) key(path string) string {
	return s.runID + "/" + path
}

// Exists reports whether path has any content: a leaf object at the exact key
// or any object below it.
func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	exact := s.key(path)
	subtree := exact + "/"

	var continuationToken *string
	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(exact),
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(listPageSize),
		})
		if err != nil {
			return false, errors.NewPathError("exists", s.runID, path, err)
		}

		for _, obj := range out.Contents {
			if obj.Key == nil {
				continue
			}
			if *obj.Key == exact || strings.HasPrefix(*obj.Key, subtree) {
				return true, nil
			}
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			return false, nil
		}
		continuationToken = out.NextContinuationToken
	}
}

// Structure lists everything below path and folds the keys into a nested
// mapping. Leaves are runlogtypes.Entry values.
func (s *S3Store) Structure(ctx context.Context, path string) (map[string]any, error) {
	subtree := s.key(path) + "/"
	root := make(map[string]any)

	var continuationToken *string
	for {
		out, err := s.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(subtree),
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(listPageSize),
		})
		if err != nil {
			return nil, errors.NewPathError("structure", s.runID, path, err)
		}

		for _, obj := range out.Contents {
			if obj.Key == nil || !strings.HasPrefix(*obj.Key, subtree) {
				continue
			}

			entry := runlogtypes.Entry{Key: *obj.Key}
			if obj.Size != nil {
				entry.Size = *obj.Size
			}
			if obj.LastModified != nil {
				entry.LastModified = *obj.LastModified
			}
			if obj.ETag != nil {
				entry.ETag = strings.Trim(*obj.ETag, `"`)
			}

			insertLeaf(root, strings.Split(strings.TrimPrefix(*obj.Key, subtree), "/"), entry)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			return root, nil
		}
		continuationToken = out.NextContinuationToken
	}
}

// insertLeaf places an entry into the nested mapping, creating intermediate
// namespaces as needed.
func insertLeaf(root map[string]any, segments []string, entry runlogtypes.Entry) {
	node := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = entry
}

// UploadFile uploads a local file to the leaf at path. Re-uploading the same
// name overwrites the previous object.
func (s *S3Store) UploadFile(ctx context.Context, path, localPath string) error {
	info, err := s.fs.Stat(localPath)
	if err != nil {
		return errors.NewPathError("uploadFile", s.runID, path, err)
	}
	if info.IsDir() {
		return errors.NewPathError("uploadFile", s.runID, path, errors.ErrInvalidInput).
			WithMessage("local path points to a directory, not a file")
	}

	file, err := s.fs.Open(localPath)
	if err != nil {
		return errors.NewPathError("uploadFile", s.runID, path, err)
	}
	defer file.Close()

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(path)),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(s.detectContentType(localPath)),
	})
	if err != nil {
		return errors.NewPathError("uploadFile", s.runID, path, err)
	}
	return nil
}

// SetValue stores a single JSON-encoded value at path.
func (s *S3Store) SetValue(ctx context.Context, path string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return errors.NewPathError("setValue", s.runID, path, err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(path)),
		Body:        bytes.NewReader(encoded),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.NewPathError("setValue", s.runID, path, err)
	}
	return nil
}

// AppendValue appends a JSON-encoded value to the series at path. The series
// is stored as JSON lines; an absent series starts empty. The read-modify-write
// is not atomic, which is acceptable under the single-writer model.
func (s *S3Store) AppendValue(ctx context.Context, path string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return errors.NewPathError("appendValue", s.runID, path, err)
	}

	existing, err := s.readObject(ctx, path)
	if err != nil {
		return errors.NewPathError("appendValue", s.runID, path, err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	buf.Write(encoded)
	buf.WriteByte('\n')

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(path)),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return errors.NewPathError("appendValue", s.runID, path, err)
	}
	return nil
}

// SetContent stores raw content at path with a content type derived from the
// file extension (e.g. "txt").
func (s *S3Store) SetContent(ctx context.Context, path string, content []byte, ext string) error {
	contentType := mime.TypeByExtension("." + strings.TrimPrefix(ext, "."))
	if contentType == "" {
		contentType = defaultContentType
	}

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(path)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.NewPathError("setContent", s.runID, path, err)
	}
	return nil
}

// Delete removes the leaf at path.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return errors.NewPathError("delete", s.runID, path, err)
	}
	return nil
}

// readObject fetches the object at path, returning nil for a missing key.
func (s *S3Store) readObject(ctx context.Context, path string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if stderrors.As(err, &noSuchKey) {
			return nil, nil
		}
		var apiErr interface{ ErrorCode() string }
		if stderrors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// detectContentType sniffs the local file's content, falling back to
// extension-based detection.
func (s *S3Store) detectContentType(path string) string {
	file, err := s.fs.Open(path)
	if err != nil {
		return detectContentTypeFromExtension(path)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return detectContentTypeFromExtension(path)
}

func detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return defaultContentType
}

// Verify the S3 store satisfies the Store interface
var _ Store = (*S3Store)(nil)
