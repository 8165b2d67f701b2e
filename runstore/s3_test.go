package runstore

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelfold/runlog/errors"
	"github.com/modelfold/runlog/internal/testutil"
	"github.com/modelfold/runlog/runlogtypes"
)

func TestNewS3(t *testing.T) {
	t.Run("requires a bucket", func(t *testing.T) {
		_, err := NewS3(context.Background(), &Config{RunID: "RUN-1"})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("requires a run ID", func(t *testing.T) {
		_, err := NewS3(context.Background(), &Config{Bucket: "runs"})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("uses custom AWS config", func(t *testing.T) {
		store, err := NewS3(context.Background(), &Config{
			Bucket:          "runs",
			RunID:           "RUN-1",
			CustomAWSConfig: &aws.Config{Region: "eu-west-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "RUN-1", store.RunID())
	})
}

func TestS3StoreExists(t *testing.T) {
	listing := func(keys ...string) func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return func(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			out := &s3.ListObjectsV2Output{}
			for _, key := range keys {
				out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
			}
			return out, nil
		}
	}

	t.Run("exact leaf match", func(t *testing.T) {
		mock := &testutil.MockS3Client{ListObjectsV2Func: listing("RUN-1/training/status")}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		found, err := store.Exists(context.Background(), "training/status")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("subtree match", func(t *testing.T) {
		mock := &testutil.MockS3Client{ListObjectsV2Func: listing("RUN-1/training/model/checkpoints/e1.pt")}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		found, err := store.Exists(context.Background(), "training/model")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("sibling with shared prefix does not match", func(t *testing.T) {
		mock := &testutil.MockS3Client{ListObjectsV2Func: listing("RUN-1/training-archive/status")}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		found, err := store.Exists(context.Background(), "training")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("walks truncated pages", func(t *testing.T) {
		calls := 0
		mock := &testutil.MockS3Client{
			ListObjectsV2Func: func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				calls++
				if calls == 1 {
					assert.Nil(t, in.ContinuationToken)
					return &s3.ListObjectsV2Output{
						Contents:              []types.Object{{Key: aws.String("RUN-1/other")}},
						IsTruncated:           aws.Bool(true),
						NextContinuationToken: aws.String("page-2"),
					}, nil
				}
				assert.Equal(t, "page-2", aws.ToString(in.ContinuationToken))
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{{Key: aws.String("RUN-1/training/status")}},
				}, nil
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		found, err := store.Exists(context.Background(), "training/status")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2, calls)
	})

	t.Run("propagates listing errors", func(t *testing.T) {
		mock := &testutil.MockS3Client{
			ListObjectsV2Func: func(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				return nil, assert.AnError
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		_, err := store.Exists(context.Background(), "training")
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestS3StoreStructure(t *testing.T) {
	modified := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "RUN-1/training/model/checkpoints/", aws.ToString(in.Prefix))
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{
						Key:          aws.String("RUN-1/training/model/checkpoints/e3.pt"),
						Size:         aws.Int64(42),
						LastModified: aws.Time(modified),
						ETag:         aws.String(`"abc123"`),
					},
					{Key: aws.String("RUN-1/training/model/checkpoints/epoch=4/s100.pt")},
				},
			}, nil
		},
	}
	store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

	structure, err := store.Structure(context.Background(), "training/model/checkpoints")
	require.NoError(t, err)

	leaf, ok := structure["e3.pt"].(runlogtypes.Entry)
	require.True(t, ok)
	assert.Equal(t, "RUN-1/training/model/checkpoints/e3.pt", leaf.Key)
	assert.Equal(t, int64(42), leaf.Size)
	assert.Equal(t, modified, leaf.LastModified)
	assert.Equal(t, "abc123", leaf.ETag)

	nested, ok := structure["epoch=4"].(map[string]any)
	require.True(t, ok)
	_, ok = nested["s100.pt"].(runlogtypes.Entry)
	assert.True(t, ok)
}

func TestS3StoreUploadFile(t *testing.T) {
	t.Run("uploads file content", func(t *testing.T) {
		filesystem := billy.NewInMemoryFS()
		require.NoError(t, filesystem.MkdirAll("/ckpt", 0o755))
		require.NoError(t, filesystem.WriteFile("/ckpt/e3.pt", []byte("weights"), 0o644))

		var put *s3.PutObjectInput
		var body []byte
		mock := &testutil.MockS3Client{
			PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				put = in
				data, err := io.ReadAll(in.Body)
				require.NoError(t, err)
				body = data
				return &s3.PutObjectOutput{}, nil
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", filesystem)

		err := store.UploadFile(context.Background(), "training/model/checkpoints/e3.pt", "/ckpt/e3.pt")
		require.NoError(t, err)
		require.NotNil(t, put)
		assert.Equal(t, "RUN-1/training/model/checkpoints/e3.pt", aws.ToString(put.Key))
		assert.Equal(t, int64(len("weights")), aws.ToInt64(put.ContentLength))
		assert.Equal(t, []byte("weights"), body)
	})

	t.Run("missing local file", func(t *testing.T) {
		store := NewS3WithClient(&testutil.MockS3Client{}, "runs", "RUN-1", billy.NewInMemoryFS())

		err := store.UploadFile(context.Background(), "training/model/checkpoints/e3.pt", "/ckpt/e3.pt")
		require.Error(t, err)
	})

	t.Run("local path is a directory", func(t *testing.T) {
		filesystem := billy.NewInMemoryFS()
		require.NoError(t, filesystem.MkdirAll("/ckpt", 0o755))
		store := NewS3WithClient(&testutil.MockS3Client{}, "runs", "RUN-1", filesystem)

		err := store.UploadFile(context.Background(), "training/model/checkpoints/e3.pt", "/ckpt")
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})
}

func TestS3StoreSetValue(t *testing.T) {
	var put *s3.PutObjectInput
	var body []byte
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			put = in
			data, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			body = data
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

	err := store.SetValue(context.Background(), "training/hyperparams", map[string]any{"lr": 0.01})
	require.NoError(t, err)
	require.NotNil(t, put)
	assert.Equal(t, "RUN-1/training/hyperparams", aws.ToString(put.Key))
	assert.Equal(t, "application/json", aws.ToString(put.ContentType))
	assert.JSONEq(t, `{"lr":0.01}`, string(body))
}

func TestS3StoreAppendValue(t *testing.T) {
	t.Run("appends to existing series", func(t *testing.T) {
		var body []byte
		mock := &testutil.MockS3Client{
			GetObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return &s3.GetObjectOutput{
					Body: io.NopCloser(strings.NewReader(`{"value":0.9,"step":1}` + "\n")),
				}, nil
			},
			PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				data, err := io.ReadAll(in.Body)
				require.NoError(t, err)
				body = data
				assert.Equal(t, "application/x-ndjson", aws.ToString(in.ContentType))
				return &s3.PutObjectOutput{}, nil
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		err := store.AppendValue(context.Background(), "training/loss", map[string]any{"value": 0.5, "step": 2})
		require.NoError(t, err)
		assert.Equal(t, `{"value":0.9,"step":1}`+"\n"+`{"step":2,"value":0.5}`+"\n", string(body))
	})

	t.Run("starts a new series on missing key", func(t *testing.T) {
		var body []byte
		mock := &testutil.MockS3Client{
			GetObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, &types.NoSuchKey{}
			},
			PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				data, err := io.ReadAll(in.Body)
				require.NoError(t, err)
				body = data
				return &s3.PutObjectOutput{}, nil
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		err := store.AppendValue(context.Background(), "training/loss", map[string]any{"step": 1, "value": 0.9})
		require.NoError(t, err)
		assert.Equal(t, `{"step":1,"value":0.9}`+"\n", string(body))
	})
}

func TestS3StoreSetContent(t *testing.T) {
	var put *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			put = in
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

	err := store.SetContent(context.Background(), "training/model/summary", []byte("Linear(10, 1)"), "txt")
	require.NoError(t, err)
	require.NotNil(t, put)
	assert.Equal(t, "RUN-1/training/model/summary", aws.ToString(put.Key))
	assert.Contains(t, aws.ToString(put.ContentType), "text/plain")
}

func TestS3StoreDelete(t *testing.T) {
	t.Run("deletes the leaf key", func(t *testing.T) {
		var deleted string
		mock := &testutil.MockS3Client{
			DeleteObjectFunc: func(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
				deleted = aws.ToString(in.Key)
				return &s3.DeleteObjectOutput{}, nil
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		err := store.Delete(context.Background(), "training/model/checkpoints/e1.pt")
		require.NoError(t, err)
		assert.Equal(t, "RUN-1/training/model/checkpoints/e1.pt", deleted)
	})

	t.Run("propagates delete errors", func(t *testing.T) {
		mock := &testutil.MockS3Client{
			DeleteObjectFunc: func(_ context.Context, _ *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
				return nil, assert.AnError
			},
		}
		store := NewS3WithClient(mock, "runs", "RUN-1", billy.NewInMemoryFS())

		err := store.Delete(context.Background(), "training/status")
		assert.ErrorIs(t, err, assert.AnError)
	})
}
