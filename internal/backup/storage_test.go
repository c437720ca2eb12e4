package backup_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/backup"
)

// ---- FileStorage -----------------------------------------------------------

func TestFileStorage_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := backup.NewFileStorage(filepath.Join(dir, "nested"), nil)
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, backup.ErrNoBackup)

	require.NoError(t, s.Save(ctx, []byte("first")))
	require.NoError(t, s.Save(ctx, []byte("second")))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStorage_Sealed(t *testing.T) {
	dir := t.TempDir()
	sealer := newSealer(t)
	ctx := context.Background()

	require.NoError(t, backup.NewFileStorage(dir, sealer).Save(ctx, []byte("secret")))

	raw, err := os.ReadFile(filepath.Join(dir, backup.DefaultFileName))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("secret")))

	got, err := backup.NewFileStorage(dir, sealer).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)
}

func TestFileStorage_CanceledContext(t *testing.T) {
	s := backup.NewFileStorage(t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, []byte("x")), context.Canceled)
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// ---- S3Storage -------------------------------------------------------------

// fakeS3 is an in-memory S3API keyed by bucket/key.
type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

var _ backup.S3API = (*fakeS3)(nil)

func TestS3Storage_SaveLoad(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := backup.NewS3Storage(fake, "journal", "", nil)
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, backup.ErrNoBackup)

	require.NoError(t, s.Save(ctx, []byte("snapshot")))

	assert.Contains(t, fake.objects, "journal/"+backup.DefaultObjectKey)
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), got)
	assert.Equal(t, "s3://journal/"+backup.DefaultObjectKey, s.Name())
}

func TestS3Storage_Sealed(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	sealer := newSealer(t)
	s := backup.NewS3Storage(fake, "b", "k", sealer)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []byte("snapshot")))
	assert.NotEqual(t, []byte("snapshot"), fake.objects["b/k"])

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), got)
}

func TestS3Storage_PutError(t *testing.T) {
	boom := errors.New("connection reset")
	s := backup.NewS3Storage(&fakeS3{objects: map[string][]byte{}, putErr: boom}, "b", "k", nil)

	err := s.Save(context.Background(), []byte("x"))

	assert.ErrorIs(t, err, boom)
}
