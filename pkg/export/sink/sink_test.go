package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nsyszr/flowpilot/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	f := NewFile(dir)

	path, err := f.Put(context.Background(), "log.xes.csv", []byte("first\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "log.xes.csv"), path)

	path, err = f.Put(context.Background(), "log.xes.csv", []byte("second\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Put(t *testing.T) {
	client := &fakeS3{}
	s := newS3(client, "logs", "flowpilot/")

	uri, err := s.Put(context.Background(), "log.xes.csv", []byte("case_id\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3://logs/flowpilot/log.xes.csv", uri)
	assert.Equal(t, "logs", aws.ToString(client.in.Bucket))
	assert.Equal(t, "flowpilot/log.xes.csv", aws.ToString(client.in.Key))
	assert.Equal(t, "case_id\n", string(client.body))
}

func TestS3PutError(t *testing.T) {
	s := newS3(&fakeS3{err: errors.New("access denied")}, "logs", "")

	_, err := s.Put(context.Background(), "log.xes.csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), &config.Config{ExportDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	_, err = New(context.Background(), &config.Config{ExportSink: "s3"})
	assert.Error(t, err, "bucket is required")

	_, err = New(context.Background(), &config.Config{ExportSink: "ftp"})
	assert.Error(t, err)
}
