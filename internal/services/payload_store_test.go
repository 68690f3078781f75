package services

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

	"uct-dashboard/backend-go/internal/config"
	"uct-dashboard/backend-go/internal/logger"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wire_data.json")
	s := NewFileStore(path)
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}
	if err := s.Save(ctx, []byte(`{"date":"2026-02-23"}`)); err != nil {
		t.Fatal(err)
	}
	b, err := s.Load(ctx)
	if err != nil || string(b) != `{"date":"2026-02-23"}` {
		t.Fatalf("unexpected load %q err=%v", b, err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := &S3Store{client: fake, bucket: "uct", key: "wire/wire_data.json"}
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Save(ctx, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if string(fake.objects["uct/wire/wire_data.json"]) != `{"a":1}` {
		t.Fatalf("object not written: %v", fake.objects)
	}
	b, err := s.Load(ctx)
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("unexpected load %q err=%v", b, err)
	}
}

func TestNewPayloadStoreFallsBackToFile(t *testing.T) {
	cfg := config.Config{
		WireDataPath: filepath.Join(t.TempDir(), "wire.json"),
		RedisURL:     "redis://127.0.0.1:1/0",
	}
	for _, kind := range []string{"", "file", "redis", "s3", "nonsense"} {
		cfg.PayloadStore = kind
		s := NewPayloadStore(context.Background(), cfg, logger.Discard())
		if s.Name() != "file" {
			t.Fatalf("%q: expected file fallback, got %s", kind, s.Name())
		}
	}
}
