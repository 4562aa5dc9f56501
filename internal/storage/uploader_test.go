package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeStore struct {
	mu     sync.Mutex
	puts   int
	failOn map[string]bool
}

func (f *fakeStore) Put(_ context.Context, key string, _ []byte) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.failOn[key] {
		return "", "", errors.New("disk full")
	}
	return "https://cdn.example/" + key, key, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error { return nil }

func TestUploadAllFanOut(t *testing.T) {
	store := &fakeStore{}
	u := NewUploader(store)

	var (
		mu   sync.Mutex
		last float64
	)
	images, err := u.UploadAll(context.Background(), "place-x", [][]byte{
		[]byte("a"), []byte("b"), []byte("c"),
	}, func(pct float64) {
		mu.Lock()
		if pct > last {
			last = pct
		}
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("upload all: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	for _, img := range images {
		if !strings.HasPrefix(img.URL, "https://cdn.example/place-x-") || img.Path == "" {
			t.Fatalf("malformed image %+v", img)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if last < 99.9 || last > 100.1 {
		t.Fatalf("aggregate progress must reach 100%%, got %v", last)
	}
}

func TestUploadFailureSparesSiblings(t *testing.T) {
	store := &fakeStore{failOn: map[string]bool{"place-x-1": true}}
	u := NewUploader(store)

	images, err := u.UploadAll(context.Background(), "place-x", [][]byte{
		[]byte("a"), []byte("b"), []byte("c"),
	}, nil)
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("siblings must survive a per-file failure, got %d images", len(images))
	}
	if store.puts != 3 {
		t.Fatalf("every file must be attempted, got %d puts", store.puts)
	}
}

func TestUploadAllEmptyBatch(t *testing.T) {
	u := NewUploader(&fakeStore{})
	images, err := u.UploadAll(context.Background(), "p", nil, nil)
	if err != nil || images != nil {
		t.Fatalf("empty batch: %v %v", images, err)
	}
}
