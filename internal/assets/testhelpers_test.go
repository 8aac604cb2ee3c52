package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type stubStore struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	delays  map[string]time.Duration
	failPut map[string]bool
	failURL bool
}

func newStubStore() *stubStore {
	return &stubStore{delays: map[string]time.Duration{}, failPut: map[string]bool{}}
}

func (s *stubStore) Put(ctx context.Context, key, contentType string, data []byte, progress func(int64, int64)) error {
	s.mu.Lock()
	delay := s.delays[string(data)]
	fail := s.failPut[string(data)]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errors.New("storage rejected object")
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	s.mu.Lock()
	s.puts = append(s.puts, key)
	s.mu.Unlock()
	return nil
}

func (s *stubStore) DownloadURL(_ context.Context, key string) (string, error) {
	if s.failURL {
		return "", errors.New("metadata unavailable")
	}
	return "https://cdn.test/" + key, nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *stubStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}
