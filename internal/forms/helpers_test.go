package forms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/pkg/enums"
)

type gallery struct {
	ID     string
	Title  string
	Kind   string
	Images []string
}

func galleryDefinition() Definition[gallery] {
	return Definition[gallery]{
		Resource: enums.ResourceProjects,
		Noun:     "project",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: FieldText, Required: true},
			{Name: "kind", Label: "Kind", Kind: FieldSelect, Options: []string{"web", "mobile"}},
			{Name: "images", Label: "Images", Kind: FieldAssetList, Required: true},
		},
		Hydrate: func(g gallery) Draft {
			d := Draft{ID: g.ID, Text: map[string]string{"title": g.Title, "kind": g.Kind}}
			for _, u := range g.Images {
				d.Assets = append(d.Assets, assets.Resolved(u))
			}
			return d
		},
		Assemble: func(d Draft) gallery {
			return gallery{ID: d.ID, Title: d.Text["title"], Kind: d.Text["kind"], Images: d.URLs()}
		},
	}
}

func pngFile(t *testing.T, name string) assets.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return assets.File{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

type memStore struct {
	mu      sync.Mutex
	puts    []string
	failPut bool
}

func (s *memStore) Put(_ context.Context, key, _ string, data []byte, progress func(int64, int64)) error {
	if s.failPut {
		return errors.New("bucket unavailable")
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	return nil
}

func (s *memStore) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *memStore) Delete(context.Context, string) error { return nil }

func (s *memStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

type stubSubmitter struct {
	mu      sync.Mutex
	calls   []gallery
	ids     []string
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (s *stubSubmitter) Submit(ctx context.Context, id string, record gallery) (gallery, error) {
	s.mu.Lock()
	s.calls = append(s.calls, record)
	s.ids = append(s.ids, id)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return gallery{}, s.err
	}
	if record.ID == "" {
		record.ID = "new-id"
	}
	return record, nil
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingCleaner struct {
	mu       sync.Mutex
	keys     []string
	deferred []string
	cause    error
}

func (c *recordingCleaner) Cleanup(_ context.Context, _ enums.Resource, keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
}

func (c *recordingCleaner) Defer(_ context.Context, _ enums.Resource, keys []string, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred = append(c.deferred, keys...)
	c.cause = cause
}

// siteStatusError mimics the collaborator's non-2xx error.
type siteStatusError struct{ code int }

func (e *siteStatusError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e *siteStatusError) StatusCode() int { return e.code }

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

type harness struct {
	form      *Form[gallery]
	store     *memStore
	submitter *stubSubmitter
	cleaner   *recordingCleaner
	notifier  *recordingNotifier
	saved     []gallery
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:     &memStore{},
		submitter: &stubSubmitter{},
		cleaner:   &recordingCleaner{},
		notifier:  &recordingNotifier{},
	}
	stager, err := assets.NewStager(1<<20, 64)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	uploader, err := assets.NewUploader(h.store, nil, nil)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	form, err := New(galleryDefinition(), Deps[gallery]{
		Stager:    stager,
		Uploader:  uploader,
		Submitter: h.submitter,
		Cleaner:   h.cleaner,
		Notifier:  h.notifier,
		OnSaved:   func(_ context.Context, g gallery) { h.saved = append(h.saved, g) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.form = form
	return h
}
