package screens

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/internal/records"
	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/siteapi"
)

type siteCall struct {
	Method string
	Path   string
	Body   string
}

// fakeSite serves canned lists per resource and records every call.
type fakeSite struct {
	mu    sync.Mutex
	calls []siteCall
	lists map[string]string
	fail  map[string]int
}

func newFakeSite() *fakeSite {
	return &fakeSite{lists: map[string]string{}, fail: map[string]int{}}
}

func (f *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, siteCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	status := f.fail[r.Method+" "+r.URL.Path]
	list := f.lists[strings.TrimPrefix(r.URL.Path, "/api/")]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.Method == http.MethodGet {
		if list == "" {
			list = "[]"
		}
		_, _ = io.WriteString(w, list)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeSite) callsMatching(method, prefix string) []siteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []siteCall
	for _, c := range f.calls {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSite) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newSiteClient(t *testing.T, site *fakeSite) *siteapi.Client {
	t.Helper()
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)
	client, err := siteapi.NewClient(config.SiteAPIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("siteapi.NewClient: %v", err)
	}
	return client
}

type countingStore struct {
	mu   sync.Mutex
	puts []string
}

func (s *countingStore) Put(_ context.Context, key, _ string, _ []byte, _ func(int64, int64)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	return nil
}

func (s *countingStore) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *countingStore) Delete(context.Context, string) error { return nil }

func (s *countingStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

func formFactory[T records.Identified](t *testing.T, api *siteapi.Client, store assets.ObjectStore, def forms.Definition[T], withID func(T, string) T) FormFactory[T] {
	t.Helper()
	stager, err := assets.NewStager(1<<20, 32)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	uploader, err := assets.NewUploader(store, nil, nil)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	submitter, err := records.NewSubmitter[T](api, def.Resource, withID, nil)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	return func(onSaved func(context.Context, T)) (*forms.Form[T], error) {
		return forms.New(def, forms.Deps[T]{
			Stager:    stager,
			Uploader:  uploader,
			Submitter: submitter,
			OnSaved:   onSaved,
		})
	}
}

func pngUpload(t *testing.T) assets.File {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return assets.File{Name: "alice.png", ContentType: "image/png", Data: buf.Bytes()}
}

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

