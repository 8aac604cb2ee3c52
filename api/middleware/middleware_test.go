package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/content-console/pkg/logger"
)

func TestRequestIDPropagatesOrGenerates(t *testing.T) {
	var seen string
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if seen != "req-1" || resp.Header().Get(requestIDHeader) != "req-1" {
		t.Fatalf("expected propagated id, got %q", seen)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "req-1" || resp.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected generated id, got %q", seen)
	}
}

func TestRecovererWritesInternalErrorAndLogsRoute(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "console", Level: logger.ParseLevel("debug"), Output: buf})

	r := chi.NewRouter()
	r.Use(Recoverer(logg))
	r.Get("/console/forms/{formId}", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/console/forms/f1", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "INTERNAL_ERROR") || strings.Contains(resp.Body.String(), "boom") {
		t.Fatalf("expected opaque internal error envelope, got %s", resp.Body.String())
	}
	for _, want := range []string{`"route":"/console/forms/{formId}"`, `"path":"/console/forms/f1"`, `"method":"GET"`} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %s in log entry %s", want, buf.String())
		}
	}
}

func TestRecovererReraisesAbortHandler(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

type recordedObservation struct {
	method string
	route  string
	status int
}

type fakeObserver struct {
	seen []recordedObservation
}

func (f *fakeObserver) Observe(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, recordedObservation{method: method, route: route, status: status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &fakeObserver{}
	router := chi.NewRouter()
	router.Use(Metrics(observer))
	router.Use(Logging(logger.Nop()))
	router.Get("/console/forms/{formId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/console/forms/abc", nil))

	if len(observer.seen) != 1 {
		t.Fatalf("expected one observation, got %v", observer.seen)
	}
	got := observer.seen[0]
	if got.route != "/console/forms/{formId}" || got.status != http.StatusTeapot || got.method != http.MethodGet {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestCORSAllowsConsoleHeaders(t *testing.T) {
	handler := CORS([]string{"https://admin.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/console/projects/p1", nil)
	req.Header.Set("Origin", "https://admin.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", confirmDeleteHeader)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Header().Get("Access-Control-Allow-Origin") != "https://admin.example" {
		t.Fatalf("expected origin allowed, headers %v", resp.Header())
	}
}
