package siteapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/angelmondragon/content-console/pkg/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type captured struct {
	method string
	url    string
	body   string
	auth   string
}

func newTestClient(t *testing.T, status int, respBody string, calls *[]captured) *Client {
	t.Helper()
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var body string
		if req.Body != nil {
			b, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("read request body: %v", err)
			}
			body = string(b)
		}
		*calls = append(*calls, captured{
			method: req.Method,
			url:    req.URL.String(),
			body:   body,
			auth:   req.Header.Get("Authorization"),
		})
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient(
		config.SiteAPIConfig{BaseURL: "http://site.test/"},
		WithHTTPClient(&http.Client{Transport: rt}),
		WithToken("secret"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientListReturnsRawArray(t *testing.T) {
	var calls []captured
	client := newTestClient(t, http.StatusOK, `[{"_id":"1"}]`, &calls)

	raw, err := client.List(context.Background(), "projects")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if string(raw) != `[{"_id":"1"}]` {
		t.Fatalf("unexpected body %s", raw)
	}
	if calls[0].method != http.MethodGet || calls[0].url != "http://site.test/api/projects" {
		t.Fatalf("unexpected call %+v", calls[0])
	}
	if calls[0].auth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", calls[0].auth)
	}
}

func TestClientCreateAndUpdateRoutes(t *testing.T) {
	var calls []captured
	client := newTestClient(t, http.StatusCreated, "", &calls)

	raw, err := client.Create(context.Background(), "services", map[string]string{"service": "Solar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if raw != nil {
		t.Fatalf("expected nil body for empty response, got %s", raw)
	}
	if _, err := client.Update(context.Background(), "services", "abc", map[string]string{"service": "Wind"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if calls[0].method != http.MethodPost || calls[0].url != "http://site.test/api/services" {
		t.Fatalf("unexpected create call %+v", calls[0])
	}
	if calls[1].method != http.MethodPut || calls[1].url != "http://site.test/api/services/abc" {
		t.Fatalf("unexpected update call %+v", calls[1])
	}
	if calls[1].body != `{"service":"Wind"}` {
		t.Fatalf("unexpected update body %s", calls[1].body)
	}
}

func TestClientStatusAndFlagRoutes(t *testing.T) {
	var calls []captured
	client := newTestClient(t, http.StatusOK, `{"ok":true}`, &calls)

	if err := client.UpdateContactStatus(context.Background(), "c1", "ongoing"); err != nil {
		t.Fatalf("contact status: %v", err)
	}
	if err := client.UpdateQuoteStatus(context.Background(), "q1", "completed"); err != nil {
		t.Fatalf("quote status: %v", err)
	}
	if err := client.FlagQuote(context.Background(), "q1"); err != nil {
		t.Fatalf("flag: %v", err)
	}

	want := []captured{
		{method: http.MethodPut, url: "http://site.test/api/contacts/c1", body: `{"status":"ongoing"}`},
		{method: http.MethodPut, url: "http://site.test/api/quote/q1/status", body: `{"status":"completed"}`},
		{method: http.MethodPut, url: "http://site.test/api/quote/q1/flag", body: ""},
	}
	for i, w := range want {
		got := calls[i]
		if got.method != w.method || got.url != w.url || got.body != w.body {
			t.Fatalf("call %d: expected %+v, got %+v", i, w, got)
		}
	}
}

func TestClientNonSuccessReturnsStatusError(t *testing.T) {
	var calls []captured
	client := newTestClient(t, http.StatusNotFound, "no such record", &calls)

	err := client.Delete(context.Background(), "employees", "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	se := err.(*StatusError)
	if se.StatusCode() != http.StatusNotFound || se.Body != "no such record" {
		t.Fatalf("unexpected status error %+v", se)
	}
}

func TestClientRejectsMissingIDs(t *testing.T) {
	var calls []captured
	client := newTestClient(t, http.StatusOK, "", &calls)

	if _, err := client.Update(context.Background(), "projects", " ", nil); err == nil {
		t.Fatal("expected update without id to fail")
	}
	if err := client.Delete(context.Background(), "projects", ""); err == nil {
		t.Fatal("expected delete without id to fail")
	}
	if len(calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(calls))
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(config.SiteAPIConfig{}); err == nil {
		t.Fatal("expected missing base url to fail")
	}
}
