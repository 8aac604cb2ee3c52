package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/internal/screens"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
)

type stubView struct {
	resource  enums.Resource
	items     any
	refreshFn func(ctx context.Context) (any, error)
	deleteFn  func(ctx context.Context, id string, confirmed bool) error
	statusFn  func(ctx context.Context, id, status string) error
	flagFn    func(ctx context.Context, id string) error
	openFn    func(ctx context.Context, id string) (forms.Session, error)
}

func (v *stubView) Resource() enums.Resource { return v.resource }

func (v *stubView) RefreshAll(ctx context.Context) (any, error) {
	if v.refreshFn != nil {
		return v.refreshFn(ctx)
	}
	return v.items, nil
}

func (v *stubView) Delete(ctx context.Context, id string, confirmed bool) error {
	if v.deleteFn != nil {
		return v.deleteFn(ctx, id, confirmed)
	}
	return nil
}

func (v *stubView) SetStatus(ctx context.Context, id, status string) error {
	if v.statusFn != nil {
		return v.statusFn(ctx, id, status)
	}
	return nil
}

func (v *stubView) Flag(ctx context.Context, id string) error {
	if v.flagFn != nil {
		return v.flagFn(ctx, id)
	}
	return nil
}

func (v *stubView) OpenSession(ctx context.Context, id string) (forms.Session, error) {
	if v.openFn != nil {
		return v.openFn(ctx, id)
	}
	return &stubSession{id: "form-1", resource: v.resource}, nil
}

type stubCatalog struct {
	view *stubView
}

func (c stubCatalog) lookup(resource string) (*stubView, error) {
	if c.view == nil || c.view.resource.String() != resource {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown resource")
	}
	return c.view, nil
}

func (c stubCatalog) View(resource string) (screens.View, error) {
	v, err := c.lookup(resource)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c stubCatalog) StatusBoard(resource string) (screens.StatusBoard, error) {
	v, err := c.lookup(resource)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c stubCatalog) Editor(resource string) (screens.Editor, error) {
	v, err := c.lookup(resource)
	if err != nil {
		return nil, err
	}
	return v, nil
}

type stubSession struct {
	id        string
	resource  enums.Resource
	fields    map[string]string
	pairs     []forms.Pair
	staged    []assets.File
	removed   []int
	submitFn  func(ctx context.Context) (any, error)
	closeErr  error
	setErr    error
	submitted int
}

func (s *stubSession) ID() string               { return s.id }
func (s *stubSession) Resource() enums.Resource { return s.resource }
func (s *stubSession) Submitting() bool         { return false }
func (s *stubSession) LastActive() time.Time    { return time.Time{} }
func (s *stubSession) Close() error             { return s.closeErr }

func (s *stubSession) Snapshot() forms.Snapshot {
	return forms.Snapshot{FormID: s.id, Resource: s.resource.String(), Mode: "create", Text: s.fields, Pairs: s.pairs}
}

func (s *stubSession) SetFields(values map[string]string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.fields = values
	return nil
}

func (s *stubSession) Stage(_ context.Context, file assets.File) (assets.View, error) {
	s.staged = append(s.staged, file)
	return assets.View{Index: len(s.staged) - 1, State: assets.StatePending, Name: file.Name}, nil
}

func (s *stubSession) RemoveAsset(index int) error {
	s.removed = append(s.removed, index)
	return nil
}

func (s *stubSession) SetPairs(pairs []forms.Pair) error {
	s.pairs = pairs
	return nil
}

func (s *stubSession) SubmitRecord(ctx context.Context) (any, error) {
	s.submitted++
	if s.submitFn != nil {
		return s.submitFn(ctx)
	}
	return map[string]string{"_id": "new"}, nil
}

type stubSessions struct {
	session *stubSession
	closed  []string
}

func (s *stubSessions) Get(id string) (forms.Session, error) {
	if s.session == nil || s.session.id != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form session not found")
	}
	return s.session, nil
}

func (s *stubSessions) Close(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.session.Close(); err != nil {
		return err
	}
	s.closed = append(s.closed, id)
	return nil
}

// serve routes a single request through chi so URL params resolve as in production.
func serve(t *testing.T, method, pattern, target string, body string, handler http.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Method(method, pattern, handler)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}
