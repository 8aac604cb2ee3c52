package screens

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/internal/records"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

type siteAPI interface {
	List(ctx context.Context, resource string) (json.RawMessage, error)
	Delete(ctx context.Context, resource, id string) error
}

// View is the type-erased list screen used by the HTTP layer.
type View interface {
	Resource() enums.Resource
	RefreshAll(ctx context.Context) (any, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

// Editor is a View whose rows are edited through a form.
type Editor interface {
	View
	OpenSession(ctx context.Context, id string) (forms.Session, error)
}

// ChangeSink hears about every successful write made through a screen.
type ChangeSink interface {
	ContentChanged(ctx context.Context, resource enums.Resource, id string, action enums.ChangeAction)
}

// FormFactory builds a fresh form whose successful submissions call onSaved.
type FormFactory[T any] func(onSaved func(ctx context.Context, record T)) (*forms.Form[T], error)

// Screen owns the list of one resource and opens forms over it.
type Screen[T records.Identified] struct {
	api      siteAPI
	resource enums.Resource
	newForm  FormFactory[T]
	sessions *forms.Registry
	logg     *logger.Logger
	changes  ChangeSink

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewScreen builds a list screen. newForm and sessions may be nil for read-only screens.
func NewScreen[T records.Identified](api siteAPI, resource enums.Resource, newForm FormFactory[T], sessions *forms.Registry, logg *logger.Logger) (*Screen[T], error) {
	if api == nil {
		return nil, fmt.Errorf("site api client required")
	}
	if !resource.IsValid() {
		return nil, fmt.Errorf("invalid resource %q", resource)
	}
	if newForm != nil && sessions == nil {
		return nil, fmt.Errorf("%s screen needs a session registry to open forms", resource)
	}
	return &Screen[T]{api: api, resource: resource, newForm: newForm, sessions: sessions, logg: logg}, nil
}

// SetChangeSink registers sink for write notifications. A nil sink turns them off.
func (s *Screen[T]) SetChangeSink(sink ChangeSink) {
	s.changes = sink
}

func (s *Screen[T]) Resource() enums.Resource {
	return s.resource
}

// Refresh replaces the collection with the collaborator's list. On failure the previous
// collection is kept.
func (s *Screen[T]) Refresh(ctx context.Context) ([]T, error) {
	raw, err := s.api.List(ctx, s.resource.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetchFailed, err, "list "+s.resource.String())
	}
	var items []T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeFetchFailed, err, "decode "+s.resource.String())
		}
	}
	if items == nil {
		items = []T{}
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()

	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"resource": s.resource.String(), "count": len(items)}), "list refreshed")
	}
	return append([]T(nil), items...), nil
}

func (s *Screen[T]) RefreshAll(ctx context.Context) (any, error) {
	return s.Refresh(ctx)
}

// Items returns the last fetched collection.
func (s *Screen[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Find looks a row up by id, fetching the list first when it has never been loaded.
func (s *Screen[T]) Find(ctx context.Context, id string) (T, error) {
	var zero T
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		if _, err := s.Refresh(ctx); err != nil {
			return zero, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.RecordID() == id {
			return item, nil
		}
	}
	return zero, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", s.resource, id))
}

// Delete removes a row. Without confirmation nothing is sent.
func (s *Screen[T]) Delete(ctx context.Context, id string, confirmed bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	if !confirmed {
		return pkgerrors.New(pkgerrors.CodeConfirmationRequired, "deleting a record must be confirmed").
			WithDetails(map[string]any{"resource": s.resource.String(), "id": id})
	}
	if err := s.api.Delete(ctx, s.resource.String(), id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDeleteFailed, err, fmt.Sprintf("delete %s %s", s.resource, id))
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"resource": s.resource.String(), "record_id": id}), "record deleted")
	}
	s.notify(ctx, id, enums.ChangeDeleted)
	s.refreshAfterWrite(ctx)
	return nil
}

// OpenForm opens a create form, or an edit form hydrated from the row with id.
func (s *Screen[T]) OpenForm(ctx context.Context, id string) (*forms.Form[T], error) {
	if s.newForm == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be edited from the console", s.resource))
	}
	form, err := s.newForm(s.onSaved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+s.resource.String()+" form")
	}
	if id = strings.TrimSpace(id); id != "" {
		record, err := s.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := form.Load(record); err != nil {
			return nil, err
		}
	}
	s.sessions.Add(form)
	return form, nil
}

func (s *Screen[T]) OpenSession(ctx context.Context, id string) (forms.Session, error) {
	return s.OpenForm(ctx, id)
}

func (s *Screen[T]) onSaved(ctx context.Context, record T) {
	s.notify(ctx, record.RecordID(), enums.ChangeSaved)
	s.refreshAfterWrite(ctx)
}

func (s *Screen[T]) notify(ctx context.Context, id string, action enums.ChangeAction) {
	if s.changes != nil {
		s.changes.ContentChanged(ctx, s.resource, id, action)
	}
}

// refreshAfterWrite re-fetches after a write. A failed re-fetch does not undo the write.
func (s *Screen[T]) refreshAfterWrite(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "resource", s.resource.String()), "re-fetch after write failed: "+err.Error())
	}
}
