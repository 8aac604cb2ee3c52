package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
)

const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

type siteAPI interface {
	Create(ctx context.Context, resource string, record any) (json.RawMessage, error)
	Update(ctx context.Context, resource, id string, record any) (json.RawMessage, error)
}

type submitMetrics interface {
	IncSubmission(resource, mode string, err error)
}

// Identified is implemented by records that carry the collaborator's _id.
type Identified interface {
	RecordID() string
}

// Submitter persists fully resolved records of one resource. It keeps no cache.
type Submitter[T any] struct {
	api      siteAPI
	resource enums.Resource
	metrics  submitMetrics
	withID   func(T, string) T
}

// NewSubmitter builds a submitter for resource. withID applies an identifier to a record
// when the collaborator answers without a body; it may be nil.
func NewSubmitter[T any](api siteAPI, resource enums.Resource, withID func(T, string) T, metrics submitMetrics) (*Submitter[T], error) {
	if api == nil {
		return nil, fmt.Errorf("site api client required")
	}
	if !resource.IsValid() {
		return nil, fmt.Errorf("invalid resource %q", resource)
	}
	return &Submitter[T]{api: api, resource: resource, withID: withID, metrics: metrics}, nil
}

// Submit creates the record when id is empty and updates it otherwise.
func (s *Submitter[T]) Submit(ctx context.Context, id string, record T) (T, error) {
	var zero T
	id = strings.TrimSpace(id)

	mode := ModeCreate
	var (
		raw json.RawMessage
		err error
	)
	if id == "" {
		raw, err = s.api.Create(ctx, s.resource.String(), record)
	} else {
		mode = ModeUpdate
		raw, err = s.api.Update(ctx, s.resource.String(), id, record)
	}
	if s.metrics != nil {
		s.metrics.IncSubmission(s.resource.String(), mode, err)
	}
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeSubmitFailed, err, fmt.Sprintf("%s %s", mode, s.resource)).
			WithDetails(map[string]any{"resource": s.resource.String(), "mode": mode})
	}

	return s.persisted(raw, id, record), nil
}

// persisted prefers the collaborator's echo and falls back to the submitted record.
func (s *Submitter[T]) persisted(raw json.RawMessage, id string, submitted T) T {
	if len(raw) > 0 && raw[0] == '{' {
		var echoed T
		if err := json.Unmarshal(raw, &echoed); err == nil {
			if ident, ok := any(echoed).(Identified); !ok || ident.RecordID() != "" {
				return echoed
			}
		}
	}
	if s.withID != nil && id != "" {
		return s.withID(submitted, id)
	}
	return submitted
}
