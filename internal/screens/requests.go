package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/content-console/internal/content"
	"github.com/angelmondragon/content-console/internal/records"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

type requestAPI interface {
	siteAPI
	UpdateContactStatus(ctx context.Context, id, status string) error
	UpdateQuoteStatus(ctx context.Context, id, status string) error
	FlagQuote(ctx context.Context, id string) error
}

// StatusBoard is a View whose rows carry a workflow status.
type StatusBoard interface {
	View
	SetStatus(ctx context.Context, id, status string) error
	Flag(ctx context.Context, id string) error
}

// RequestScreen lists inbound requests and moves them through their statuses.
type RequestScreen[T records.Identified] struct {
	*Screen[T]
	setStatus func(ctx context.Context, id, status string) error
	validate  func(status string) error
	flag      func(ctx context.Context, id string) error
}

func NewContactScreen(api requestAPI, logg *logger.Logger) (*RequestScreen[content.Contact], error) {
	screen, err := NewScreen[content.Contact](api, enums.ResourceContacts, nil, nil, logg)
	if err != nil {
		return nil, err
	}
	return &RequestScreen[content.Contact]{
		Screen:    screen,
		setStatus: api.UpdateContactStatus,
		validate: func(status string) error {
			_, err := enums.ParseContactStatus(status)
			return err
		},
	}, nil
}

func NewQuoteScreen(api requestAPI, logg *logger.Logger) (*RequestScreen[content.Quote], error) {
	screen, err := NewScreen[content.Quote](api, enums.ResourceQuotes, nil, nil, logg)
	if err != nil {
		return nil, err
	}
	return &RequestScreen[content.Quote]{
		Screen:    screen,
		setStatus: api.UpdateQuoteStatus,
		validate: func(status string) error {
			_, err := enums.ParseQuoteStatus(status)
			return err
		},
		flag: api.FlagQuote,
	}, nil
}

// SetStatus updates a request's status and re-fetches the list.
func (r *RequestScreen[T]) SetStatus(ctx context.Context, id, status string) error {
	id, status = strings.TrimSpace(id), strings.TrimSpace(status)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	if err := r.validate(status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"status": status})
	}
	if err := r.setStatus(ctx, id, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSubmitFailed, err, fmt.Sprintf("update %s %s status", r.resource, id))
	}
	r.notify(ctx, id, enums.ChangeStatus)
	r.refreshAfterWrite(ctx)
	return nil
}

// Flag marks a request for follow-up and re-fetches the list.
func (r *RequestScreen[T]) Flag(ctx context.Context, id string) error {
	if r.flag == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be flagged", r.resource))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	if err := r.flag(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSubmitFailed, err, fmt.Sprintf("flag %s %s", r.resource, id))
	}
	r.notify(ctx, id, enums.ChangeFlagged)
	r.refreshAfterWrite(ctx)
	return nil
}
