package console

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/internal/content"
	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/internal/records"
	"github.com/angelmondragon/content-console/internal/screens"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/angelmondragon/content-console/pkg/metrics"
	"github.com/angelmondragon/content-console/pkg/siteapi"
)

type cleaner interface {
	Cleanup(ctx context.Context, resource enums.Resource, keys []string)
	Defer(ctx context.Context, resource enums.Resource, keys []string, cause error)
}

// CatalogParams wires the console's collaborators.
type CatalogParams struct {
	API            *siteapi.Client
	Store          assets.ObjectStore
	Cleaner        cleaner
	Metrics        *metrics.ConsoleMetrics
	Notifier       forms.Notifier
	Changes        screens.ChangeSink
	Logger         *logger.Logger
	MaxUploadBytes int64
	PreviewMaxPx   int
	SessionTTL     time.Duration
}

// Catalog maps every resource to its screen and owns the open form sessions.
type Catalog struct {
	views    map[enums.Resource]screens.View
	editors  map[enums.Resource]screens.Editor
	boards   map[enums.Resource]screens.StatusBoard
	sessions *forms.Registry
}

type formKit struct {
	stager   *assets.Stager
	uploader *assets.Uploader
	params   CatalogParams
}

func NewCatalog(params CatalogParams) (*Catalog, error) {
	if params.API == nil {
		return nil, fmt.Errorf("site api client required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Notifier == nil {
		params.Notifier = forms.NewLogNotifier(params.Logger)
	}

	stager, err := assets.NewStager(params.MaxUploadBytes, params.PreviewMaxPx)
	if err != nil {
		return nil, fmt.Errorf("asset stager: %w", err)
	}
	uploader, err := assets.NewUploader(params.Store, params.Metrics, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("asset uploader: %w", err)
	}
	kit := formKit{stager: stager, uploader: uploader, params: params}

	c := &Catalog{
		views:    make(map[enums.Resource]screens.View),
		editors:  make(map[enums.Resource]screens.Editor),
		boards:   make(map[enums.Resource]screens.StatusBoard),
		sessions: forms.NewRegistry(params.SessionTTL, params.Logger),
	}

	projects, err := editorScreen(c, kit, content.ProjectDefinition(), content.WithProjectID)
	if err != nil {
		return nil, err
	}
	services, err := editorScreen(c, kit, content.ServiceDefinition(), content.WithServiceID)
	if err != nil {
		return nil, err
	}
	employees, err := editorScreen(c, kit, content.EmployeeDefinition(), content.WithEmployeeID)
	if err != nil {
		return nil, err
	}
	testimonials, err := editorScreen(c, kit, content.TestimonialDefinition(), content.WithTestimonialID)
	if err != nil {
		return nil, err
	}
	for _, editor := range []screens.Editor{projects, services, employees, testimonials} {
		c.editors[editor.Resource()] = editor
		c.views[editor.Resource()] = editor
	}

	contacts, err := screens.NewContactScreen(params.API, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("contacts screen: %w", err)
	}
	quotes, err := screens.NewQuoteScreen(params.API, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("quotes screen: %w", err)
	}
	for _, board := range []screens.StatusBoard{contacts, quotes} {
		c.boards[board.Resource()] = board
		c.views[board.Resource()] = board
	}

	if params.Changes != nil {
		for _, view := range c.views {
			if s, ok := view.(interface{ SetChangeSink(screens.ChangeSink) }); ok {
				s.SetChangeSink(params.Changes)
			}
		}
	}

	return c, nil
}

// editorScreen is a free function because methods cannot carry type parameters.
func editorScreen[T records.Identified](c *Catalog, kit formKit, def forms.Definition[T], withID func(T, string) T) (*screens.Screen[T], error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%s definition: %w", def.Resource, err)
	}
	submitter, err := records.NewSubmitter[T](kit.params.API, def.Resource, withID, kit.params.Metrics)
	if err != nil {
		return nil, fmt.Errorf("%s submitter: %w", def.Resource, err)
	}

	factory := func(onSaved func(context.Context, T)) (*forms.Form[T], error) {
		deps := forms.Deps[T]{
			Submitter: submitter,
			Cleaner:   kit.params.Cleaner,
			Notifier:  kit.params.Notifier,
			OnSaved:   onSaved,
			Logger:    kit.params.Logger,
		}
		if def.Cardinality() != forms.CardinalityNone {
			deps.Stager = kit.stager
			deps.Uploader = kit.uploader
		}
		return forms.New(def, deps)
	}

	screen, err := screens.NewScreen[T](kit.params.API, def.Resource, factory, c.sessions, kit.params.Logger)
	if err != nil {
		return nil, fmt.Errorf("%s screen: %w", def.Resource, err)
	}
	return screen, nil
}

func (c *Catalog) Sessions() *forms.Registry {
	return c.sessions
}

func (c *Catalog) View(resource string) (screens.View, error) {
	r, err := parse(resource)
	if err != nil {
		return nil, err
	}
	return c.views[r], nil
}

func (c *Catalog) Editor(resource string) (screens.Editor, error) {
	r, err := parse(resource)
	if err != nil {
		return nil, err
	}
	editor, ok := c.editors[r]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s are not edited through forms", r))
	}
	return editor, nil
}

func (c *Catalog) StatusBoard(resource string) (screens.StatusBoard, error) {
	r, err := parse(resource)
	if err != nil {
		return nil, err
	}
	board, ok := c.boards[r]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s have no status", r))
	}
	return board, nil
}

func parse(resource string) (enums.Resource, error) {
	r, err := enums.ParseResource(resource)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown resource").
			WithDetails(map[string]any{"resource": resource})
	}
	return r, nil
}
