package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/google/uuid"
)

// State is the submission state machine: Idle -> Submitting -> Succeeded|Failed -> Idle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var (
	ErrSubmitInFlight = pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in flight")
	ErrFormClosed     = pkgerrors.New(pkgerrors.CodeNotFound, "form is closed")
)

type assetStager interface {
	Stage(ctx context.Context, file assets.File) (assets.Reference, error)
}

type assetResolver interface {
	ResolveAll(ctx context.Context, namespace string, refs []assets.Reference, progress assets.Progress) ([]assets.Reference, error)
}

type recordSubmitter[T any] interface {
	Submit(ctx context.Context, id string, record T) (T, error)
}

// orphanCleaner deletes uploads the collaborator never accepted. Deferred keys may belong to
// a record that was saved anyway, so they are only queued for a later reference check.
type orphanCleaner interface {
	Cleanup(ctx context.Context, resource enums.Resource, keys []string)
	Defer(ctx context.Context, resource enums.Resource, keys []string, cause error)
}

type statusCoder interface {
	StatusCode() int
}

// Deps wires a form to its collaborators. Stager and Uploader are only needed by
// definitions with an asset field.
type Deps[T any] struct {
	Stager    assetStager
	Uploader  assetResolver
	Submitter recordSubmitter[T]
	Cleaner   orphanCleaner
	Notifier  Notifier
	// OnSaved runs after a successful submission, before the draft is discarded.
	OnSaved func(ctx context.Context, record T)
	Logger  *logger.Logger
}

// SlotProgress is the last reported transfer state of an uploading slot.
type SlotProgress struct {
	Slot        int   `json:"slot"`
	Transferred int64 `json:"transferred"`
	Total       int64 `json:"total"`
}

// Form owns one editing session for a record of type T.
type Form[T any] struct {
	id   string
	def  Definition[T]
	deps Deps[T]

	mu         sync.Mutex
	draft      Draft
	state      State
	outcome    State
	lastErr    error
	notice     *Notice
	progress   map[int]SlotProgress
	closed     bool
	lastActive time.Time
	now        func() time.Time
}

func New[T any](def Definition[T], deps Deps[T]) (*Form[T], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if deps.Submitter == nil {
		return nil, fmt.Errorf("%s form requires a submitter", def.Resource)
	}
	if def.Cardinality() != CardinalityNone && (deps.Stager == nil || deps.Uploader == nil) {
		return nil, fmt.Errorf("%s form requires a stager and an uploader", def.Resource)
	}
	if def.Noun == "" {
		def.Noun = strings.TrimSuffix(def.Resource.String(), "s")
	}
	f := &Form[T]{
		id:    uuid.NewString(),
		def:   def,
		deps:  deps,
		state: StateIdle,
		draft: emptyDraft(),
		now:   time.Now,
	}
	f.lastActive = f.now()
	return f, nil
}

func emptyDraft() Draft {
	return Draft{Text: map[string]string{}}
}

func (f *Form[T]) ID() string {
	return f.id
}

func (f *Form[T]) Resource() enums.Resource {
	return f.def.Resource
}

// State returns the current state; Succeeded and Failed are reported through Snapshot.
func (f *Form[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the editable state.
func (f *Form[T]) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.clone()
}

func (f *Form[T]) Submitting() bool {
	return f.State() == StateSubmitting
}

func (f *Form[T]) LastActive() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActive
}

// mutable must be called with f.mu held.
func (f *Form[T]) mutable() error {
	if f.closed {
		return ErrFormClosed
	}
	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	f.lastActive = f.now()
	return nil
}

// Load discards any current state and hydrates the form from record.
func (f *Form[T]) Load(record T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	draft := f.def.Hydrate(record)
	if draft.Text == nil {
		draft.Text = map[string]string{}
	}
	f.resetLocked(draft.clone())
	return nil
}

// Reset returns the form to an empty create draft.
func (f *Form[T]) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.resetLocked(emptyDraft())
	return nil
}

func (f *Form[T]) resetLocked(draft Draft) {
	f.draft = draft
	f.outcome = ""
	f.lastErr = nil
	f.notice = nil
	f.progress = nil
}

// SetField sets one text, multiline or select field.
func (f *Form[T]) SetField(name, value string) error {
	return f.SetFields(map[string]string{name: value})
}

// SetFields applies every value or none of them.
func (f *Form[T]) SetFields(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	var unknown []string
	for name := range values {
		if _, ok := f.def.textField(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown form fields").
			WithDetails(map[string]any{"fields": unknown})
	}
	for name, value := range values {
		f.draft.Text[name] = value
	}
	return nil
}

// Stage adds a local file to the asset slots. Single-image forms replace their slot.
func (f *Form[T]) Stage(ctx context.Context, file assets.File) (assets.View, error) {
	f.mu.Lock()
	if err := f.mutable(); err != nil {
		f.mu.Unlock()
		return assets.View{}, err
	}
	cardinality := f.def.Cardinality()
	f.mu.Unlock()

	if cardinality == CardinalityNone {
		return assets.View{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s forms have no images", f.def.Noun))
	}

	ref, err := f.deps.Stager.Stage(ctx, file)
	if err != nil {
		return assets.View{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return assets.View{}, err
	}
	if cardinality == CardinalitySingle {
		f.draft.Assets = []assets.Reference{ref}
		return ref.View(0), nil
	}
	f.draft.Assets = append(f.draft.Assets, ref)
	return ref.View(len(f.draft.Assets) - 1), nil
}

// RemoveAsset drops a slot locally. Nothing is deleted from the store.
func (f *Form[T]) RemoveAsset(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	if index < 0 || index >= len(f.draft.Assets) {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset index out of range").
			WithDetails(map[string]any{"index": index, "slots": len(f.draft.Assets)})
	}
	next := make([]assets.Reference, 0, len(f.draft.Assets)-1)
	next = append(next, f.draft.Assets[:index]...)
	f.draft.Assets = append(next, f.draft.Assets[index+1:]...)
	return nil
}

// SetPairs replaces the pair list.
func (f *Form[T]) SetPairs(pairs []Pair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	if _, ok := f.def.field(FieldPairList); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s forms have no pair list", f.def.Noun))
	}
	f.draft.Pairs = append([]Pair(nil), pairs...)
	return nil
}

// Submit validates the draft, resolves every asset slot and persists the record.
// A second call while one is running returns ErrSubmitInFlight without side effects.
// On failure the draft is left untouched.
func (f *Form[T]) Submit(ctx context.Context) (T, error) {
	var zero T

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return zero, ErrFormClosed
	}
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return zero, ErrSubmitInFlight
	}
	f.state = StateSubmitting
	f.progress = map[int]SlotProgress{}
	f.lastActive = f.now()
	draft := f.draft.clone()
	f.mu.Unlock()

	ctx = f.logContext(ctx, draft)
	persisted, err := f.run(ctx, draft)
	if err != nil {
		notice := failureNotice(f.def.Noun, draft.IsEdit(), err)
		f.finish(StateFailed, err, &notice, false)
		f.notify(ctx, notice)
		if f.deps.Logger != nil {
			f.deps.Logger.Error(ctx, "form submission failed", err)
		}
		return zero, err
	}

	if f.deps.OnSaved != nil {
		f.deps.OnSaved(ctx, persisted)
	}
	notice := successNotice(f.def.Noun, draft.IsEdit())
	f.finish(StateSucceeded, nil, &notice, true)
	f.notify(ctx, notice)
	if f.deps.Logger != nil {
		f.deps.Logger.Info(ctx, "form submitted")
	}
	return persisted, nil
}

// SubmitRecord is Submit without the type parameter.
func (f *Form[T]) SubmitRecord(ctx context.Context) (any, error) {
	return f.Submit(ctx)
}

func (f *Form[T]) run(ctx context.Context, draft Draft) (T, error) {
	var zero T
	if err := validate(f.def, draft); err != nil {
		return zero, err
	}

	var uploadedKeys []string
	if hasPending(draft.Assets) {
		resolved, err := f.deps.Uploader.ResolveAll(ctx, f.def.Resource.AssetNamespace(), draft.Assets, f.reportProgress)
		if err != nil {
			f.cleanup(ctx, assets.UploadedKeys(resolved))
			return zero, err
		}
		draft.Assets = resolved
		uploadedKeys = assets.UploadedKeys(resolved)
	}

	persisted, err := f.deps.Submitter.Submit(ctx, draft.ID, f.def.Assemble(draft))
	if err != nil {
		if rejected(err) {
			f.cleanup(ctx, uploadedKeys)
		} else {
			f.deferCleanup(ctx, uploadedKeys, err)
		}
		return zero, err
	}
	return persisted, nil
}

func hasPending(refs []assets.Reference) bool {
	for _, ref := range refs {
		if ref.IsPending() {
			return true
		}
	}
	return false
}

func (f *Form[T]) reportProgress(slot int, transferred, total int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progress != nil {
		f.progress[slot] = SlotProgress{Slot: slot, Transferred: transferred, Total: total}
	}
}

// cleanup hands objects uploaded by a failed attempt to the cleaner. It must outlive the
// request context.
func (f *Form[T]) cleanup(ctx context.Context, keys []string) {
	if len(keys) == 0 || f.deps.Cleaner == nil {
		return
	}
	f.deps.Cleaner.Cleanup(context.WithoutCancel(ctx), f.def.Resource, keys)
}

// deferCleanup queues keys whose record may have been saved despite the error.
func (f *Form[T]) deferCleanup(ctx context.Context, keys []string, cause error) {
	if len(keys) == 0 || f.deps.Cleaner == nil {
		return
	}
	f.deps.Cleaner.Defer(context.WithoutCancel(ctx), f.def.Resource, keys, cause)
}

// rejected reports whether the collaborator answered with a 4xx. Only then is it certain
// that nothing was persisted; transport errors, timeouts and 5xx answers are ambiguous.
func rejected(err error) bool {
	var sc statusCoder
	if !errors.As(err, &sc) {
		return false
	}
	code := sc.StatusCode()
	return code >= 400 && code < 500
}

func (f *Form[T]) finish(outcome State, err error, notice *Notice, discard bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	f.outcome = outcome
	f.lastErr = err
	f.notice = notice
	f.lastActive = f.now()
	if discard {
		f.draft = emptyDraft()
		f.progress = nil
	}
}

func (f *Form[T]) notify(ctx context.Context, notice Notice) {
	if f.deps.Notifier != nil {
		f.deps.Notifier.Notify(ctx, notice)
	}
}

func (f *Form[T]) logContext(ctx context.Context, draft Draft) context.Context {
	if f.deps.Logger == nil {
		return ctx
	}
	ctx = f.deps.Logger.WithFormID(ctx, f.id)
	ctx = f.deps.Logger.WithResource(ctx, f.def.Resource.String())
	if draft.ID != "" {
		ctx = f.deps.Logger.WithField(ctx, "record_id", draft.ID)
	}
	return ctx
}

// Close ends the session. It is refused while a submission is in flight.
func (f *Form[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot close the form while it is submitting")
	}
	f.closed = true
	f.draft = emptyDraft()
	return nil
}

// Snapshot is the JSON view of a form for the browser.
type Snapshot struct {
	FormID      string            `json:"form_id"`
	Resource    string            `json:"resource"`
	Mode        string            `json:"mode"`
	RecordID    string            `json:"record_id,omitempty"`
	State       State             `json:"state"`
	LastOutcome State             `json:"last_outcome,omitempty"`
	LastError   string            `json:"last_error,omitempty"`
	Notice      *Notice           `json:"notice,omitempty"`
	Fields      []Field           `json:"fields"`
	Cardinality string            `json:"asset_cardinality"`
	Text        map[string]string `json:"text"`
	Assets      []assets.View     `json:"assets"`
	Pairs       []Pair            `json:"pairs"`
	Progress    []SlotProgress    `json:"progress,omitempty"`
}

func (f *Form[T]) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	mode := "create"
	if f.draft.IsEdit() {
		mode = "update"
	}
	snap := Snapshot{
		FormID:      f.id,
		Resource:    f.def.Resource.String(),
		Mode:        mode,
		RecordID:    f.draft.ID,
		State:       f.state,
		LastOutcome: f.outcome,
		Notice:      f.notice,
		Fields:      f.def.Fields,
		Cardinality: f.def.Cardinality().String(),
		Text:        make(map[string]string, len(f.def.Fields)),
		Assets:      make([]assets.View, 0, len(f.draft.Assets)),
		Pairs:       append([]Pair{}, f.draft.Pairs...),
	}
	if f.lastErr != nil {
		if typed := pkgerrors.As(f.lastErr); typed != nil {
			snap.LastError = pkgerrors.MetadataFor(typed.Code()).PublicMessage
		} else {
			snap.LastError = pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage
		}
	}
	for _, field := range f.def.Fields {
		if field.isText() {
			snap.Text[field.Name] = f.draft.Text[field.Name]
		}
	}
	for i, ref := range f.draft.Assets {
		snap.Assets = append(snap.Assets, ref.View(i))
	}
	for _, p := range f.progress {
		snap.Progress = append(snap.Progress, p)
	}
	sort.Slice(snap.Progress, func(i, j int) bool { return snap.Progress[i].Slot < snap.Progress[j].Slot })
	return snap
}
