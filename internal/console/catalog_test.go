package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/content-console/internal/screens"
	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/angelmondragon/content-console/pkg/siteapi"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key, _ string, data []byte, progress func(int64, int64)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return nil
}

func (m *memStore) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type changeLog struct {
	mu      sync.Mutex
	entries []string
}

func (c *changeLog) ContentChanged(_ context.Context, resource enums.Resource, id string, action enums.ChangeAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, resource.String()+"/"+id+":"+action.String())
}

func newCatalog(t *testing.T) *Catalog {
	return newCatalogWithChanges(t, nil)
}

func newCatalogWithChanges(t *testing.T, changes screens.ChangeSink) *Catalog {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode([]map[string]any{{"_id": "t1", "name": "Ada", "profession": "CTO", "text": "great", "image": "https://cdn.test/a.png"}})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	api, err := siteapi.NewClient(config.SiteAPIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	catalog, err := NewCatalog(CatalogParams{
		API:            api,
		Store:          &memStore{objects: map[string][]byte{}},
		Changes:        changes,
		Logger:         logger.Nop(),
		MaxUploadBytes: 1 << 20,
		PreviewMaxPx:   64,
		SessionTTL:     time.Minute,
	})
	require.NoError(t, err)
	return catalog
}

func TestCatalogExposesEveryResource(t *testing.T) {
	catalog := newCatalog(t)

	for _, resource := range []string{"projects", "services", "employees", "testimonials", "contacts", "quote"} {
		view, err := catalog.View(resource)
		require.NoError(t, err, resource)
		assert.Equal(t, resource, view.Resource().String())
	}

	_, err := catalog.View("orders")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCatalogSeparatesEditorsFromStatusBoards(t *testing.T) {
	catalog := newCatalog(t)

	_, err := catalog.Editor("contacts")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = catalog.StatusBoard("employees")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = catalog.StatusBoard("quote")
	assert.NoError(t, err)
}

func TestCatalogOpensEditSessionFromList(t *testing.T) {
	catalog := newCatalog(t)
	ctx := context.Background()

	editor, err := catalog.Editor("testimonials")
	require.NoError(t, err)
	_, err = editor.RefreshAll(ctx)
	require.NoError(t, err)

	session, err := editor.OpenSession(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Sessions().Len())

	snap := session.Snapshot()
	assert.Equal(t, "update", snap.Mode)
	assert.Equal(t, "Ada", snap.Text["name"])
	require.Len(t, snap.Assets, 1)
	assert.Equal(t, "https://cdn.test/a.png", snap.Assets[0].URL)

	got, err := catalog.Sessions().Get(session.ID())
	require.NoError(t, err)
	assert.Equal(t, session.ID(), got.ID())
}

func TestCatalogReportsWritesToChangeSink(t *testing.T) {
	changes := &changeLog{}
	catalog := newCatalogWithChanges(t, changes)
	ctx := context.Background()

	editor, err := catalog.Editor("testimonials")
	require.NoError(t, err)
	session, err := editor.OpenSession(ctx, "t1")
	require.NoError(t, err)
	_, err = session.SubmitRecord(ctx)
	require.NoError(t, err)

	board, err := catalog.StatusBoard("contacts")
	require.NoError(t, err)
	require.NoError(t, board.SetStatus(ctx, "c1", "complete"))

	view, err := catalog.View("services")
	require.NoError(t, err)
	require.NoError(t, view.Delete(ctx, "s1", true))

	assert.Equal(t, []string{
		"testimonials/t1:saved",
		"contacts/c1:status",
		"services/s1:deleted",
	}, changes.entries)
}
