package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/content-console/pkg/db/models"
	"github.com/angelmondragon/content-console/pkg/enums"
	"github.com/angelmondragon/content-console/pkg/logger"
	"go.uber.org/multierr"
)

type stubOrphanLedger struct {
	rows    []models.OrphanedAsset
	cutoff  time.Time
	limit   int
	deleted []string
	failed  []string
}

func (s *stubOrphanLedger) ListDue(_ context.Context, cutoff time.Time, limit int) ([]models.OrphanedAsset, error) {
	s.cutoff = cutoff
	s.limit = limit
	return s.rows, nil
}

func (s *stubOrphanLedger) MarkFailed(_ context.Context, id string, _ error) error {
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubOrphanLedger) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubDeleter struct {
	fail map[string]bool
}

func (s stubDeleter) Delete(_ context.Context, key string) error {
	if s.fail[key] {
		return errors.New("forbidden")
	}
	return nil
}

type recordingDeleter struct {
	deleted []string
}

func (s *recordingDeleter) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

type stubLister struct {
	lists map[string]string
	calls map[string]int
	err   error
}

func (s *stubLister) List(_ context.Context, resource string) (json.RawMessage, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[resource]++
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.lists[resource]), nil
}

type sweptMetrics struct{ swept, inUse int }

func (m *sweptMetrics) IncOrphan(_, cleanup string) {
	switch cleanup {
	case orphanCleanupSwept:
		m.swept++
	case orphanCleanupInUse:
		m.inUse++
	}
}

func TestOrphanCleanupJobCombinesFailures(t *testing.T) {
	ledger := &stubOrphanLedger{rows: []models.OrphanedAsset{
		{ID: "1", ObjectKey: "projects/a", Resource: enums.ResourceProjects},
		{ID: "2", ObjectKey: "projects/b", Resource: enums.ResourceProjects},
		{ID: "3", ObjectKey: "services/c", Resource: enums.ResourceServices},
	}}
	metrics := &sweptMetrics{}
	job, err := NewOrphanCleanupJob(OrphanCleanupJobParams{
		Logger:    logger.Nop(),
		Repo:      ledger,
		Store:     stubDeleter{fail: map[string]bool{"projects/b": true, "services/c": true}},
		Metrics:   metrics,
		BatchSize: 50,
		MinAge:    time.Minute,
	})
	if err != nil {
		t.Fatalf("NewOrphanCleanupJob: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.(*orphanCleanupJob).now = func() time.Time { return now }

	err = job.Run(context.Background())
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d (%v)", got, err)
	}
	if len(ledger.deleted) != 1 || ledger.deleted[0] != "1" {
		t.Fatalf("unexpected deleted rows %v", ledger.deleted)
	}
	if len(ledger.failed) != 2 {
		t.Fatalf("expected 2 rows marked failed, got %v", ledger.failed)
	}
	if !ledger.cutoff.Equal(now.Add(-time.Minute)) || ledger.limit != 50 {
		t.Fatalf("unexpected query cutoff=%s limit=%d", ledger.cutoff, ledger.limit)
	}
	if metrics.swept != 1 {
		t.Fatalf("expected one swept object, got %d", metrics.swept)
	}
}

func TestOrphanCleanupJobRequiresDependencies(t *testing.T) {
	if _, err := NewOrphanCleanupJob(OrphanCleanupJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestOrphanCleanupJobKeepsUnconfirmedObjectsStillReferenced(t *testing.T) {
	ledger := &stubOrphanLedger{rows: []models.OrphanedAsset{
		{ID: "1", ObjectKey: "projects/saved", Resource: enums.ResourceProjects, Status: enums.OrphanStatusUnconfirmed},
		{ID: "2", ObjectKey: "projects/never-saved", Resource: enums.ResourceProjects, Status: enums.OrphanStatusUnconfirmed},
		{ID: "3", ObjectKey: "projects/rejected", Resource: enums.ResourceProjects, Status: enums.OrphanStatusPending},
	}}
	store := &recordingDeleter{}
	lister := &stubLister{lists: map[string]string{
		"projects": `[{"_id":"p1","images":["https://cdn.test/projects/saved"]}]`,
	}}
	metrics := &sweptMetrics{}
	job, err := NewOrphanCleanupJob(OrphanCleanupJobParams{
		Logger:     logger.Nop(),
		Repo:       ledger,
		Store:      store,
		References: lister,
		Metrics:    metrics,
	})
	if err != nil {
		t.Fatalf("NewOrphanCleanupJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(store.deleted) != 2 || store.deleted[0] != "projects/never-saved" || store.deleted[1] != "projects/rejected" {
		t.Fatalf("referenced object must survive, deleted %v", store.deleted)
	}
	if len(ledger.deleted) != 3 {
		t.Fatalf("expected every row released, got %v", ledger.deleted)
	}
	if lister.calls["projects"] != 1 {
		t.Fatalf("expected one list call per resource, got %d", lister.calls["projects"])
	}
	if metrics.inUse != 1 || metrics.swept != 2 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestOrphanCleanupJobLeavesUnconfirmedRowsWhenListFails(t *testing.T) {
	ledger := &stubOrphanLedger{rows: []models.OrphanedAsset{
		{ID: "1", ObjectKey: "services/s", Resource: enums.ResourceServices, Status: enums.OrphanStatusUnconfirmed},
	}}
	store := &recordingDeleter{}
	job, err := NewOrphanCleanupJob(OrphanCleanupJobParams{
		Logger:     logger.Nop(),
		Repo:       ledger,
		Store:      store,
		References: &stubLister{err: errors.New("site api down")},
	})
	if err != nil {
		t.Fatalf("NewOrphanCleanupJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the list failure to be reported")
	}
	if len(store.deleted) != 0 || len(ledger.deleted) != 0 {
		t.Fatalf("nothing may be deleted without a reference check, got %v %v", store.deleted, ledger.deleted)
	}
}

func TestOrphanCleanupJobSkipsUnconfirmedRowsWithoutLister(t *testing.T) {
	ledger := &stubOrphanLedger{rows: []models.OrphanedAsset{
		{ID: "1", ObjectKey: "employees/e", Resource: enums.ResourceEmployees, Status: enums.OrphanStatusUnconfirmed},
	}}
	store := &recordingDeleter{}
	job, err := NewOrphanCleanupJob(OrphanCleanupJobParams{Logger: logger.Nop(), Repo: ledger, Store: store})
	if err != nil {
		t.Fatalf("NewOrphanCleanupJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.deleted) != 0 || len(ledger.deleted) != 0 {
		t.Fatalf("expected the row left for a later run, got %v %v", store.deleted, ledger.deleted)
	}
}
