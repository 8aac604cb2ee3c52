package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	a, b := &stubJob{name: "a"}, &stubJob{name: "b"}
	registry := NewRegistry(a, nil)
	registry.Register(nil)
	registry.Register(b)

	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != a || jobs[1] != b {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("caller mutated the registry")
	}
	if names := registry.Names(); names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names %v", names)
	}
}
