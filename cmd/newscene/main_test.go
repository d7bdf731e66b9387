package main

import (
	"path/filepath"
	"testing"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"
	"scenedebug/internal/scene"
)

func TestSampleSceneRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	want := sampleScene()
	if err := scene.Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := scene.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Count() != want.Count() {
		t.Errorf("loaded %d objects, want %d", got.Count(), want.Count())
	}

	guard := got.FindByName("Guard")
	if guard == nil {
		t.Fatal("Guard missing")
	}
	if len(guard.Children) != 1 || guard.Children[0].Name != "Lantern" {
		t.Errorf("Guard children = %v", guard.Children)
	}
	p := engine.GetComponent[*components.Patrol](guard)
	if p == nil {
		t.Fatal("Guard has no Patrol")
	}
	if len(p.Waypoints) != 4 {
		t.Errorf("got %d waypoints, want 4", len(p.Waypoints))
	}
	if target := p.Target.Get(got); target == nil || target.Name != "Crate" {
		t.Errorf("Patrol target = %v, want Crate", target)
	}
}
