package workflow

import (
	"errors"
	"testing"

	"photo-stamper/internal/apperr"
)

func TestLifecycle(t *testing.T) {
	g := NewGate()
	var transitions []State
	g.OnChange(func(_, to State) { transitions = append(transitions, to) })

	if g.State() != AwaitingImage || g.CanEdit() || g.CanExport() {
		t.Fatal("new gate must await an image")
	}

	g.ImageLoaded()
	if !g.CanEdit() {
		t.Fatal("expected Editing after image load")
	}

	if err := g.Finalize(1); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !g.CanExport() || g.CanEdit() {
		t.Fatal("expected Finalizing")
	}

	if err := g.BackToEditing(); err != nil {
		t.Fatalf("BackToEditing: %v", err)
	}
	g.Reset()

	want := []State{Editing, Finalizing, Editing, AwaitingImage}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestFinalizeRefusals(t *testing.T) {
	g := NewGate()
	if err := g.Finalize(3); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("finalize while awaiting image: %v", err)
	}

	g.ImageLoaded()
	if err := g.Finalize(0); !errors.Is(err, apperr.ErrNotReady) {
		t.Fatalf("finalize with no overlays: %v", err)
	}
	if g.State() != Editing {
		t.Fatal("refused transition must not change state")
	}
}

func TestBackToEditingOnlyFromFinalizing(t *testing.T) {
	g := NewGate()
	g.ImageLoaded()
	if err := g.BackToEditing(); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("err = %v", err)
	}
}

func TestImageLoadedReentersEditing(t *testing.T) {
	g := NewGate()
	g.ImageLoaded()
	_ = g.Finalize(1)
	g.ImageLoaded()
	if g.State() != Editing {
		t.Fatalf("state = %v, want Editing", g.State())
	}
}
