package overlay

import (
	"errors"
	"math"
	"testing"

	"photo-stamper/internal/apperr"
	"photo-stamper/internal/stamp"
)

type fakeGate bool

func (g fakeGate) CanEdit() bool { return bool(g) }

func testAsset(id string) stamp.Asset {
	return stamp.Asset{ID: id, ImageRef: "ref-" + id, AltText: id, DefaultWidth: 80, DefaultHeight: 40}
}

func TestPlaceAssignsIncreasingZ(t *testing.T) {
	s := NewStore(fakeGate(true))

	a, _ := s.Place(testAsset("a"), 0, 0)
	b, _ := s.Place(testAsset("b"), 0, 0)
	s.Remove(a.ID)
	c, _ := s.Place(testAsset("c"), 0, 0)

	if a.ZIndex != 1 || b.ZIndex != 2 || c.ZIndex != 3 {
		t.Fatalf("z values = %d,%d,%d, want 1,2,3", a.ZIndex, b.ZIndex, c.ZIndex)
	}
	if a.ID == b.ID || b.ID == c.ID {
		t.Fatal("ids must be unique")
	}
	if got := s.SelectedID(); got != c.ID {
		t.Fatalf("selected = %q, want newest %q", got, c.ID)
	}
}

func TestPlaceCopiesAsset(t *testing.T) {
	s := NewStore(nil)
	o, err := s.Place(testAsset("logo"), 12, 34)
	if err != nil {
		t.Fatal(err)
	}
	if o.AssetID != "logo" || o.ImageRef != "ref-logo" || o.AltText != "logo" {
		t.Fatalf("asset fields not copied: %+v", o)
	}
	if o.X != 12 || o.Y != 34 || o.Width != 80 || o.Height != 40 || o.RotationDegrees != 0 {
		t.Fatalf("geometry = %+v", o)
	}
	if o.AspectRatio != 2 {
		t.Fatalf("aspect = %v, want 2", o.AspectRatio)
	}
}

func TestPlaceRefusedWhenNotEditing(t *testing.T) {
	s := NewStore(fakeGate(false))
	_, err := s.Place(testAsset("a"), 0, 0)
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("err = %v, want InvalidState", err)
	}
	if s.Len() != 0 || s.NextZIndex() != FirstZIndex {
		t.Fatal("store must be unchanged")
	}
}

func TestUpdateMergesAndIgnoresUnknown(t *testing.T) {
	s := NewStore(nil)
	o, _ := s.Place(testAsset("a"), 0, 0)

	s.Update(o.ID, Move(5, 6))
	s.Update(o.ID, Rotate(-15))
	s.Update(o.ID, Resize(0, -1))
	s.Update("missing", Move(100, 100))

	got, _ := s.Get(o.ID)
	if got.X != 5 || got.Y != 6 {
		t.Fatalf("position = %v,%v", got.X, got.Y)
	}
	if got.RotationDegrees != 345 {
		t.Fatalf("rotation = %v, want 345", got.RotationDegrees)
	}
	if got.Width != 80 || got.Height != 40 {
		t.Fatalf("non-positive sizes must be ignored, got %vx%v", got.Width, got.Height)
	}
}

func TestRemoveClearsSelection(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.Place(testAsset("a"), 0, 0)
	b, _ := s.Place(testAsset("b"), 0, 0)

	s.Select(a.ID)
	s.Remove(b.ID)
	if s.SelectedID() != a.ID {
		t.Fatal("removing an unselected overlay must keep the selection")
	}
	s.Remove(a.ID)
	if s.SelectedID() != "" {
		t.Fatal("removing the selected overlay must clear the selection")
	}
}

func TestClearResetsCounter(t *testing.T) {
	s := NewStore(nil)
	s.Place(testAsset("a"), 0, 0)
	s.Place(testAsset("b"), 0, 0)
	s.Clear()
	if s.Len() != 0 || s.SelectedID() != "" {
		t.Fatal("clear must empty the store")
	}
	o, _ := s.Place(testAsset("c"), 0, 0)
	if o.ZIndex != FirstZIndex {
		t.Fatalf("z after clear = %d, want %d", o.ZIndex, FirstZIndex)
	}
}

func TestDrawAndDisplayOrder(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.Place(testAsset("a"), 0, 0)
	b, _ := s.Place(testAsset("b"), 0, 0)
	c, _ := s.Place(testAsset("c"), 0, 0)

	s.Select(a.ID)
	draw := s.DrawOrder()
	if draw[0].ID != a.ID || draw[1].ID != b.ID || draw[2].ID != c.ID {
		t.Fatal("draw order must follow committed z")
	}
	disp := s.DisplayOrder()
	if disp[2].ID != a.ID {
		t.Fatal("selected overlay must be on top on screen")
	}
	if s.DisplayZ(disp[2]) != a.ZIndex+SelectedZBoost {
		t.Fatalf("display z = %d", s.DisplayZ(disp[2]))
	}
	if got, _ := s.Get(a.ID); got.ZIndex != 1 {
		t.Fatal("boost must not be persisted")
	}
}

func TestSelectIdempotentAndEvents(t *testing.T) {
	s := NewStore(nil)
	var kinds []MutationKind
	s.OnChange(func(m Mutation) { kinds = append(kinds, m.Kind) })

	o, _ := s.Place(testAsset("a"), 0, 0) // place + select
	s.Select(o.ID)                        // no event
	s.Select("unknown")                   // selects none
	s.Update(o.ID, Move(1, 1))
	s.Remove(o.ID)
	s.Clear()

	want := []MutationKind{MutationPlace, MutationSelect, MutationSelect, MutationUpdate, MutationRemove, MutationClear}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestOverlaysReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	o, _ := s.Place(testAsset("a"), 0, 0)
	list := s.Overlays()
	list[0].X = math.Inf(1)
	if got, _ := s.Get(o.ID); got.X != 0 {
		t.Fatal("Overlays must return a copy")
	}
}
