package overlay

import (
	"sort"

	"photo-stamper/internal/apperr"
	"photo-stamper/internal/stamp"

	"github.com/google/uuid"
)

const (
	// FirstZIndex is the z value of the first overlay after a Clear.
	FirstZIndex = 1
	// SelectedZBoost lifts the selected overlay above all others on screen.
	SelectedZBoost = 1000
)

// Gate reports whether the overlays may currently be edited.
type Gate interface {
	CanEdit() bool
}

// MutationKind identifies a store mutation.
type MutationKind int

const (
	MutationPlace MutationKind = iota
	MutationUpdate
	MutationRemove
	MutationSelect
	MutationClear
)

func (k MutationKind) String() string {
	switch k {
	case MutationPlace:
		return "place"
	case MutationUpdate:
		return "update"
	case MutationRemove:
		return "remove"
	case MutationSelect:
		return "select"
	case MutationClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Mutation describes one change, delivered to OnChange listeners.
type Mutation struct {
	Kind MutationKind
	ID   string // overlay id; for select, the new selection ("" for none)
}

// Store owns the ordered overlays of one session. It has a single writer
// and no internal locking.
type Store struct {
	overlays   []Overlay
	selectedID string
	nextZ      int
	gate       Gate
	listeners  []func(Mutation)
	newID      func() string
}

// NewStore creates an empty store. A nil gate always allows editing.
func NewStore(gate Gate) *Store {
	return &Store{
		nextZ: FirstZIndex,
		gate:  gate,
		newID: func() string { return "stamp-" + uuid.NewString() },
	}
}

// OnChange registers a mutation listener.
func (s *Store) OnChange(fn func(Mutation)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) emit(kind MutationKind, id string) {
	m := Mutation{Kind: kind, ID: id}
	for _, fn := range s.listeners {
		fn(m)
	}
}

// Place creates an overlay from asset at (x, y) with the asset's default
// size, appends it and selects it.
func (s *Store) Place(asset stamp.Asset, x, y float64) (Overlay, error) {
	if s.gate != nil && !s.gate.CanEdit() {
		return Overlay{}, apperr.New(apperr.CodeInvalidState, "stamps can only be added while editing")
	}
	if asset.DefaultSize().Empty() {
		return Overlay{}, apperr.Newf(apperr.CodeValidation, "stamp %q has no default size", asset.ID)
	}

	o := Overlay{
		ID:          s.newID(),
		AssetID:     asset.ID,
		ImageRef:    asset.ImageRef,
		AltText:     asset.AltText,
		X:           x,
		Y:           y,
		Width:       asset.DefaultWidth,
		Height:      asset.DefaultHeight,
		AspectRatio: asset.DefaultWidth / asset.DefaultHeight,
		ZIndex:      s.nextZ,
	}
	s.nextZ++
	s.overlays = append(s.overlays, o)
	s.emit(MutationPlace, o.ID)
	s.Select(o.ID)
	return o, nil
}

func (s *Store) index(id string) int {
	for i := range s.overlays {
		if s.overlays[i].ID == id {
			return i
		}
	}
	return -1
}

// Update merges p into the overlay with the given id. Unknown ids are ignored.
func (s *Store) Update(id string, p Patch) {
	i := s.index(id)
	if i < 0 {
		return
	}
	p.apply(&s.overlays[i])
	s.emit(MutationUpdate, id)
}

// Remove deletes the overlay; its z value is never handed out again.
func (s *Store) Remove(id string) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)
	wasSelected := s.selectedID == id
	if wasSelected {
		s.selectedID = ""
	}
	s.emit(MutationRemove, id)
	if wasSelected {
		s.emit(MutationSelect, "")
	}
}

// Clear empties the store and resets the z counter.
func (s *Store) Clear() {
	s.overlays = nil
	s.selectedID = ""
	s.nextZ = FirstZIndex
	s.emit(MutationClear, "")
}

// Select sets the selection; "" or an unknown id selects none.
func (s *Store) Select(id string) {
	if id != "" && s.index(id) < 0 {
		id = ""
	}
	if id == s.selectedID {
		return
	}
	s.selectedID = id
	s.emit(MutationSelect, id)
}

// SelectedID returns the selected overlay id, or "".
func (s *Store) SelectedID() string {
	return s.selectedID
}

// Selected returns the selected overlay.
func (s *Store) Selected() (Overlay, bool) {
	return s.Get(s.selectedID)
}

// Get returns a copy of the overlay with the given id.
func (s *Store) Get(id string) (Overlay, bool) {
	if i := s.index(id); i >= 0 {
		return s.overlays[i], true
	}
	return Overlay{}, false
}

// Len returns the number of overlays.
func (s *Store) Len() int {
	return len(s.overlays)
}

// NextZIndex returns the z value the next placement will receive.
func (s *Store) NextZIndex() int {
	return s.nextZ
}

// Overlays returns a copy in insertion order.
func (s *Store) Overlays() []Overlay {
	out := make([]Overlay, len(s.overlays))
	copy(out, s.overlays)
	return out
}

// DrawOrder returns a copy sorted by ZIndex, lowest first.
func (s *Store) DrawOrder() []Overlay {
	return SortByZ(s.Overlays())
}

// DisplayZ returns the on-screen z value: the committed value, boosted for
// the selected overlay.
func (s *Store) DisplayZ(o Overlay) int {
	if o.ID != "" && o.ID == s.selectedID {
		return o.ZIndex + SelectedZBoost
	}
	return o.ZIndex
}

// DisplayOrder returns a copy sorted by DisplayZ, lowest first.
func (s *Store) DisplayOrder() []Overlay {
	out := s.Overlays()
	sort.SliceStable(out, func(i, j int) bool {
		return s.DisplayZ(out[i]) < s.DisplayZ(out[j])
	})
	return out
}

// SortByZ sorts overlays in place by ZIndex ascending (stable) and returns them.
func SortByZ(overlays []Overlay) []Overlay {
	sort.SliceStable(overlays, func(i, j int) bool {
		return overlays[i].ZIndex < overlays[j].ZIndex
	})
	return overlays
}
