// Package app provides the editing session: workflow, overlays, base image,
// notifications and events.
package app

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"photo-stamper/internal/apperr"
	"photo-stamper/internal/asset"
	"photo-stamper/internal/capture"
	"photo-stamper/internal/config"
	"photo-stamper/internal/coords"
	"photo-stamper/internal/export"
	img "photo-stamper/internal/image"
	"photo-stamper/internal/manipulate"
	"photo-stamper/internal/overlay"
	"photo-stamper/internal/stamp"
	"photo-stamper/internal/workflow"
	"photo-stamper/pkg/geometry"

	"go.uber.org/zap"
)

// Session holds one editing session. It has a single writer: callers that
// drive it from more than one goroutine wrap every access in Do. Listener
// registration, the catalog and the export flag are safe for concurrent use.
type Session struct {
	mu     sync.RWMutex // listeners
	access sync.Mutex   // held by Do

	cfg      config.Config
	logger   *zap.Logger
	notifier Notifier

	gate    *workflow.Gate
	store   *overlay.Store
	catalog atomic.Pointer[stamp.Catalog]
	raster  *export.Rasterizer

	base        *img.Layer
	container   geometry.Size // area the base image is fitted into
	workspace   geometry.Size // display size of the base image
	controllers map[string]*manipulate.Controller

	currentError string
	exporting    atomic.Bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewSession creates a session in AwaitingImage. Stamp images for export
// are loaded through loader.
func NewSession(cfg config.Config, catalog *stamp.Catalog, loader asset.Loader, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = stamp.Builtin()
	}
	s := &Session{
		cfg:         cfg,
		logger:      logger,
		notifier:    LogNotifier{Logger: logger},
		gate:        workflow.NewGate(),
		raster:      export.New(loader, cfg.ExportOptions(), logger),
		controllers: make(map[string]*manipulate.Controller),
		listeners:   make(map[EventType][]EventListener),
		container:   geometry.NewSize(cfg.WorkspaceWidth, cfg.WorkspaceHeight),
	}
	s.catalog.Store(catalog)
	s.store = overlay.NewStore(s.gate)
	s.gate.OnChange(s.onStateChange)
	s.store.OnChange(s.onMutation)
	return s
}

// Do runs fn with exclusive access to the session. fn must not call Do.
func (s *Session) Do(fn func()) {
	s.access.Lock()
	defer s.access.Unlock()
	fn()
}

// SetNotifier replaces the notification sink.
func (s *Session) SetNotifier(n Notifier) {
	s.notifier = n
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

func (s *Session) onStateChange(from, to workflow.State) {
	s.logger.Info("workflow state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	s.Emit(EventStateChanged, StateChange{From: from, To: to})
}

func (s *Session) onMutation(m overlay.Mutation) {
	switch m.Kind {
	case overlay.MutationRemove:
		delete(s.controllers, m.ID)
	case overlay.MutationClear:
		s.controllers = make(map[string]*manipulate.Controller)
	case overlay.MutationSelect:
		s.Emit(EventSelectionChanged, m.ID)
	}
	s.Emit(EventOverlaysChanged, m)
}

// Read side.

// State returns the workflow state.
func (s *Session) State() workflow.State { return s.gate.State() }

// Store returns the overlay store.
func (s *Session) Store() *overlay.Store { return s.store }

// Catalog returns the stamp catalog.
func (s *Session) Catalog() *stamp.Catalog { return s.catalog.Load() }

// Base returns the base image, or nil.
func (s *Session) Base() *img.Layer { return s.base }

// Config returns the session configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// CurrentError returns the single current error message, or "".
func (s *Session) CurrentError() string { return s.currentError }

// Exporting reports whether an export is running.
func (s *Session) Exporting() bool { return s.exporting.Load() }

// CanEdit reports whether the session is in Editing.
func (s *Session) CanEdit() bool { return s.gate.CanEdit() }

// WorkspaceSize is the display size of the base image.
func (s *Session) WorkspaceSize() geometry.Size { return s.workspace }

// NaturalSize is the base image's natural size.
func (s *Session) NaturalSize() geometry.Size { return s.base.Size() }

// Mapper returns the display→natural mapper for the current layout.
func (s *Session) Mapper() (coords.Mapper, bool) {
	return coords.NewMapper(s.NaturalSize(), s.workspace)
}

// SetWorkspaceSize records the measured display size of the base image.
// Overlays keep their display coordinates.
func (s *Session) SetWorkspaceSize(size geometry.Size) {
	if size == s.workspace {
		return
	}
	s.workspace = size
	s.logger.Debug("workspace resized",
		zap.Float64("width", size.Width),
		zap.Float64("height", size.Height))
}

// SetContainer sets the area the base image is contain-fitted into and
// refits the workspace. It returns the display rect of the image.
func (s *Session) SetContainer(container geometry.Size) geometry.Rect {
	s.container = container
	return s.fit()
}

// DisplayRect returns where the base image sits inside the container.
func (s *Session) DisplayRect() geometry.Rect {
	return coords.FitContain(s.NaturalSize(), s.container)
}

func (s *Session) fit() geometry.Rect {
	r := s.DisplayRect()
	if !r.Size().Empty() {
		s.SetWorkspaceSize(r.Size())
	}
	return r
}

// Controller returns the controller of an overlay, creating it on first
// use. It returns nil for an unknown id.
func (s *Session) Controller(id string) *manipulate.Controller {
	if c, ok := s.controllers[id]; ok {
		return c
	}
	if _, ok := s.store.Get(id); !ok {
		return nil
	}
	c := manipulate.New(s.store, s, id)
	s.controllers[id] = c
	return c
}

// View returns the overlay as it should be drawn now: the gesture's working
// copy when one is active.
func (s *Session) View(id string) overlay.Overlay {
	if c, ok := s.controllers[id]; ok {
		if o, ok := c.View(); ok {
			return o
		}
	}
	o, _ := s.store.Get(id)
	return o
}

// Views returns every overlay in on-screen order as it should be drawn now.
func (s *Session) Views() []overlay.Overlay {
	order := s.store.DisplayOrder()
	for i := range order {
		order[i] = s.View(order[i].ID)
	}
	return order
}

// Errors and notifications.

func (s *Session) notify(level Level, title, description string) {
	if s.notifier != nil {
		s.notifier.Notify(Notification{Title: title, Description: description, Level: level})
	}
}

func (s *Session) setError(msg string) {
	if msg == s.currentError {
		return
	}
	s.currentError = msg
	s.Emit(EventErrorChanged, msg)
}

// begin starts a user operation by clearing the previous error.
func (s *Session) begin() {
	s.setError("")
}

// fail records err as the current error, notifies the user and returns err.
func (s *Session) fail(title string, err error) error {
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	s.logger.Warn(title, zap.Error(err), zap.String("code", string(apperr.CodeOf(err))))
	s.setError(msg)
	s.notify(LevelError, title, msg)
	return err
}

func (s *Session) busy(title string) error {
	if s.exporting.Load() {
		return s.fail(title, apperr.New(apperr.CodeInvalidState, "an export is in progress"))
	}
	return nil
}

// Base image sources.

// LoadImage loads the base image from a file, subject to the upload rules.
func (s *Session) LoadImage(path string) error {
	s.begin()
	if err := s.busy("Upload Error"); err != nil {
		return err
	}
	if !img.IsSupportedFormat(path) {
		return s.fail("Upload Error", apperr.Newf(apperr.CodeValidation,
			"unsupported image file %s, use one of %s", filepath.Base(path), strings.Join(img.SupportedFormats(), " ")))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail("Upload Error", apperr.Wrap(apperr.CodeValidation, "could not read the image file", err))
	}
	return s.upload(img.Upload{Name: path, ContentType: img.ContentTypeFor(path), Data: data})
}

// UploadImage validates and loads an uploaded base image. A rejected upload
// leaves the session unchanged.
func (s *Session) UploadImage(u img.Upload) error {
	s.begin()
	if err := s.busy("Upload Error"); err != nil {
		return err
	}
	return s.upload(u)
}

func (s *Session) upload(u img.Upload) error {
	layer, err := img.FromUpload(u, s.cfg.MaxUploadBytes)
	if err != nil {
		return s.fail("Upload Error", err)
	}
	s.setBase(layer)
	s.notify(LevelSuccess, "Image Selected", "Image is ready. Choose stamps and place them on your image.")
	return nil
}

// LoadDataURI loads a base image carried in a data: URI.
func (s *Session) LoadDataURI(uri string) error {
	s.begin()
	if err := s.busy("Upload Error"); err != nil {
		return err
	}
	layer, err := img.FromDataURI(uri, s.cfg.MaxUploadBytes)
	if err != nil {
		return s.fail("Upload Error", err)
	}
	s.setBase(layer)
	s.notify(LevelSuccess, "Image Selected", "Image is ready. Choose stamps and place them on your image.")
	return nil
}

// CaptureImage takes a still from dev and uses it as the base image. The
// device is released on every path.
func (s *Session) CaptureImage(ctx context.Context, dev capture.Device) error {
	s.begin()
	if err := s.busy("Capture Error"); err != nil {
		return err
	}
	return s.UseFrame(capture.Capture(ctx, dev))
}

// UseFrame installs the result of an earlier capture.Capture as the base
// image. A capture error is reported like any other capture failure.
func (s *Session) UseFrame(frame image.Image, captureErr error) error {
	s.begin()
	if err := s.busy("Capture Error"); err != nil {
		return err
	}
	if captureErr != nil {
		return s.fail("Capture Error", captureErr)
	}
	if frame == nil || frame.Bounds().Empty() {
		return s.fail("Capture Error", capture.ErrNoFrame)
	}
	s.setBase(img.NewLayer(frame, "camera"))
	s.notify(LevelSuccess, "Image Captured", "Photo taken successfully!")
	return nil
}

// setBase installs a new base image: the store is reset, the session enters
// Editing and the default stamp is placed.
func (s *Session) setBase(layer *img.Layer) {
	s.cancelGestures()
	s.store.Clear()
	s.base = layer
	s.fit()
	s.gate.ImageLoaded()

	s.logger.Info("base image loaded",
		zap.String("source", layer.Source),
		zap.Int("width", layer.Width()),
		zap.Int("height", layer.Height()))
	s.Emit(EventImageLoaded, layer.Size())
	s.placeDefault()
}

func (s *Session) placeDefault() {
	asset, ok := s.Catalog().Lookup(s.cfg.DefaultStamp)
	if !ok {
		s.logger.Warn("default stamp not in catalog", zap.String("stamp", s.cfg.DefaultStamp))
		return
	}
	off := s.cfg.DefaultOffset
	x := geometry.ClampPosition(off, asset.DefaultWidth, s.workspace.Width)
	y := geometry.ClampPosition(off, asset.DefaultHeight, s.workspace.Height)
	if _, err := s.place(asset, x, y); err != nil {
		s.logger.Warn("default stamp placement failed", zap.Error(err))
	}
}

// Placement.

func (s *Session) lookup(stampID string) (stamp.Asset, error) {
	a, ok := s.Catalog().Lookup(stampID)
	if !ok {
		return stamp.Asset{}, apperr.Newf(apperr.CodeValidation, "unknown stamp %q", stampID)
	}
	return a, nil
}

func (s *Session) place(a stamp.Asset, x, y float64) (overlay.Overlay, error) {
	r := geometry.NewRect(x, y, a.DefaultWidth, a.DefaultHeight).ClampInto(s.workspace)
	o, err := s.store.Place(a, r.X, r.Y)
	if err != nil {
		return overlay.Overlay{}, err
	}
	s.logger.Info("stamp placed",
		zap.String("overlay", o.ID),
		zap.String("stamp", a.ID),
		zap.Int("z", o.ZIndex))
	return o, nil
}

// PlaceStamp places a catalog stamp with its top-left at (x, y), clamped.
func (s *Session) PlaceStamp(stampID string, x, y float64) (overlay.Overlay, error) {
	s.begin()
	a, err := s.lookup(stampID)
	if err != nil {
		return overlay.Overlay{}, s.fail("Action Not Allowed", err)
	}
	o, err := s.place(a, x, y)
	if err != nil {
		return overlay.Overlay{}, s.fail("Action Not Allowed", err)
	}
	s.notify(LevelSuccess, "Stamp Added", a.DisplayName+" added to the image.")
	return o, nil
}

// PlaceCentered places a stamp picked from the list in the workspace center.
func (s *Session) PlaceCentered(stampID string) (overlay.Overlay, error) {
	a, err := s.lookup(stampID)
	if err != nil {
		s.begin()
		return overlay.Overlay{}, s.fail("Action Not Allowed", err)
	}
	x := max(0, (s.workspace.Width-a.DefaultWidth)/2)
	y := max(0, (s.workspace.Height-a.DefaultHeight)/2)
	return s.PlaceStamp(stampID, x, y)
}

// DropStamp places a dragged-in stamp centered on the drop point.
func (s *Session) DropStamp(stampID string, p geometry.Point2D) (overlay.Overlay, error) {
	a, err := s.lookup(stampID)
	if err != nil {
		s.begin()
		return overlay.Overlay{}, s.fail("Action Not Allowed", err)
	}
	return s.PlaceStamp(stampID, p.X-a.DefaultWidth/2, p.Y-a.DefaultHeight/2)
}

// Selection.

// Select selects an overlay while Editing.
func (s *Session) Select(id string) {
	if s.gate.CanEdit() {
		s.store.Select(id)
	}
}

// BackgroundClick deselects while Editing.
func (s *Session) BackgroundClick() {
	s.Select("")
}

// RemoveStamp deletes an overlay while Editing.
func (s *Session) RemoveStamp(id string) error {
	s.begin()
	if !s.gate.CanEdit() {
		return s.fail("Action Not Allowed", apperr.New(apperr.CodeInvalidState, "stamps can only be removed while editing"))
	}
	if _, ok := s.store.Get(id); !ok {
		return nil
	}
	s.Select(id)
	if c := s.Controller(id); c != nil {
		c.Delete()
	}
	s.notify(LevelInfo, "Stamp Removed", "")
	return nil
}

func (s *Session) cancelGestures() {
	for _, c := range s.controllers {
		c.Cancel()
	}
}

// Workflow.

// Finalize moves to Finalizing. It needs at least one stamp.
func (s *Session) Finalize() error {
	s.begin()
	if err := s.busy("No Stamps Added"); err != nil {
		return err
	}
	if err := s.gate.Finalize(s.store.Len()); err != nil {
		return s.fail("No Stamps Added", err)
	}
	s.cancelGestures()
	s.store.Select("")
	s.notify(LevelSuccess, "Ready to Finalize", "Your image is ready for download.")
	return nil
}

// BackToEditing returns to Editing with the overlays untouched.
func (s *Session) BackToEditing() error {
	s.begin()
	if err := s.busy("Action Not Allowed"); err != nil {
		return err
	}
	if err := s.gate.BackToEditing(); err != nil {
		return s.fail("Action Not Allowed", err)
	}
	return nil
}

// Clear wipes the base image and every overlay and returns to AwaitingImage.
func (s *Session) Clear() error {
	s.begin()
	if err := s.busy("Action Not Allowed"); err != nil {
		return err
	}
	s.cancelGestures()
	s.gate.Reset()
	s.store.Clear()
	s.base = nil
	s.workspace = geometry.Size{}
	s.notify(LevelInfo, "Workspace Cleared", "Ready for a new creation!")
	return nil
}

// ReloadCatalog swaps the stamp catalog. Placed overlays keep their copied
// image references.
func (s *Session) ReloadCatalog(c *stamp.Catalog) {
	s.catalog.Store(c)
	s.logger.Info("stamp catalog reloaded", zap.Int("stamps", c.Len()))
	s.Emit(EventCatalogChanged, c)
}

// Export.

// Snapshot returns the scene an export would render now.
func (s *Session) Snapshot() export.Scene {
	scene := export.Scene{Display: s.workspace, Overlays: s.store.Overlays()}
	if s.base != nil {
		scene.Base = s.base.Image
	}
	return scene
}

// Export rasterizes the session at natural resolution and hands the file to
// saver. It runs only in Finalizing with a base image and at least one
// stamp; on failure the session stays in Finalizing.
func (s *Session) Export(ctx context.Context, saver export.Saver) (export.Result, error) {
	scene, err := s.BeginExport()
	if err != nil {
		return export.Result{}, err
	}
	res, err := s.RenderExport(ctx, scene, saver)
	return s.FinishExport(res, err)
}

// BeginExport checks the export preconditions, deselects and marks the
// session as exporting. It returns the scene to render; every successful
// call must be followed by FinishExport.
func (s *Session) BeginExport() (export.Scene, error) {
	s.begin()
	if s.base == nil || !s.gate.CanExport() {
		return export.Scene{}, s.fail("Download Error",
			apperr.New(apperr.CodeNotReady, "image not ready or not in finalizing step"))
	}
	if s.store.Len() == 0 {
		return export.Scene{}, s.fail("Download Error",
			apperr.New(apperr.CodeNotReady, "image must have stamps to enable download"))
	}
	if !s.exporting.CompareAndSwap(false, true) {
		return export.Scene{}, s.fail("Download Error",
			apperr.New(apperr.CodeInvalidState, "an export is in progress"))
	}
	s.store.Select("")
	return s.Snapshot(), nil
}

// RenderExport rasterizes scene and hands it to saver. It touches no
// session state and may run on any goroutine.
func (s *Session) RenderExport(ctx context.Context, scene export.Scene, saver export.Saver) (export.Result, error) {
	return s.raster.Export(ctx, scene, saver)
}

// FinishExport reports the outcome of RenderExport and clears the
// exporting mark. On failure the session stays in Finalizing.
func (s *Session) FinishExport(res export.Result, err error) (export.Result, error) {
	s.exporting.Store(false)
	if err != nil {
		return export.Result{}, s.fail("Download Error", err)
	}
	s.notify(LevelSuccess, "Image Downloaded!", "Your masterpiece is saved as "+res.Name+".")
	s.Emit(EventExported, res)
	return res, nil
}

// OutputFormat returns the configured export format.
func (s *Session) OutputFormat() export.Format {
	return s.raster.Format()
}
