// Package mainwindow provides the stamp editor window.
package mainwindow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"photo-stamper/internal/app"
	"photo-stamper/internal/capture"
	"photo-stamper/internal/export"
	img "photo-stamper/internal/image"
	"photo-stamper/internal/stamp"
	"photo-stamper/internal/version"
	"photo-stamper/internal/workflow"
	"photo-stamper/ui/prefs"
	"photo-stamper/ui/workspace"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	appTitle       = "Photo Stamper"
	captureTimeout = 15 * time.Second
	thumbSize      = 40
)

// MainWindow is the editor window. Widget callbacks, the workspace renderer
// and the capture and export goroutines share the session through
// Session.Do; session listeners already run inside it.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs
	logger  *zap.Logger

	canvas *workspace.Canvas
	images *workspace.Images

	stepLabel  *widget.Label
	errorLabel *fynecanvas.Text
	statusBar  *widget.Label
	stampList  *widget.List

	uploadBtn   *widget.Button
	cameraBtn   *widget.Button
	addBtn      *widget.Button
	finalizeBtn *widget.Button
	backBtn     *widget.Button
	downloadBtn *widget.Button
	clearBtn    *widget.Button

	selectedStamp string
	editing       atomic.Bool // mirrors the workflow state for the picker
}

// New creates the editor window for session.
func New(fyneApp fyne.App, session *app.Session, images *workspace.Images, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   p,
		logger:  session.Logger(),
		images:  images,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.session.Do(mw.updateControls)

	mw.Resize(fyne.NewSize(p.WindowSize(1100, 760)))
	mw.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.Close()
	})
	return mw
}

// setupUI creates the main layout: stamp picker | workspace, with the step
// toolbar on top and the error and status lines at the bottom.
func (mw *MainWindow) setupUI() {
	mw.canvas = workspace.New(mw.session, mw.images)
	mw.canvas.OnDropped(mw.stampPlaced)

	mw.stepLabel = widget.NewLabel("")
	mw.stepLabel.TextStyle = fyne.TextStyle{Bold: true}
	mw.errorLabel = fynecanvas.NewText("", theme.ErrorColor())
	mw.statusBar = widget.NewLabel("Ready")

	mw.uploadBtn = widget.NewButtonWithIcon("Upload Image", theme.FolderOpenIcon(), mw.onOpenImage)
	mw.cameraBtn = widget.NewButtonWithIcon("Take Photo", theme.MediaPhotoIcon(), mw.onTakePhoto)
	mw.finalizeBtn = widget.NewButtonWithIcon("Finalize", theme.ConfirmIcon(), mw.onFinalize)
	mw.finalizeBtn.Importance = widget.HighImportance
	mw.backBtn = widget.NewButtonWithIcon("Back to Editing", theme.NavigateBackIcon(), mw.onBackToEditing)
	mw.downloadBtn = widget.NewButtonWithIcon("Download", theme.DownloadIcon(), mw.onDownload)
	mw.downloadBtn.Importance = widget.HighImportance
	mw.clearBtn = widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), mw.onClear)

	toolbar := container.NewHBox(
		mw.uploadBtn, mw.cameraBtn,
		widget.NewSeparator(),
		mw.finalizeBtn, mw.backBtn, mw.downloadBtn,
		widget.NewSeparator(),
		mw.clearBtn,
	)

	picker := mw.createStampPicker()
	mw.images.OnReady(func() {
		mw.canvas.Refresh()
		mw.stampList.Refresh()
	})

	// Border order: top, bottom, left, right, center.
	center := container.NewBorder(container.NewVBox(mw.stepLabel, toolbar), nil, nil, nil, mw.canvas)

	split := container.NewHSplit(picker, center)
	split.SetOffset(0.22)

	status := container.NewVBox(container.NewPadded(mw.errorLabel), mw.statusBar)
	content := container.NewBorder(nil, status, nil, nil, split)
	mw.SetContent(content)
}

// createStampPicker builds the stamp list. Selecting a stamp arms it for a
// click on the photo; Add Stamp places it in the center.
func (mw *MainWindow) createStampPicker() fyne.CanvasObject {
	mw.stampList = widget.NewList(
		func() int { return mw.session.Catalog().Len() },
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(thumbSize, thumbSize))
			return container.NewHBox(thumb, widget.NewLabel("stamp"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			assets := mw.pickerAssets()
			if id >= len(assets) {
				return
			}
			a := assets[id]
			row := obj.(*fyne.Container)
			thumb := row.Objects[0].(*fynecanvas.Image)
			if im := mw.images.Get(a.ImageRef); im != nil && thumb.Image != im {
				thumb.Image = im
				thumb.Refresh()
			}
			row.Objects[1].(*widget.Label).SetText(a.DisplayName)
		},
	)
	mw.stampList.OnSelected = func(id widget.ListItemID) {
		assets := mw.pickerAssets()
		if id >= len(assets) {
			return
		}
		mw.selectedStamp = assets[id].ID
		mw.canvas.SetDropStamp(mw.selectedStamp)
		mw.updateStatus(fmt.Sprintf("Click the photo to place %s, or press Add Stamp.", assets[id].DisplayName))
		mw.updateAddButton()
	}
	mw.stampList.OnUnselected = func(widget.ListItemID) {
		mw.selectedStamp = ""
		mw.canvas.SetDropStamp("")
		mw.updateAddButton()
	}

	mw.addBtn = widget.NewButtonWithIcon("Add Stamp", theme.ContentAddIcon(), func() {
		id := mw.selectedStamp
		if id == "" {
			return
		}
		var err error
		mw.session.Do(func() { _, err = mw.session.PlaceCentered(id) })
		if err == nil {
			mw.stampPlaced(id)
		}
		mw.canvas.Refresh()
	})

	return container.NewBorder(
		widget.NewLabelWithStyle("Stamps", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mw.addBtn,
		nil, nil,
		mw.stampList,
	)
}

// pickerAssets returns the catalog with recently used stamps first.
func (mw *MainWindow) pickerAssets() []stamp.Asset {
	catalog := mw.session.Catalog()
	assets := catalog.Assets()
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	for i, id := range mw.prefs.RecentFirst(ids) {
		assets[i], _ = catalog.Lookup(id)
	}
	return assets
}

// stampPlaced records a placed stamp as recently used and disarms the picker.
func (mw *MainWindow) stampPlaced(stampID string) {
	mw.prefs.TouchStamp(stampID)
	mw.stampList.UnselectAll()
	mw.stampList.Refresh()
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Data URI...", mw.onOpenDataURI),
		fyne.NewMenuItem("Take Photo", mw.onTakePhoto),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Download...", mw.onDownload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Workspace", mw.onClear),
	)

	stampMenu := fyne.NewMenu("Stamp",
		fyne.NewMenuItem("Finalize", mw.onFinalize),
		fyne.NewMenuItem("Back to Editing", mw.onBackToEditing),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reload Stamp Previews", func() {
			mw.images.Retry()
			mw.stampList.Refresh()
			mw.canvas.Refresh()
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, stampMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.SetNotifier(app.NotifierFunc(mw.notify))

	mw.session.On(app.EventStateChanged, func(data interface{}) {
		mw.updateControls()
		mw.canvas.Refresh()
	})
	mw.session.On(app.EventImageLoaded, func(data interface{}) {
		mw.canvas.Refresh()
	})
	mw.session.On(app.EventOverlaysChanged, func(data interface{}) {
		mw.updateControls()
		mw.canvas.Refresh()
	})
	mw.session.On(app.EventErrorChanged, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.errorLabel.Text = msg
			mw.errorLabel.Refresh()
		}
	})
	mw.session.On(app.EventCatalogChanged, func(data interface{}) {
		mw.stampList.UnselectAll()
		mw.stampList.Refresh()
	})
	mw.session.On(app.EventExported, func(data interface{}) {
		if res, ok := data.(export.Result); ok {
			mw.app.SendNotification(fyne.NewNotification("Image Downloaded!", res.Name))
		}
	})
}

// notify shows a session notification in the status bar.
func (mw *MainWindow) notify(n app.Notification) {
	text := n.Title
	if n.Description != "" {
		text += ": " + n.Description
	}
	mw.updateStatus(text)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// updateControls enables the buttons allowed in the current step. The
// caller holds the session.
func (mw *MainWindow) updateControls() {
	state := mw.session.State()
	busy := mw.session.Exporting()
	mw.editing.Store(state == workflow.Editing)

	switch state {
	case workflow.AwaitingImage:
		mw.stepLabel.SetText("Step 1: Upload or take a photo")
	case workflow.Editing:
		mw.stepLabel.SetText("Step 2: Add, move, resize and rotate stamps")
	case workflow.Finalizing:
		mw.stepLabel.SetText("Step 3: Download your stamped image")
	}

	setEnabled(mw.uploadBtn, !busy)
	setEnabled(mw.cameraBtn, !busy)
	mw.updateAddButton()
	setEnabled(mw.finalizeBtn, state == workflow.Editing && mw.session.Store().Len() > 0)
	setEnabled(mw.backBtn, state == workflow.Finalizing && !busy)
	setEnabled(mw.downloadBtn, state == workflow.Finalizing && !busy)
	setEnabled(mw.clearBtn, state != workflow.AwaitingImage && !busy)
}

// updateAddButton enables Add Stamp while editing with a stamp selected in
// the picker. It does not touch the session.
func (mw *MainWindow) updateAddButton() {
	setEnabled(mw.addBtn, mw.editing.Load() && mw.selectedStamp != "")
}

// getLastDir returns a remembered directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir(d prefs.Dir) fyne.ListableURI {
	path := mw.prefs.Dir(d)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// SavePreferences stores the window size with the other preferences.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetWindowSize(size.Width, size.Height)
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("failed to save preferences", zap.Error(err))
	}
}

// Action handlers

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		uri := reader.URI()
		data, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if uri.Scheme() == "file" {
			mw.prefs.SetDir(prefs.OpenDir, filepath.Dir(uri.Path()))
		}
		contentType := img.ContentTypeFor(uri.Name())
		if contentType == "" {
			contentType = uri.MimeType()
		}
		mw.session.Do(func() {
			mw.session.UploadImage(img.Upload{Name: uri.Name(), ContentType: contentType, Data: data})
		})
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(img.SupportedFormats()))
	if loc := mw.getLastDir(prefs.OpenDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenDataURI() {
	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("data:image/png;base64,...")
	dialog.ShowForm("Open Data URI", "Open", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("URI", entry)},
		func(ok bool) {
			if ok && entry.Text != "" {
				mw.session.Do(func() { mw.session.LoadDataURI(entry.Text) })
			}
		}, mw.Window)
}

// onTakePhoto reads a frame in the background; only installing it touches
// the session.
func (mw *MainWindow) onTakePhoto() {
	mw.updateStatus("Opening camera...")
	mw.cameraBtn.Disable()
	camera := capture.NewCamera(mw.session.Config().CameraDevice)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
		defer cancel()
		frame, err := capture.Capture(ctx, camera)
		mw.session.Do(func() {
			mw.session.UseFrame(frame, err)
			mw.updateControls()
		})
	}()
}

func (mw *MainWindow) onFinalize() {
	mw.canvas.Cancel()
	mw.session.Do(func() { mw.session.Finalize() })
}

func (mw *MainWindow) onBackToEditing() {
	mw.session.Do(func() { mw.session.BackToEditing() })
}

func (mw *MainWindow) onClear() {
	dialog.ShowConfirm("Clear Workspace", "Remove the photo and every stamp?", func(ok bool) {
		if ok {
			mw.canvas.Cancel()
			mw.session.Do(func() { mw.session.Clear() })
		}
	}, mw.Window)
}

func (mw *MainWindow) onDownload() {
	ready := false
	mw.session.Do(func() {
		ready = mw.session.State() == workflow.Finalizing
		if !ready {
			// Let the session report why.
			mw.session.Export(context.Background(), export.SaverFunc(func(string, []byte) error { return nil }))
		}
	})
	if !ready {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.prefs.SetDir(prefs.SaveDir, filepath.Dir(path))

		var scene export.Scene
		mw.session.Do(func() {
			scene, err = mw.session.BeginExport()
			mw.updateControls()
		})
		if err != nil {
			os.Remove(path)
			return
		}
		mw.updateStatus("Rendering " + filepath.Base(path) + "...")
		go func() {
			res, err := mw.session.RenderExport(context.Background(), scene, export.FileSaver(path))
			if err != nil {
				// The dialog created the file; an export that failed must leave nothing behind.
				os.Remove(path)
			}
			mw.session.Do(func() {
				mw.session.FinishExport(res, err)
				mw.updateControls()
			})
		}()
	}, mw.Window)
	fd.SetFileName(mw.session.OutputFormat().FileName())
	if loc := mw.getLastDir(prefs.SaveDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Place stamps on a photo and download the result\n"+
			"at the photo's original resolution.\n\n"+
			"Stamps in catalog: %d",
			appTitle, version.String(), mw.session.Catalog().Len()),
		mw.Window)
}
