package app

import (
	"photo-stamper/internal/workflow"

	"go.uber.org/zap"
)

// EventType identifies different session events.
type EventType int

const (
	// EventStateChanged carries a StateChange.
	EventStateChanged EventType = iota
	// EventImageLoaded carries the natural geometry.Size of the new base image.
	EventImageLoaded
	// EventOverlaysChanged carries the overlay.Mutation.
	EventOverlaysChanged
	// EventSelectionChanged carries the selected overlay id ("" for none).
	EventSelectionChanged
	// EventErrorChanged carries the current error message ("" when cleared).
	EventErrorChanged
	// EventExported carries the export.Result.
	EventExported
	// EventCatalogChanged carries the new *stamp.Catalog.
	EventCatalogChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// StateChange is the payload of EventStateChanged.
type StateChange struct {
	From, To workflow.State
}

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a short user-facing message.
type Notification struct {
	Title       string
	Description string
	Level       Level
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a logger; used when there is no GUI.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(n Notification) {
	fields := []zap.Field{zap.String("title", n.Title), zap.String("level", n.Level.String())}
	if n.Level == LevelError {
		l.Logger.Warn(n.Description, fields...)
		return
	}
	l.Logger.Info(n.Description, fields...)
}
