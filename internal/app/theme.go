package app

import (
	"image/color"

	"photo-stamper/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Theme is the editor's dark theme. Its accent follows the selection
// outline drawn on stamps and the window background matches the letterbox.
type Theme struct {
	Accent color.RGBA
}

var _ fyne.Theme = (*Theme)(nil)

// NewTheme returns the editor theme with the given accent.
func NewTheme(accent color.RGBA) *Theme {
	return &Theme{Accent: accent}
}

// Color ignores the requested variant: the editor is always dark.
func (t *Theme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return t.Accent
	case theme.ColorNameFocus:
		return colorutil.WithAlpha(t.Accent, 0x80)
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(t.Accent, 0x50)
	case theme.ColorNameBackground:
		return colorutil.Letterbox
	case theme.ColorNameMenuBackground, theme.ColorNameOverlayBackground, theme.ColorNameHeaderBackground:
		return colorutil.WithAlpha(colorutil.ControlsBackground, 0xff)
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *Theme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *Theme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size tightens padding so the stamp picker fits more rows beside the
// workspace.
func (t *Theme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameInnerPadding:
		return 6
	default:
		return theme.DefaultTheme().Size(name)
	}
}
