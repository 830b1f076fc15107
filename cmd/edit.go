package cmd

import (
	"time"

	"photo-stamper/internal/app"
	"photo-stamper/ui/mainwindow"
	"photo-stamper/ui/prefs"
	"photo-stamper/ui/workspace"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const catalogPollInterval = 2 * time.Second

func newEditCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [image]",
		Short: "Open the stamp editor window",
		Long: `Open the editor window, optionally with a photo already loaded.

When STAMPER_CATALOG names a file, edits to it are picked up while the
editor runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cache, err := rt.session()
			if err != nil {
				return err
			}

			a := fyneapp.NewWithID("io.github.photo-stamper")
			a.Settings().SetTheme(app.NewTheme(session.Config().Selection()))

			images := workspace.NewImages(cache, rt.logger)
			win := mainwindow.New(a, session, images, prefs.Load())

			if len(args) == 1 {
				var err error
				session.Do(func() { err = session.LoadImage(args[0]) })
				if err != nil {
					rt.logger.Warn("failed to load image", zap.String("path", args[0]), zap.Error(err))
				}
			}

			if rt.cfg.Catalog != "" {
				if w := app.WatchCatalog(session, rt.cfg.Catalog, catalogPollInterval, session.Do); w != nil {
					rt.logger.Info("watching stamp catalog", zap.String("path", w.Path()))
					defer w.Stop()
				}
			}

			win.ShowAndRun()
			return nil
		},
	}
}
