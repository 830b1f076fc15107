// Package cmd wires the photo-stamper command line.
package cmd

import (
	"path/filepath"

	"photo-stamper/internal/app"
	"photo-stamper/internal/asset"
	"photo-stamper/internal/config"
	"photo-stamper/internal/stamp"
	"photo-stamper/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime is the state shared by every subcommand once the root command's
// pre-run has loaded it.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	rt := &runtime{logger: zap.NewNop()}
	var logLevel string

	cmd := &cobra.Command{
		Use:   "photo-stamper",
		Short: "Place stamps on photos and export them at full resolution",
		Long: `Photo Stamper places stamp images on a photo, lets you move, resize and
rotate them, and exports the composite at the photo's natural resolution.

Run "photo-stamper edit" for the editor window, or "photo-stamper compose"
to render a scene file without a display. Settings come from STAMPER_*
environment variables or a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			l, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			rt.cfg, rt.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = rt.logger.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides STAMPER_LOG_LEVEL)")

	// Add subcommands
	cmd.AddCommand(newEditCmd(rt))
	cmd.AddCommand(newComposeCmd(rt))
	cmd.AddCommand(newCatalogCmd(rt))
	cmd.AddCommand(newCaptureCmd(rt))

	return cmd
}

// catalog loads the configured stamp catalog.
func (rt *runtime) catalog() (*stamp.Catalog, error) {
	return stamp.Load(rt.cfg.Catalog)
}

// loader resolves stamp references relative to the catalog file.
func (rt *runtime) loader() *asset.Cache {
	base := "."
	if rt.cfg.Catalog != "" {
		base = filepath.Dir(rt.cfg.Catalog)
	}
	return asset.NewCache(asset.NewResolver(base, rt.logger))
}

// session builds a session over the configured catalog.
func (rt *runtime) session() (*app.Session, *asset.Cache, error) {
	c, err := rt.catalog()
	if err != nil {
		return nil, nil, err
	}
	cache := rt.loader()
	return app.NewSession(rt.cfg, c, cache, rt.logger), cache, nil
}
