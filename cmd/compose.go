package cmd

import (
	"fmt"

	"photo-stamper/internal/export"
	"photo-stamper/internal/scene"

	"github.com/spf13/cobra"
)

func newComposeCmd(rt *runtime) *cobra.Command {
	var scenePath string
	var imagePath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Render a scene file without opening a window",
		Long: `Load a photo, replay the stamp placements of a scene file through the
editor's rules, and export the result at the photo's natural resolution.

Scene files are YAML:

  image: photo.jpg
  workspace: {width: 800, height: 600}
  default_stamp: true
  stamps:
    - {stamp: star, x: 100, y: 80, width: 120, rotate_steps: 1}`,
		Example: `  # Export next to STAMPER_OUTPUT_DIR as stamped-image.png
  photo-stamper compose --scene party.yaml

  # Override the photo and the output file
  photo-stamper compose --scene party.yaml --image other.jpg --out /tmp/out.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.Load(scenePath)
			if err != nil {
				return err
			}
			session, _, err := rt.session()
			if err != nil {
				return err
			}
			if err := scene.Apply(session, sc, imagePath); err != nil {
				return err
			}
			if err := session.Finalize(); err != nil {
				return err
			}

			dir := &export.DirSaver{Dir: rt.cfg.OutputDir}
			var saver export.Saver = dir
			if outPath != "" {
				saver = export.FileSaver(outPath)
			}
			res, err := session.Export(cmd.Context(), saver)
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path = dir.Path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d, %d bytes, %d stamps)\n",
				path, res.Size.X, res.Size.Y, res.Bytes, session.Store().Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&scenePath, "scene", "", "Path to the scene YAML file (required)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Photo to stamp (overrides the scene's image)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: stamped-image.<ext> in STAMPER_OUTPUT_DIR)")
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}
