package cmd

import (
	"context"
	"fmt"
	"time"

	"photo-stamper/internal/capture"
	"photo-stamper/internal/export"

	"github.com/spf13/cobra"
)

func newCaptureCmd(rt *runtime) *cobra.Command {
	var outPath string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Take a photo with the camera and export it with the default stamp",
		Long: `Open the camera named by STAMPER_CAMERA_DEVICE, take one still, place the
default stamp on it and export the result. The camera is released on every
path, including failures and timeouts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, err := rt.session()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := session.CaptureImage(ctx, capture.NewCamera(rt.cfg.CameraDevice)); err != nil {
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
			if _, err := session.Export(cmd.Context(), saver); err != nil {
				return err
			}
			if outPath == "" {
				outPath = dir.Path
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: stamped-image.<ext> in STAMPER_OUTPUT_DIR)")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Give up if the camera does not deliver a frame in time")

	return cmd
}
