package cmd

import (
	"fmt"
	"text/tabwriter"

	"photo-stamper/internal/asset"
	"photo-stamper/internal/stamp"

	"github.com/spf13/cobra"
)

func newCatalogCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate stamp catalogs",
	}
	cmd.AddCommand(newCatalogListCmd(rt))
	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogExportCmd(rt))
	cmd.AddCommand(newCatalogCheckCmd(rt))
	return cmd
}

func newCatalogListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stamps of the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.catalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tIMAGE")
			for _, a := range c.Assets() {
				fmt.Fprintf(w, "%s\t%s\t%gx%g\t%s\n", a.ID, a.DisplayName, a.DefaultWidth, a.DefaultHeight, a.ImageRef)
			}
			return w.Flush()
		},
	}
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file without loading its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := stamp.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stamps OK\n", args[0], c.Len())
			return nil
		},
	}
}

func newCatalogExportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the configured catalog as YAML",
		Long:  `Print the configured catalog (the built-in presets by default) as a YAML file that can be edited and passed back through STAMPER_CATALOG.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.catalog()
			if err != nil {
				return err
			}
			data, err := c.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newCatalogCheckCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every stamp image of the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rt.catalog()
			if err != nil {
				return err
			}
			assets := c.Assets()
			reqs := make([]asset.Request, len(assets))
			for i, a := range assets {
				reqs[i] = asset.Request{OverlayID: a.ID, Ref: a.ImageRef, Alt: a.AltText}
			}
			images, err := asset.LoadAll(cmd.Context(), rt.loader(), reqs, rt.cfg.AssetTimeout)
			if err != nil {
				return err
			}
			for i, im := range images {
				b := im.Bounds()
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d\n", assets[i].ID, b.Dx(), b.Dy())
			}
			return nil
		},
	}
}
