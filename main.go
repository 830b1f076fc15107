// Package main provides the entry point for Photo Stamper.
package main

import (
	"context"
	"os"

	"photo-stamper/cmd"
	"photo-stamper/internal/version"

	"github.com/charmbracelet/fang"
)

func main() {
	root := cmd.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.String()),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
