package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

var (
	buildOut string
	buildAll bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the site as static files",
	Long: `build fetches the listing, every load-more batch and the enumerated posts
from the CMS and writes them as static files. With --all every listed post is
written, not only the enumerated ones. Any fetch failure fails the build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app := spacetraveling.New(cfg, spacetraveling.WithLogger(logger))
		defer app.Close()

		res, err := app.Export(ctx, buildOut, buildAll)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		fmt.Printf("Wrote %d posts and %d load-more batches to %s\n", res.Posts, res.Batches, buildOut)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "dist", "output directory")
	buildCmd.Flags().BoolVar(&buildAll, "all", false, "write every listed post, not only the enumerated paths")
}
