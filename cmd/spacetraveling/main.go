// Command spacetraveling serves or exports the blog.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    spacetraveling.SiteConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "spacetraveling - a blog front-end for a Prismic repository",
	Long: `spacetraveling renders the posts of a Prismic repository as a blog.

It reads its settings from the environment (and a .env file in the working
directory): PRISMIC_ENDPOINT is always required, SESSION_SECRET by serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		cfg, err = spacetraveling.LoadConfig()
		if err != nil {
			return err
		}
		logger = newLogger(cfg)
		slog.SetDefault(logger)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spacetraveling version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spacetraveling %s\n", version)
	},
}

func newLogger(cfg spacetraveling.SiteConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

func init() {
	rootCmd.AddCommand(serveCmd, buildCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
