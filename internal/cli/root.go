// Package cli implements the camtrap command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wildeye/camtrap/internal/catalog"
	"github.com/wildeye/camtrap/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath  string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the camtrap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "camtrap",
		Short: "camtrap - camera-trap image catalog",
		Long:  "Catalogs camera-trap images and keeps camera, deployment, and project assignments consistent as configurations change.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "camtrap.db", "path to the catalog database")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewProjectCommand(opts))
	cmd.AddCommand(NewDeploymentCommand(opts))
	cmd.AddCommand(NewCameraCommand(opts))
	cmd.AddCommand(NewTaskCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func configureLogging(opts *RootOptions) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// openService opens the database and wires the catalog engine over it.
// The returned closer must be called when the command finishes.
func openService(opts *RootOptions) (*catalog.Service, func() error, error) {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog database: %w", err)
	}
	svc := catalog.NewService(st, st, st, st, catalog.RealClock{}, catalog.UUIDv7Generator{}, slog.Default())
	return svc, st.Close, nil
}
