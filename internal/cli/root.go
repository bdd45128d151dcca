// Package cli implements the attendance command tree.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mmynk/dtlattendance/internal/config"
	"github.com/mmynk/dtlattendance/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the attendance CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "attendance",
		Short:         "Track daily attendance by NFC tag",
		Long:          "Manage a roster of children and record who is present each day.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := logging.ParseLevel(cfg.LogLevel)
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewChildrenCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewPresentCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}
