package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"prose_lens/internal/workspace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	workspace string
	verbose   bool
	format    string
	color     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "prose_lens",
		Short:         "Readability analysis and issue highlighting for prose",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, opts.verbose)
			return setupColor(opts.color)
		},
	}

	root.PersistentFlags().StringVar(&opts.workspace, "workspace", "", "workspace directory (default ~/"+workspace.BaseDirName+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")
	root.PersistentFlags().StringVar(&opts.format, "format", "", "output format (console|json), overrides settings")
	root.PersistentFlags().StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(
		newInitCmd(opts),
		newAnalyzeCmd(opts),
		newHighlightCmd(opts),
		newReportCmd(opts),
		newImportCmd(opts),
		newDraftsCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

func setupColor(mode string) error {
	switch strings.ToLower(mode) {
	case "auto":
	case "on":
		color.NoColor = false
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "off":
		color.NoColor = true
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("invalid --color value %q (want auto, on or off)", mode)
	}
	return nil
}

// open resolves the workspace, creating it on first use, and loads its
// settings with flag overrides applied.
func (o *rootOptions) open() (string, workspace.Settings, error) {
	var (
		root string
		err  error
	)
	if o.workspace == "" {
		root, err = workspace.EnsureDefault()
	} else {
		root, err = workspace.EnsureAt(o.workspace)
	}
	if err != nil {
		return "", workspace.Settings{}, fmt.Errorf("workspace initialization failed: %w", err)
	}
	settings, err := workspace.LoadSettings(root)
	if err != nil {
		return "", workspace.Settings{}, err
	}
	if o.format != "" {
		settings.Output.Format = strings.ToLower(o.format)
	}
	switch settings.Output.Format {
	case "console", "json":
	default:
		return "", workspace.Settings{}, fmt.Errorf("invalid output format %q (want console or json)", settings.Output.Format)
	}
	return root, settings, nil
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the workspace and default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := opts.open()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ProseLens workspace ready at: %s\n", root)
			fmt.Fprintf(cmd.OutOrStdout(), "Settings: %s\n", workspace.SettingsPath(root))
			return nil
		},
	}
}
