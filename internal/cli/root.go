// Package cli provides the Cobra command structure for wasm-inspect.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	wasminspect "github.com/wippyai/wasm-inspect"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root inspect command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var color string

	rootCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect WebAssembly modules",
		Long: `inspect reads a WebAssembly module in binary or text form and shows
its structure: an index of items with the byte ranges they occupy, a
WAT-style rendering of any byte range, an annotated hex dump, and a
validation verdict. Text input is compiled to binary before inspection.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				if logger, err := zap.NewDevelopment(); err == nil {
					wasminspect.SetLogger(logger)
				}
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newItemsCommand(&color))
	rootCmd.AddCommand(newPrintCommand(&color))
	rootCmd.AddCommand(newDumpCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newViewCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
