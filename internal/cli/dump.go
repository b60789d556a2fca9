package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-inspect/printer"
)

func newDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <module>",
		Short: "Show an annotated hex dump of a module",
		Long: `Show every byte of the module in an offset-prefixed hex dump, with
the first row of each structural region annotated with what the bytes
encode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mod, err := loadModule(args[0])
			if err != nil {
				return err
			}
			out, err := printer.Dump(mod.Bytes())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	return cmd
}
