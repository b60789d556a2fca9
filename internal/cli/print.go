package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPrintCommand(color *string) *cobra.Command {
	var rangeSpec string

	cmd := &cobra.Command{
		Use:   "print <module>",
		Short: "Render a module as WebAssembly text",
		Long: `Render the module, or a byte range of it, in WAT-style text. Debug
names from the name section are shown where they apply. The range takes
the form start:end with either bound optional, so --range 0x20: renders
everything from offset 0x20 on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mod, err := loadModule(args[0])
			if err != nil {
				return err
			}
			r, err := parseRange(rangeSpec, mod.FullRange())
			if err != nil {
				return err
			}

			if colorEnabled(*color, os.Stdout) {
				parts, err := mod.PrintRich(r)
				if err != nil {
					return err
				}
				fmt.Print(renderParts(parts, newStyles(true)))
				return nil
			}

			out, err := mod.PrintPlain(r)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&rangeSpec, "range", "", "byte range to render (start:end)")
	return cmd
}
