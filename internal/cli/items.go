package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newItemsCommand(color *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items <module>",
		Short: "List the items of a module with their byte ranges",
		Long: `List every structural item of the module in file order: the module
itself, each section, and each section member, with the byte range it
occupies and its debug name when the module carries one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mod, err := loadModule(args[0])
			if err != nil {
				return err
			}
			items := mod.Items()
			if len(items) == 0 {
				return fmt.Errorf("%s: not a decodable module", args[0])
			}

			st := newStyles(colorEnabled(*color, os.Stdout))
			for _, it := range items {
				name := it.RawName
				if it.DisplayName != it.RawName {
					name += " " + st.name.Render("$"+it.DisplayName)
				}
				span := fmt.Sprintf("0x%06x..0x%06x", it.Range.Start, it.Range.End)
				fmt.Printf("%s  %s\n", st.dim.Render(span), name)
			}
			return nil
		},
	}
	return cmd
}
