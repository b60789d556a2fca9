package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <module>",
		Short: "Validate a module",
		Long: `Validate the module structurally and against the type rules of the
execution engine. Prints ok and exits 0 on success; otherwise prints
the failure with its byte offset and exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mod, err := loadModule(args[0])
			if err != nil {
				return err
			}
			if ve := mod.Validate(); ve != nil {
				return fmt.Errorf("%s: %s (at offset 0x%x)", args[0], ve.Message, ve.Offset)
			}
			fmt.Printf("%s: ok\n", args[0])
			return nil
		},
	}
	return cmd
}
