package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/keskad/zusi-go/pkgs/app"
)

// NewRootCommand builds the full command tree around a Programmer.
func NewRootCommand(programmer *app.Programmer) *cobra.Command {
	command := &cobra.Command{
		Use:   "zusi",
		Short: "ZUSI sound decoder programmer",
		RunE: func(command *cobra.Command, args []string) error {
			return errors.New("please select a command")
		},
	}

	command.PersistentFlags().BoolVarP(&programmer.Debug, "debug", "v", false, "Increase verbosity to the debug level")

	command.AddCommand(NewCVCommand(programmer))
	command.AddCommand(NewZppCommand(programmer))
	command.AddCommand(NewFeaturesCommand(programmer))
	command.AddCommand(NewExitCommand(programmer))
	command.AddCommand(NewLcDcCommand(programmer))

	return command
}
