package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/keskad/zusi-go/pkgs/app"
)

// NewZppCommand groups the ZPP firmware erase/write subcommands.
func NewZppCommand(programmer *app.Programmer) *cobra.Command {
	command := &cobra.Command{
		Use:   "zpp",
		Short: "Erase and write the decoder's ZPP firmware region",
	}

	command.AddCommand(NewZppEraseCommand(programmer))
	command.AddCommand(NewZppWriteCommand(programmer))
	return command
}

func NewZppEraseCommand(programmer *app.Programmer) *cobra.Command {
	type eraseArgs struct {
		Timeout uint16
	}
	cmdArgs := eraseArgs{}
	command := &cobra.Command{
		Use:   "erase",
		Short: "Erase the entire ZPP region",
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}
			return programmer.EraseZppAction(app.Timeout(time.Second * time.Duration(cmdArgs.Timeout)))
		},
	}
	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	return command
}

func NewZppWriteCommand(programmer *app.Programmer) *cobra.Command {
	type writeArgs struct {
		Addr    string
		Watch   bool
		Timeout uint16
	}
	cmdArgs := writeArgs{}
	command := &cobra.Command{
		Use:   "write <file>",
		Short: "Stage a firmware image and write it to the decoder",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}

			baseAddr, err := strconv.ParseUint(cmdArgs.Addr, 0, 32)
			if err != nil {
				return fmt.Errorf("invalid --addr %q: %v", cmdArgs.Addr, err)
			}

			return programmer.WriteZppAction(args[0], uint32(baseAddr), cmdArgs.Watch,
				app.Timeout(time.Second*time.Duration(cmdArgs.Timeout)))
		},
	}
	command.Flags().StringVarP(&cmdArgs.Addr, "addr", "a", "0x0", "Base address to write the image at")
	command.Flags().BoolVarP(&cmdArgs.Watch, "watch", "w", false, "Re-stage and re-write whenever the file changes")
	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 10, "Connection timeout in seconds")
	return command
}
