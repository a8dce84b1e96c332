package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/keskad/zusi-go/pkgs/app"
)

// NewCVCommand groups the CV get/set subcommands.
func NewCVCommand(programmer *app.Programmer) *cobra.Command {
	command := &cobra.Command{
		Use:   "cv",
		Short: "Read & write CVs on the decoder currently in load mode",
	}

	command.AddCommand(NewSetCommand(programmer))
	command.AddCommand(NewGetCommand(programmer))
	return command
}

func NewSetCommand(programmer *app.Programmer) *cobra.Command {
	type setArgs struct {
		Verify  bool
		Timeout uint16
		Settle  uint16
	}

	cmdArgs := setArgs{}
	command := &cobra.Command{
		Use:   "set",
		Short: "Write one or more CV values to the decoder",
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}

			cvString, err := parseArgsAsCVs(args)
			if err != nil {
				return err
			}

			return programmer.WriteCVAction(cvString,
				app.Verify(cmdArgs.Verify),
				app.Timeout(time.Second*time.Duration(cmdArgs.Timeout)),
				app.Settle(time.Millisecond*time.Duration(cmdArgs.Settle)))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 2, "Connection timeout in seconds")
	command.Flags().Uint16VarP(&cmdArgs.Settle, "settle", "", 50, "Time in milliseconds between writes")
	command.Flags().BoolVarP(&cmdArgs.Verify, "verify", "", false, "Read the value back after writing and compare")

	return command
}

func NewGetCommand(programmer *app.Programmer) *cobra.Command {
	type getArgs struct {
		Timeout uint16
		Retries uint8
	}

	cmdArgs := getArgs{}
	command := &cobra.Command{
		Use:   "get",
		Short: "Read one or more CV values from the decoder",
		Args:  cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}

			cvString, err := parseArgsAsCVs(args)
			if err != nil {
				return err
			}

			return programmer.ReadCVAction(cvString,
				app.Timeout(time.Second*time.Duration(cmdArgs.Timeout)),
				app.Retries(cmdArgs.Retries))
		},
	}

	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 2, "Connection timeout in seconds")
	command.Flags().Uint8VarP(&cmdArgs.Retries, "retry", "", 2, "Retry the read this many times on failure")

	return command
}

func parseArgsAsCVs(args []string) (string, error) {
	stdinString := ""
	if len(args) >= 1 && args[len(args)-1] == "-" {
		args = args[:len(args)-1]

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %v", err)
		}
		stdinString = strings.Trim(strings.ReplaceAll(string(data), "\n", ", "), ", ")
		args = append(args, "")
	}

	if len(args) == 0 {
		return "", fmt.Errorf("no CV argument provided")
	}

	cvString := args[0]
	if len(args) > 1 {
		cvString = ""
		for i, a := range args {
			if strings.Trim(a, " ") == "" {
				continue
			}
			if i > 0 {
				cvString += " "
			}
			cvString += a
		}
	}

	completeString := cvString
	if stdinString != "" {
		completeString = completeString + ", " + stdinString
	}

	return completeString, nil
}
