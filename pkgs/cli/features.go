package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/keskad/zusi-go/pkgs/app"
)

func NewFeaturesCommand(programmer *app.Programmer) *cobra.Command {
	type featuresArgs struct {
		Timeout uint16
	}
	cmdArgs := featuresArgs{}
	command := &cobra.Command{
		Use:   "features",
		Short: "Read the decoder's feature vector and negotiate a bitrate",
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}
			return programmer.FeaturesAction(app.Timeout(time.Second * time.Duration(cmdArgs.Timeout)))
		},
	}
	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 2, "Connection timeout in seconds")
	return command
}

func NewExitCommand(programmer *app.Programmer) *cobra.Command {
	type exitArgs struct {
		Flags   uint8
		Timeout uint16
	}
	cmdArgs := exitArgs{}
	command := &cobra.Command{
		Use:   "exit",
		Short: "Leave the decoder's load mode",
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}
			return programmer.ExitAction(cmdArgs.Flags, app.Timeout(time.Second*time.Duration(cmdArgs.Timeout)))
		},
	}
	command.Flags().Uint8VarP(&cmdArgs.Flags, "flags", "f", 0, "Exit flags byte")
	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 2, "Connection timeout in seconds")
	return command
}

func NewLcDcCommand(programmer *app.Programmer) *cobra.Command {
	command := &cobra.Command{
		Use:   "lcdc",
		Short: "Query the decoder's load-code/developer-code authorization",
	}
	command.AddCommand(NewLcDcQueryCommand(programmer))
	return command
}

func NewLcDcQueryCommand(programmer *app.Programmer) *cobra.Command {
	type queryArgs struct {
		Code    string
		Timeout uint16
	}
	cmdArgs := queryArgs{}
	command := &cobra.Command{
		Use:   "query",
		Short: "Ask whether a developer code authorizes a ZPP LC/DC operation",
		RunE: func(command *cobra.Command, args []string) error {
			if err := programmer.Initialize(); err != nil {
				return err
			}

			code, err := parseDeveloperCode(cmdArgs.Code)
			if err != nil {
				return err
			}

			return programmer.LcDcQueryAction(code, app.Timeout(time.Second*time.Duration(cmdArgs.Timeout)))
		},
	}
	command.Flags().StringVarP(&cmdArgs.Code, "code", "c", "00000000", "4-byte developer code, as 8 hex digits")
	command.Flags().Uint16VarP(&cmdArgs.Timeout, "timeout", "", 2, "Connection timeout in seconds")
	return command
}

func parseDeveloperCode(hexString string) ([4]byte, error) {
	var code [4]byte
	value, err := strconv.ParseUint(hexString, 16, 32)
	if err != nil {
		return code, fmt.Errorf("invalid developer code %q: %v", hexString, err)
	}
	for i := 0; i < 4; i++ {
		code[3-i] = byte(value >> (8 * i))
	}
	return code, nil
}
