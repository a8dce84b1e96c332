package main

import (
	"os"

	"github.com/keskad/zusi-go/pkgs/app"
	"github.com/keskad/zusi-go/pkgs/cli"
	"github.com/keskad/zusi-go/pkgs/output"
)

func main() {
	programmer := app.Programmer{P: output.NewHexPrinter()}
	cmd := cli.NewRootCommand(&programmer)
	args := os.Args
	if args != nil {
		args = args[1:]
		cmd.SetArgs(args)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
