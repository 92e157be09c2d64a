package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/Pablu23/tftpc/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
