package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/tiranuom/intrig/internal/cli"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}
