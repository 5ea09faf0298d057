package cmd

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/internal/version"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := filepath.Base(args[0])

	log := hclog.New(&hclog.LoggerOptions{
		Name:   cliName,
		Level:  hclog.Warn,
		Output: os.Stderr,
	})

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	return run(args, &base.Command{Log: log, UI: ui, FS: afero.NewOsFs()})
}

// run dispatches args to the command tree built on b.
func run(args []string, b *base.Command) int {
	cliName := filepath.Base(args[0])

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "version"}
	}

	c := &cli.CLI{
		Name:       cliName,
		Args:       args[1:],
		Version:    version.Version,
		Commands:   commands(b),
		HelpWriter: os.Stderr,
	}

	exitCode, err := c.Run()
	if err != nil {
		b.UI.Error(err.Error())
		return 1
	}
	return exitCode
}
