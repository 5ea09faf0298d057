package cmd

import (
	"github.com/mitchellh/cli"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/cleanup"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/devicepacks"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/devices"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/inventory"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/license"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/revisions"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/siql"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/ui"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/users"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/version"
	"github.com/fmapi/firemon-api-go/internal/cmd/commands/workflows"
)

// commands returns the command tree. Every command shares b.
func commands(b *base.Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},

		"devices": func() (cli.Command, error) {
			return &devices.Command{Command: b}, nil
		},
		"devices list": func() (cli.Command, error) {
			return &devices.ListCommand{Command: b}, nil
		},
		"devices get": func() (cli.Command, error) {
			return &devices.GetCommand{Command: b}, nil
		},
		"devices export": func() (cli.Command, error) {
			return &devices.ExportCommand{Command: b}, nil
		},
		"devices import": func() (cli.Command, error) {
			return &devices.ImportCommand{Command: b}, nil
		},
		"devices retrieve": func() (cli.Command, error) {
			return &devices.RetrieveCommand{Command: b}, nil
		},

		"devicepacks": func() (cli.Command, error) {
			return &devicepacks.Command{Command: b}, nil
		},
		"devicepacks list": func() (cli.Command, error) {
			return &devicepacks.ListCommand{Command: b}, nil
		},
		"devicepacks template": func() (cli.Command, error) {
			return &devicepacks.TemplateCommand{Command: b}, nil
		},
		"devicepacks upload": func() (cli.Command, error) {
			return &devicepacks.UploadCommand{Command: b}, nil
		},

		"revisions": func() (cli.Command, error) {
			return &revisions.Command{Command: b}, nil
		},
		"revisions list": func() (cli.Command, error) {
			return &revisions.ListCommand{Command: b}, nil
		},
		"revisions export": func() (cli.Command, error) {
			return &revisions.ExportCommand{Command: b}, nil
		},

		"siql": func() (cli.Command, error) {
			return &siql.Command{Command: b}, nil
		},

		"users": func() (cli.Command, error) {
			return &users.Command{Command: b}, nil
		},
		"users list": func() (cli.Command, error) {
			return &users.ListCommand{Command: b}, nil
		},

		"license": func() (cli.Command, error) {
			return &license.Command{Command: b}, nil
		},
		"license show": func() (cli.Command, error) {
			return &license.ShowCommand{Command: b}, nil
		},
		"license load": func() (cli.Command, error) {
			return &license.LoadCommand{Command: b}, nil
		},

		"workflows": func() (cli.Command, error) {
			return &workflows.Command{Command: b}, nil
		},
		"workflows list": func() (cli.Command, error) {
			return &workflows.ListCommand{Command: b}, nil
		},
		"workflows packets": func() (cli.Command, error) {
			return &workflows.PacketsCommand{Command: b}, nil
		},

		"cleanup": func() (cli.Command, error) {
			return &cleanup.Command{Command: b}, nil
		},
		"cleanup profiles": func() (cli.Command, error) {
			return &cleanup.ProfilesCommand{Command: b}, nil
		},
		"cleanup run": func() (cli.Command, error) {
			return &cleanup.RunCommand{Command: b}, nil
		},

		"inventory": func() (cli.Command, error) {
			return &inventory.Command{Command: b}, nil
		},
		"inventory sync": func() (cli.Command, error) {
			return &inventory.SyncCommand{Command: b}, nil
		},
		"inventory list": func() (cli.Command, error) {
			return &inventory.ListCommand{Command: b}, nil
		},

		"ui": func() (cli.Command, error) {
			return &ui.Command{Command: b}, nil
		},
	}
}
