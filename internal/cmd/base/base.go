// Package base holds what every fmctl command shares: logging, UI, the
// common flags and the FireMon connection.
package base

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/fmapi/firemon-api-go/internal/config"
	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Command is embedded by every command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
	FS  afero.Fs

	// NewClient connects to FireMon. Tests replace it.
	NewClient func(ctx context.Context, cfg *firemon.Config) (*firemon.Client, error)

	// OpenURL opens a URL in the user's browser.
	OpenURL func(url string) error

	flagConfig   string
	flagProfile  string
	flagFormat   string
	flagLogLevel string
}

// Flags returns a flag set for a command with the common flags added.
func (c *Command) Flags(name string) *FlagSet {
	f := NewFlagSet(name)
	f.StringVar(
		&c.flagConfig, "config", "",
		"[FMCTL_CONFIG] Path to the config file (default: ~/.fmctl.hcl)",
	)
	f.StringVar(
		&c.flagProfile, "profile", "",
		"Profile of the config file to use",
	)
	f.StringVar(
		&c.flagFormat, "format", FormatTable,
		"Output format: table, json or yaml",
	)
	f.StringVar(
		&c.flagLogLevel, "log-level", "",
		"[FMCTL_LOG_LEVEL] Log level: trace, debug, info, warn or error",
	)
	return f
}

// Config loads the config file and sets the log level from it. The
// default file may be missing; an explicit one may not.
func (c *Command) Config() (*config.Config, error) {
	path, optional := c.flagConfig, false
	if path == "" {
		path, optional = config.DefaultPath(), os.Getenv("FMCTL_CONFIG") == ""
	}
	cfg, err := config.Load(c.FS, path, optional)
	if err != nil {
		return nil, err
	}

	level := c.flagLogLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if level == "" {
		level = os.Getenv("FMCTL_LOG_LEVEL")
	}
	if level != "" {
		l := hclog.LevelFromString(level)
		if l == hclog.NoLevel {
			return nil, fmt.Errorf("invalid log level: %s", level)
		}
		c.Log.SetLevel(l)
	}
	return cfg, nil
}

// Profile returns the selected profile of the config file.
func (c *Command) Profile() (*config.Profile, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	return cfg.Profile(c.flagProfile)
}

// Client logs in to the FireMon server of the selected profile.
func (c *Command) Client(ctx context.Context) (*firemon.Client, error) {
	p, err := c.Profile()
	if err != nil {
		return nil, err
	}
	cfg, err := p.ClientConfig(c.Log)
	if err != nil {
		return nil, err
	}

	newClient := c.NewClient
	if newClient == nil {
		newClient = firemon.New
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Host, err)
	}
	return client, nil
}

// ParseID parses a numeric id argument.
func ParseID(what, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", what, s)
	}
	return id, nil
}

// Context returns a context cancelled on interrupt.
func (c *Command) Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
