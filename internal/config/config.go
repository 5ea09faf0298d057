// Package config loads the fmctl configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
	"github.com/fmapi/firemon-api-go/pkg/inventory"
)

// DefaultFile is the config file name looked up in the home directory.
const DefaultFile = ".fmctl.hcl"

// Config is the fmctl configuration file.
//
// Example:
//
//	log_level       = "info"
//	default_profile = "lab"
//
//	profile "lab" {
//	  host       = "fmos.lab.example.com"
//	  username   = "firemon"
//	  password   = env("FIREMON_PASSWORD")
//	  tls_verify = false
//	}
//
//	inventory {
//	  path = "/var/lib/fmctl/inventory.db"
//	}
type Config struct {
	LogLevel       string            `hcl:"log_level,optional"`
	DefaultProfile string            `hcl:"default_profile,optional"`
	Profiles       []*Profile        `hcl:"profile,block"`
	Inventory      *inventory.Config `hcl:"inventory,block"`
}

// Profile is a FireMon server and the credentials to use on it.
type Profile struct {
	Name        string  `hcl:"name,label"`
	Host        string  `hcl:"host,optional"`
	Username    string  `hcl:"username,optional"`
	Password    string  `hcl:"password,optional"`
	DomainID    int     `hcl:"domain_id,optional"`
	TLSVerify   *bool   `hcl:"tls_verify,optional"`
	CACertFile  string  `hcl:"ca_cert_file,optional"`
	Proxy       string  `hcl:"proxy,optional"`
	Timeout     string  `hcl:"timeout,optional"`
	MaxAttempts int     `hcl:"max_attempts,optional"`
	PageSize    int     `hcl:"page_size,optional"`
	Concurrency int     `hcl:"concurrency,optional"`
	RateLimit   float64 `hcl:"rate_limit,optional"`

	ControlPanelPort int    `hcl:"control_panel_port,optional"`
	ControlPanelURL  string `hcl:"control_panel_url,optional"`
}

// DefaultPath returns the config file to use when none is given: the
// FMCTL_CONFIG env var, else ~/.fmctl.hcl.
func DefaultPath() string {
	if p := os.Getenv("FMCTL_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFile
	}
	return filepath.Join(home, DefaultFile)
}

// Load reads the config file at path from fsys. A missing file is an error
// unless optional is set, in which case an empty Config is returned.
func Load(fsys afero.Fs, path string, optional bool) (*Config, error) {
	src, err := afero.ReadFile(fsys, path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes HCL config src. filename is used in diagnostics.
func Parse(filename string, src []byte) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, src, evalContext(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate profile %q in %s", p.Name, filename)
		}
		seen[p.Name] = true
	}
	if cfg.LogLevel != "" && hclog.LevelFromString(cfg.LogLevel) == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log_level %q in %s", cfg.LogLevel, filename)
	}
	return &cfg, nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": function.New(&function.Spec{
				Params: []function.Parameter{{Name: "name", Type: cty.String}},
				Type:   function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
					return cty.StringVal(os.Getenv(args[0].AsString())), nil
				},
			}),
		},
	}
}

// Profile returns the named profile with env overrides applied. An empty
// name selects default_profile, or the only profile. When the file has no
// profiles an empty "default" profile is used, so env vars alone suffice.
func (c *Config) Profile(name string) (*Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" && len(c.Profiles) == 1 {
		name = c.Profiles[0].Name
	}

	var p *Profile
	for _, candidate := range c.Profiles {
		if candidate.Name == name {
			cp := *candidate
			p = &cp
			break
		}
	}
	if p == nil {
		if name != "" && name != "default" {
			return nil, fmt.Errorf("profile %q not found", name)
		}
		p = &Profile{Name: "default"}
	}

	if err := p.applyEnv(); err != nil {
		return nil, err
	}
	return p, nil
}

// applyEnv overrides profile fields from FIREMON_* env vars.
func (p *Profile) applyEnv() error {
	if v, ok := os.LookupEnv("FIREMON_HOST"); ok {
		p.Host = v
	}
	if v, ok := os.LookupEnv("FIREMON_USERNAME"); ok {
		p.Username = v
	}
	if v, ok := os.LookupEnv("FIREMON_PASSWORD"); ok {
		p.Password = v
	}
	if v, ok := os.LookupEnv("FIREMON_DOMAIN_ID"); ok {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FIREMON_DOMAIN_ID: %w", err)
		}
		p.DomainID = id
	}
	if v, ok := os.LookupEnv("FIREMON_TLS_VERIFY"); ok {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FIREMON_TLS_VERIFY: %w", err)
		}
		p.TLSVerify = &verify
	}
	return nil
}

// Validate checks that the profile can be used to connect.
func (p *Profile) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Host, validation.Required.Error("is required (set host or FIREMON_HOST)")),
		validation.Field(&p.Username, validation.Required.Error("is required (set username or FIREMON_USERNAME)")),
		validation.Field(&p.Password, validation.Required.Error("is required (set password or FIREMON_PASSWORD)")),
		validation.Field(&p.Timeout, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" {
				_, err := time.ParseDuration(s)
				return err
			}
			return nil
		})),
	)
}

// ClientConfig converts the profile to a client configuration.
func (p *Profile) ClientConfig(log hclog.Logger) (*firemon.Config, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}

	cfg := &firemon.Config{
		Host:             p.Host,
		Username:         p.Username,
		Password:         p.Password,
		DomainID:         p.DomainID,
		TLSVerify:        p.TLSVerify,
		CACertFile:       p.CACertFile,
		Proxy:            p.Proxy,
		MaxAttempts:      p.MaxAttempts,
		PageSize:         p.PageSize,
		Concurrency:      p.Concurrency,
		RateLimit:        p.RateLimit,
		ControlPanelPort: p.ControlPanelPort,
		ControlPanelURL:  p.ControlPanelURL,
		Logger:           log,
	}
	if p.Timeout != "" {
		// Validated above.
		cfg.Timeout, _ = time.ParseDuration(p.Timeout)
	}
	return cfg, nil
}

// InventoryConfig returns the inventory block, or the defaults.
func (c *Config) InventoryConfig() inventory.Config {
	if c.Inventory == nil {
		return inventory.Config{}
	}
	return *c.Inventory
}
