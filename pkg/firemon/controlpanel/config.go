package controlpanel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/iancoleman/strcase"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Config reads the appliance configuration, grouped in categories.
type Config struct {
	cp *ControlPanel
}

// Category is a configuration category. Stub categories hold no values.
type Category struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Stub  bool   `json:"stub"`
}

// Categories returns every configuration category.
func (c *Config) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.cp.Request("config/categories").Decode(ctx, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to list config categories: %w", firemon.ErrControlPanel, err)
	}
	return resp.Categories, nil
}

// Category returns the values of the category at path.
func (c *Config) Category(ctx context.Context, path string) (firemon.Record, error) {
	return c.cp.Request("config/" + url.PathEscape(path)).Record(ctx, nil)
}

// Sections maps a snake case name of every category with values to its
// path, for example "system_settings" to "/system/settings".
func (c *Config) Sections(ctx context.Context) (map[string]string, error) {
	cats, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(cats))
	for _, cat := range cats {
		if cat.Stub {
			continue
		}
		out[strcase.ToSnake(cat.Label)] = cat.Path
	}
	return out, nil
}

// Section returns the values of a category by its snake case name.
func (c *Config) Section(ctx context.Context, name string) (firemon.Record, error) {
	sections, err := c.Sections(ctx)
	if err != nil {
		return nil, err
	}
	path, ok := sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: config section %s", firemon.ErrNotFound, name)
	}
	return c.Category(ctx, path)
}
