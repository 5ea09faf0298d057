package base

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Table is the tabular form of a command result.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a row. Values are printed with fmt.Sprint.
func (t *Table) Append(values ...any) {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	t.Rows = append(t.Rows, row)
}

// RecordTable lists the keys and values of rec, sorted by key. Nested
// values are shown as JSON.
func RecordTable(rec firemon.Record) *Table {
	t := &Table{Header: []string{"FIELD", "VALUE"}}
	keys := rec.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		switch v := rec[k].(type) {
		case map[string]any, []any:
			b, _ := json.Marshal(v)
			t.Append(k, string(b))
		case nil:
			t.Append(k, "")
		default:
			t.Append(k, rec.Str(k))
		}
	}
	return t
}

// Output writes v in the selected format. table is used for the table
// format; when it is nil v is written as YAML.
func (c *Command) Output(v any, table *Table) error {
	switch c.flagFormat {
	case FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		c.UI.Output(string(b))
	case FormatYAML:
		return c.outputYAML(v)
	case FormatTable, "":
		if table == nil {
			return c.outputYAML(v)
		}
		c.UI.Output(table.String())
	default:
		return fmt.Errorf("unknown output format: %s", c.flagFormat)
	}
	return nil
}

func (c *Command) outputYAML(v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	c.UI.Output(strings.TrimRight(string(b), "\n"))
	return nil
}

func (t *Table) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(w, strings.Join(t.Header, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
