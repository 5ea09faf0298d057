package siql

import (
	"fmt"
	"strings"

	"github.com/fmapi/firemon-api-go/internal/cmd/base"
	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

type Command struct {
	*base.Command

	flagColumns string
}

func (c *Command) Synopsis() string {
	return "Run a SIQL query"
}

func (c *Command) Help() string {
	return `Usage: fmctl siql [options] <kind> <query>

  Runs a Security Intelligence Query Language query against Security
  Manager. Kinds: ` + strings.Join(securitymanager.SiqlKinds, ", ") + `

  Example:
    fmctl siql secrule "domain{id=1} | device{name='edge'} | fields(tfc)"` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := c.Command.Flags("siql")
	f.StringVar(
		&c.flagColumns, "columns", "id,name",
		"Comma separated fields shown in table output",
	)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 2 {
		c.UI.Error("expected a kind and a query")
		return 1
	}
	ctx, cancel := c.Context()
	defer cancel()

	client, err := c.Client(ctx)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	recs, err := securitymanager.New(client).Query(ctx, f.Arg(0), f.Arg(1))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error running query: %v", err))
		return 1
	}

	cols := strings.Split(c.flagColumns, ",")
	table := &base.Table{Header: make([]string, len(cols))}
	for i, col := range cols {
		table.Header[i] = strings.ToUpper(strings.TrimSpace(col))
	}
	for _, rec := range recs {
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = rec.Str(strings.TrimSpace(col))
		}
		table.Append(row...)
	}
	if err := c.Output(recs, table); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
