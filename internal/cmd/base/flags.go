package base

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// FlagSet wraps flag.FlagSet with help output in the style of the
// command help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a flag set that reports errors instead of exiting.
func NewFlagSet(name string) *FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	return &FlagSet{FlagSet: f}
}

// Help returns the usage of every flag.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&b, "\n      %s\n", fl.Usage)
	})
	return b.String()
}
