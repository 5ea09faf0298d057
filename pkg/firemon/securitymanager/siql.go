package securitymanager

import (
	"context"
	"fmt"
	"slices"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// SiqlKinds are the object types SIQL can search.
var SiqlKinds = []string{
	"appobj",
	"assessment",
	"asset",
	"control",
	"device",
	"devicegroup",
	"interface",
	"networkobj",
	"natrule",
	"policy",
	"profileobj",
	"scheduleobj",
	"secrule",
	"serviceobj",
	"userobj",
	"urlmatcher",
}

// Query runs a SIQL statement against the objects of kind, for example
//
//	sm.Query(ctx, "secrule", "device{id=91} | fields(usage(), objUsage())")
func (sm *SecurityManager) Query(ctx context.Context, kind, q string) ([]firemon.Record, error) {
	if !slices.Contains(SiqlKinds, kind) {
		return nil, fmt.Errorf("%w: unknown siql kind %q", firemon.ErrInvalidArgument, kind)
	}
	return sm.Siql(ctx, kind, q)
}
