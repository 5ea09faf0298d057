// Package policyplanner wraps the FireMon Policy Planner API: workflows,
// the packets (tickets) moving through them and their tasks.
package policyplanner

import (
	"context"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-hclog"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// PolicyPlanner is the Policy Planner application.
type PolicyPlanner struct {
	*firemon.App
	log hclog.Logger
}

// New returns the Policy Planner application for c.
func New(c *firemon.Client) *PolicyPlanner {
	return &PolicyPlanner{
		App: firemon.NewApp(c, firemon.AppPolicyPlanner),
		log: c.Logger().Named("policyplanner"),
	}
}

// Workflows returns the workflows of the working domain.
func (pp *PolicyPlanner) Workflows() *Workflows {
	return newWorkflows(pp)
}

// Packets returns the packets of a workflow.
func (pp *PolicyPlanner) Packets(workflowID int) *Packets {
	return newPackets(pp, workflowID)
}

// Tickets runs a SIQL ticket query, for example "ticket{workflow=3}".
func (pp *PolicyPlanner) Tickets(ctx context.Context, q string) ([]firemon.Record, error) {
	return pp.Siql(ctx, "ticket", q)
}

// lastModified returns the record with the newest lastModifiedDate.
// Records without a parseable date sort first.
func lastModified(recs []firemon.Record) (int, bool) {
	best, found := -1, false
	var newest time.Time
	for i, rec := range recs {
		t, err := dateparse.ParseAny(rec.Str("lastModifiedDate"))
		if err != nil {
			if !found {
				best = i
			}
			continue
		}
		if !found || t.After(newest) {
			best, newest, found = i, t, true
		}
	}
	return best, best >= 0
}
