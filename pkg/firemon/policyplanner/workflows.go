package policyplanner

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

var workflowReadOnly = []string{
	"createdBy",
	"createdDate",
	"lastModifiedBy",
	"lastModifiedDate",
}

// Workflows is the workflow endpoint.
type Workflows struct {
	*firemon.Endpoint[*Workflow]
	pp *PolicyPlanner
}

func newWorkflows(pp *PolicyPlanner) *Workflows {
	w := &Workflows{pp: pp}
	w.Endpoint = firemon.NewEndpoint(pp.Client(), pp.DomainURL()+"/workflow",
		func(o *firemon.Object) *Workflow {
			o.SetReadOnly(workflowReadOnly...)
			return &Workflow{Object: o, pp: pp}
		})
	return w
}

// Create adds an access request workflow. A nil cfg creates one with
// default settings.
func (w *Workflows) Create(ctx context.Context, name string, cfg firemon.Record) (*Workflow, error) {
	if cfg == nil {
		cfg = firemon.Record{"name": name, "createDateSortDir": false}
	}
	resp, err := w.Client().NewRequest(w.URL(),
		firemon.WithKey("plugin/com.fm.wf.pp/access-request"),
		firemon.WithFilters(url.Values{"name": {name}}),
	).Post(ctx, firemon.JSONBody(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow %s: %w", name, err)
	}
	rec, err := resp.Record()
	if err != nil {
		return nil, err
	}
	w.pp.log.Info("created workflow", "id", rec.ID(), "name", name)
	return w.Get(ctx, rec.ID())
}

// Default returns the default workflow, or nil when there is none.
func (w *Workflows) Default(ctx context.Context) (*Workflow, error) {
	rec, err := w.Client().NewRequest(w.URL(), firemon.WithKey("default")).Record(ctx, nil)
	if firemon.IsRequestError(err) {
		w.pp.log.Debug("no default workflow", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w.Wrap(rec), nil
}

// Workflow is a Policy Planner workflow.
type Workflow struct {
	*firemon.Object
	pp *PolicyPlanner
}

// Save sends local changes to the workflow config.
func (w *Workflow) Save(ctx context.Context) error {
	if len(w.Diff()) == 0 {
		return nil
	}
	data := w.Serialize()
	data["id"] = w.ID()
	if _, err := w.Request("config").Put(ctx, firemon.JSONBody(data)); err != nil {
		return fmt.Errorf("failed to save workflow %d: %w", w.ID(), err)
	}
	return w.Reload(ctx)
}

// Update applies data to the workflow and saves it.
func (w *Workflow) Update(ctx context.Context, data firemon.Record) error {
	for k, v := range data {
		w.Set(k, v)
	}
	return w.Save(ctx)
}

// Enable activates the workflow.
func (w *Workflow) Enable(ctx context.Context) error {
	_, err := w.Request("enable").Put(ctx, nil)
	return err
}

// Disable deactivates the workflow.
func (w *Workflow) Disable(ctx context.Context) error {
	_, err := w.Request("disable").Put(ctx, nil)
	return err
}

// StartProperties returns the form a new packet starts with.
func (w *Workflow) StartProperties(ctx context.Context) (any, error) {
	return w.Request("start-properties").Get(ctx, url.Values{})
}

// Tasks returns the task definitions of the workflow.
func (w *Workflow) Tasks(ctx context.Context) (any, error) {
	return w.Request("tasks").Get(ctx, url.Values{})
}

// Packets returns the packets of the workflow.
func (w *Workflow) Packets() *Packets {
	return newPackets(w.pp, w.ID())
}
