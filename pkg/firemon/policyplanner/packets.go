package policyplanner

import (
	"context"
	"fmt"
	"sort"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Packets is the packet (ticket) endpoint of a workflow. Packets are
// found with SIQL and then loaded one by one.
type Packets struct {
	*firemon.Endpoint[*Packet]
	pp         *PolicyPlanner
	workflowID int
}

func newPackets(pp *PolicyPlanner, workflowID int) *Packets {
	p := &Packets{pp: pp, workflowID: workflowID}
	p.Endpoint = firemon.NewEndpoint(pp.Client(),
		fmt.Sprintf("%s/workflow/%d/packet", pp.DomainURL(), workflowID),
		func(o *firemon.Object) *Packet { return &Packet{Object: o, pp: pp} })
	return p
}

// All returns every packet of the workflow.
func (p *Packets) All(ctx context.Context) ([]*Packet, error) {
	return p.Filter(ctx, fmt.Sprintf("workflow=%d", p.workflowID))
}

// Filter returns the packets matching a SIQL ticket condition, for
// example "status=OPEN".
func (p *Packets) Filter(ctx context.Context, siql string) ([]*Packet, error) {
	if siql == "" {
		return nil, fmt.Errorf("%w: empty ticket query, use All instead", firemon.ErrInvalidArgument)
	}
	tickets, err := p.pp.Tickets(ctx, "ticket{"+siql+"}")
	if err != nil {
		return nil, err
	}
	out := make([]*Packet, 0, len(tickets))
	for _, t := range tickets {
		pkt, err := p.Get(ctx, t.ID())
		if err != nil {
			return nil, err
		}
		out = append(out, pkt)
	}
	return out, nil
}

// Create starts a new packet. A nil cfg creates an empty packet.
func (p *Packets) Create(ctx context.Context, cfg firemon.Record) (*Packet, error) {
	if cfg == nil {
		cfg = firemon.Record{}
	}
	return p.Endpoint.Create(ctx, cfg, nil)
}

// LastModified returns the most recently changed packet.
func (p *Packets) LastModified(ctx context.Context) (*Packet, error) {
	all, err := p.All(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]firemon.Record, len(all))
	for i, pkt := range all {
		recs[i] = pkt.Data()
	}
	i, ok := lastModified(recs)
	if !ok {
		return nil, fmt.Errorf("%w: workflow %d has no packets", firemon.ErrNotFound, p.workflowID)
	}
	return all[i], nil
}

// Packet is a ticket moving through a workflow. Packets are read only.
type Packet struct {
	*firemon.Object
	pp *PolicyPlanner
}

// WorkflowVersionID returns the workflow version the packet runs under.
func (p *Packet) WorkflowVersionID() int {
	return p.Data().Map("workflowVersion").ID()
}

// Tasks returns the tasks of the packet ordered by id.
func (p *Packet) Tasks() []*PacketTask {
	recs := p.Data().Records("workflowPacketTasks")
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].ID() < recs[j].ID() })
	out := make([]*PacketTask, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &PacketTask{Record: rec, packet: p})
	}
	return out
}

// Task returns the task with id.
func (p *Packet) Task(id int) (*PacketTask, error) {
	var matches []*PacketTask
	for _, t := range p.Tasks() {
		if t.ID() == id {
			matches = append(matches, t)
		}
	}
	return firemon.ExactlyOne(matches, fmt.Sprintf("packet task %d", id))
}

// LastModifiedTask returns the most recently changed task.
func (p *Packet) LastModifiedTask() (*PacketTask, error) {
	tasks := p.Tasks()
	recs := make([]firemon.Record, len(tasks))
	for i, t := range tasks {
		recs[i] = t.Record
	}
	i, ok := lastModified(recs)
	if !ok {
		return nil, fmt.Errorf("%w: packet %d has no tasks", firemon.ErrNotFound, p.ID())
	}
	return tasks[i], nil
}

// PacketTask is the state of one workflow task for a packet.
type PacketTask struct {
	firemon.Record
	packet *Packet
}

// Data returns the task fields.
func (t *PacketTask) Data() firemon.Record { return t.Record }

func (t *PacketTask) workflowTask() firemon.Record { return t.Map("workflowTask") }

func (t *PacketTask) workflowVersionID() int {
	return t.workflowTask().Map("workflowVersion").ID()
}

// URL returns the task URL.
func (t *PacketTask) URL() string {
	return fmt.Sprintf("%s/workflow/%d/task/%d/packet/%d/packet-task/%d",
		t.packet.pp.DomainURL(), t.workflowVersionID(), t.workflowTask().ID(), t.packet.ID(), t.ID())
}

// Requirement adds an access requirement to the packet at this task.
func (t *PacketTask) Requirement(ctx context.Context, req Requirement) (any, error) {
	base := fmt.Sprintf("%s/policyplan/domain/%d/workflow/%d",
		t.packet.pp.URL(), t.packet.Client().DomainID(), t.workflowVersionID())
	key := fmt.Sprintf("task/%d/packet/%d/requirement", t.workflowTask().ID(), t.packet.ID())
	resp, err := t.packet.Client().NewRequest(base, firemon.WithKey(key)).Post(ctx, firemon.JSONBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to add requirement to packet %d: %w", t.packet.ID(), err)
	}
	return resp.Value()
}

// Assign gives the task to a user.
func (t *PacketTask) Assign(ctx context.Context, userID int) error {
	_, err := t.request("assign").Put(ctx, firemon.TextBody(fmt.Sprint(userID)))
	return err
}

// Unassign returns the task to the pool.
func (t *PacketTask) Unassign(ctx context.Context) error {
	_, err := t.request("unassign").Put(ctx, firemon.TextBody(""))
	return err
}

// Complete submits the task.
func (t *PacketTask) Complete(ctx context.Context) error {
	_, err := t.request("complete", firemon.WithParam("button", "submit")).Put(ctx, nil)
	return err
}

func (t *PacketTask) request(key string, opts ...firemon.RequestOption) *firemon.Request {
	return t.packet.Client().NewRequest(t.URL(), append([]firemon.RequestOption{firemon.WithKey(key)}, opts...)...)
}

// Requirement is an access requirement added to a packet.
type Requirement struct {
	RequirementType string               `json:"requirementType,omitempty"`
	ChildKey        string               `json:"childKey,omitempty"`
	Action          string               `json:"action,omitempty"`
	Sources         []string             `json:"sources,omitempty"`
	Destinations    []string             `json:"destinations,omitempty"`
	Services        []string             `json:"services,omitempty"`
	Apps            []string             `json:"app,omitempty"`
	Users           []string             `json:"users,omitempty"`
	URLMatchers     []string             `json:"urlMatchers,omitempty"`
	Profiles        []string             `json:"profiles,omitempty"`
	Variables       RequirementVariables `json:"variables"`
}

// RequirementVariables are the optional settings of a requirement. Dates
// use the layout "2006-01-02T15:04:05-0700".
type RequirementVariables struct {
	DeviceGroupID int    `json:"deviceGroupId,omitempty"`
	Expiration    string `json:"expiration,omitempty"`
	Review        string `json:"review,omitempty"`
}
