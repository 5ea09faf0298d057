package securitymanager

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Revisions lists configuration revisions. The server cannot look up a
// single revision by id so lookups and filters run locally.
type Revisions struct {
	*firemon.Endpoint[*Revision]
	sm       *SecurityManager
	deviceID int
}

func newRevisions(sm *SecurityManager, deviceID int) *Revisions {
	r := &Revisions{sm: sm, deviceID: deviceID}
	u := sm.DomainURL() + "/rev"
	if deviceID != 0 {
		u = fmt.Sprintf("%s/device/%d/rev", sm.DomainURL(), deviceID)
	}
	r.Endpoint = firemon.NewEndpoint(sm.Client(), u,
		func(o *firemon.Object) *Revision { return &Revision{Object: o, sm: sm} },
		firemon.EndpointStyle(firemon.FilterLocal),
		firemon.EndpointParams(url.Values{"sort": {"id"}}),
	)
	return r
}

// DeviceID returns the device the endpoint is scoped to, or 0.
func (r *Revisions) DeviceID() int { return r.deviceID }

// Revision returns a handle to revision id without fetching it. The
// handle only carries the id, which is enough for Export and
// NormalizedData.
func (r *Revisions) Revision(id int) *Revision {
	rec := firemon.Record{"id": id}
	if r.deviceID != 0 {
		rec["deviceId"] = r.deviceID
	}
	return r.Wrap(rec)
}

// Latest returns the latest revision of every device in scope.
func (r *Revisions) Latest(ctx context.Context) ([]*Revision, error) {
	return r.Filter(ctx, firemon.Filter{"latest": true})
}

// Revision is a device configuration revision.
type Revision struct {
	*firemon.Object
	sm *SecurityManager
}

// RevisionSummary is the typed view of a revision.
type RevisionSummary struct {
	ID             int       `json:"id"`
	DeviceID       int       `json:"deviceId"`
	DeviceName     string    `json:"deviceName"`
	DeviceType     string    `json:"deviceType"`
	CorrelationID  string    `json:"correlationId"`
	Latest         bool      `json:"latest"`
	RevisionState  string    `json:"revisionState"`
	CreatedBy      string    `json:"createdBy"`
	CreateDate     time.Time `json:"-"`
	CompleteDate   time.Time `json:"-"`
	NormalizeState string    `json:"normalizeState"`
}

// DeviceID returns the device the revision belongs to.
func (r *Revision) DeviceID() int {
	if id := r.Data().Int("deviceId"); id != 0 {
		return id
	}
	return r.Data().Int("device_id")
}

// Summary decodes the commonly used fields. Dates the server formats in
// an unknown layout are left zero.
func (r *Revision) Summary() (RevisionSummary, error) {
	var s RevisionSummary
	if err := r.Data().Decode(&s); err != nil {
		return s, fmt.Errorf("failed to decode revision %d: %w", r.ID(), err)
	}
	s.DeviceID = r.DeviceID()
	s.CreateDate = parseDate(r.Data().Str("createDate"))
	s.CompleteDate = parseDate(r.Data().Str("completeDate"))
	return s, nil
}

// Changelog returns every change recorded for the revision.
func (r *Revision) Changelog(ctx context.Context) ([]firemon.Record, error) {
	return r.deviceRequest("changelog").List(ctx, nil)
}

// Export downloads the revision as a zip file. With configOnly only the
// configuration files are included.
func (r *Revision) Export(ctx context.Context, configOnly bool) ([]byte, error) {
	key := fmt.Sprintf("rev/%d/export", r.ID())
	if configOnly {
		key += "/config"
	}
	data, err := r.sm.Request(key).Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export revision %d: %w", r.ID(), err)
	}
	return data, nil
}

// Delete removes the revision.
func (r *Revision) Delete(ctx context.Context) error {
	if err := r.deviceRequest("").Delete(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete revision %d: %w", firemon.ErrDevice, r.ID(), err)
	}
	return nil
}

// NormalizedData returns the fully parsed revision.
func (r *Revision) NormalizedData(ctx context.Context) (*NormalizedData, error) {
	rec, err := r.sm.Request(fmt.Sprintf("rev/%d/nd/all", r.ID())).Record(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get normalized data of revision %d: %w", r.ID(), err)
	}
	return &NormalizedData{Record: rec}, nil
}

func (r *Revision) deviceRequest(key string, opts ...firemon.RequestOption) *firemon.Request {
	base := fmt.Sprintf("%s/device/%d/rev/%d", r.sm.DomainURL(), r.DeviceID(), r.ID())
	if key != "" {
		opts = append([]firemon.RequestOption{firemon.WithKey(key)}, opts...)
	}
	return r.Client().NewRequest(base, opts...)
}

func (r *Revision) String() string { return strconv.Itoa(r.ID()) }

// NormalizedData is the parsed form of a revision: policies, rules,
// network objects, routes and so on, keyed as the server returns them.
type NormalizedData struct {
	firemon.Record
}

// RevisionID returns the revision the data was parsed from.
func (n *NormalizedData) RevisionID() int { return n.Int("revisionId") }

// Section returns the records stored under key, for example
// "securityRules" or "networkObjects".
func (n *NormalizedData) Section(key string) []firemon.Record { return n.Records(key) }

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
