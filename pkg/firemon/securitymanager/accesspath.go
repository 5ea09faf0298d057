package securitymanager

import (
	"context"
	"fmt"
	"slices"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Path is one route a packet takes through a device. A path that splits
// from another records where: BranchParent is the event it left from and
// Ordinal the number of events shared with the parent.
type Path struct {
	Branch       any
	BranchParent any
	Ordinal      int
	PacketResult firemon.Record
	Events       []firemon.Record
}

// AccessPath is the result of an access path analysis.
type AccessPath struct {
	firemon.Record
	Paths []Path
}

// AccessPath runs an access path analysis for a device. request is the
// analysis body, for example sources, destinations and services.
func (sm *SecurityManager) AccessPath(ctx context.Context, deviceID int, request firemon.Record) (*AccessPath, error) {
	resp, err := sm.apaRequest(deviceID).Put(ctx, firemon.JSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("access path analysis failed for device %d: %w", deviceID, err)
	}
	result, err := resp.Record()
	if err != nil {
		return nil, err
	}
	return ParseAccessPath(result)
}

// GraphML runs an access path analysis and returns it as a GraphML
// document.
func (sm *SecurityManager) GraphML(ctx context.Context, deviceID int, request firemon.Record) ([]byte, error) {
	resp, err := sm.apaRequest(deviceID, firemon.WithHeader("Accept", "application/xml")).
		Put(ctx, firemon.JSONBody(request))
	if err != nil {
		return nil, fmt.Errorf("access path graph failed for device %d: %w", deviceID, err)
	}
	return resp.Body, nil
}

func (sm *SecurityManager) apaRequest(deviceID int, opts ...firemon.RequestOption) *firemon.Request {
	return sm.DomainRequest(fmt.Sprintf("device/%d/apa", deviceID), opts...)
}

// ParseAccessPath walks the event tree of an analysis result starting at
// startingEvent and returns one Path per leaf.
func ParseAccessPath(result firemon.Record) (*AccessPath, error) {
	start := result.Map("startingEvent")
	if start == nil {
		return nil, fmt.Errorf("access path result has no starting event")
	}
	ap := &AccessPath{Record: result}
	ap.walk(start, Path{Branch: start["id"], PacketResult: firemon.Record{}})
	return ap, nil
}

func (ap *AccessPath) walk(event firemon.Record, path Path) {
	path.Events = append(path.Events, event)

	next := event.Records("nextEvents")
	switch {
	case len(next) == 0:
		if pr := event.Map("ipPacketResult"); pr != nil {
			path.PacketResult = pr
		}
		ap.Paths = append(ap.Paths, path)

	case len(next) == 1:
		ap.walk(next[0], path)

	default:
		// Branches are walked last to first to follow policy match order.
		for i, evnt := range slices.Backward(next) {
			branch := path
			branch.Events = slices.Clone(path.Events)
			if i != len(next)-1 {
				branch.BranchParent = event["id"]
				branch.Branch = evnt["id"]
				branch.Ordinal = len(branch.Events)
			}
			ap.walk(evnt, branch)
		}
	}
}
