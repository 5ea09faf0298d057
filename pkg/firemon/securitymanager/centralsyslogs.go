package securitymanager

import (
	"context"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// CentralSyslogs is the central syslog server endpoint. Only the name
// can be searched.
type CentralSyslogs struct {
	*firemon.Endpoint[*CentralSyslog]
	sm *SecurityManager
}

func newCentralSyslogs(sm *SecurityManager) *CentralSyslogs {
	return &CentralSyslogs{
		Endpoint: firemon.NewEndpoint(sm.Client(), sm.DomainURL()+"/central-syslog",
			func(o *firemon.Object) *CentralSyslog { return &CentralSyslog{Object: o} }),
		sm: sm,
	}
}

// Create adds a central syslog server. The working domain is filled in
// since the server does not default it.
func (cs *CentralSyslogs) Create(ctx context.Context, cfg firemon.Record) (*CentralSyslog, error) {
	data := cfg.Without()
	data["domainId"] = cs.sm.Client().DomainID()
	return cs.Endpoint.Create(ctx, data, nil)
}

// CentralSyslog is a central syslog server.
type CentralSyslog struct {
	*firemon.Object
}

// CentralSyslogConfigs is the central syslog configuration endpoint. The
// server has no search so filters run locally.
type CentralSyslogConfigs struct {
	*firemon.Endpoint[*CentralSyslogConfig]
}

func newCentralSyslogConfigs(sm *SecurityManager) *CentralSyslogConfigs {
	return &CentralSyslogConfigs{
		Endpoint: firemon.NewEndpoint(sm.Client(), sm.DomainURL()+"/central-syslog-config",
			func(o *firemon.Object) *CentralSyslogConfig { return &CentralSyslogConfig{Object: o} },
			firemon.EndpointStyle(firemon.FilterLocal)),
	}
}

// CentralSyslogConfig is a parsing configuration for central syslog.
type CentralSyslogConfig struct {
	*firemon.Object
}
