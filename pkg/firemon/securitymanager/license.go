package securitymanager

import (
	"context"
	"fmt"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// License is the license of the working domain.
type License struct {
	sm *SecurityManager
}

// Get returns the installed license.
func (l *License) Get(ctx context.Context) (firemon.Record, error) {
	return l.sm.DomainRequest("license").Record(ctx, nil)
}

// Load installs a license file.
func (l *License) Load(ctx context.Context, lic []byte) error {
	_, err := l.sm.DomainRequest("license").Post(ctx, firemon.MultipartBody(nil, firemon.File{
		Field:       "file",
		Name:        "firemon.lic",
		Content:     lic,
		ContentType: "application/octet-stream",
	}))
	if err != nil {
		return fmt.Errorf("%w: %w", firemon.ErrLicense, err)
	}
	l.sm.log.Info("loaded license", "bytes", len(lic))
	return nil
}
