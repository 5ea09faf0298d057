// Package inventory keeps a local snapshot of Security Manager devices and
// their revisions in a SQL database.
package inventory

import (
	"time"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Device is a synced Security Manager device. ID is the FireMon device id.
type Device struct {
	ID               int    `gorm:"primaryKey;autoIncrement:false"`
	DomainID         int    `gorm:"index"`
	Name             string `gorm:"index"`
	Description      string
	ManagementIP     string
	Vendor           string
	Product          string
	DevicePack       string
	LatestRevisionID int
	RetrievalState   string
	Data             firemon.Record `gorm:"serializer:json"`
	SyncedAt         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Revisions []Revision `gorm:"constraint:OnDelete:CASCADE"`
}

// Revision is a synced device revision. ID is the FireMon revision id.
type Revision struct {
	ID            int `gorm:"primaryKey;autoIncrement:false"`
	DeviceID      int `gorm:"index"`
	Latest        bool
	State         string
	CorrelationID string
	CreatedBy     string
	CreateDate    *time.Time
	CompleteDate  *time.Time
	SyncedAt      time.Time
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
