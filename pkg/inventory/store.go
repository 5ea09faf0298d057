package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fmapi/firemon-api-go/pkg/firemon/securitymanager"
)

// Store reads and writes the inventory.
type Store struct {
	db  *gorm.DB
	log hclog.Logger
}

// NewStore migrates the schema of db and returns a store on it.
func NewStore(db *gorm.DB, log hclog.Logger) (*Store, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if err := db.AutoMigrate(&Device{}, &Revision{}); err != nil {
		return nil, fmt.Errorf("failed to migrate inventory schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Open connects to the database described by cfg and returns a store.
func Open(cfg Config, log hclog.Logger) (*Store, error) {
	db, err := Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewStore(db, log)
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SyncResult counts what a sync wrote.
type SyncResult struct {
	Devices   int
	Revisions int
	Removed   int
}

// Sync copies every device of the working domain and its revisions into
// the store. Devices that no longer exist in the domain are removed. A
// failure on one device does not stop the others; all failures are
// returned together.
func (s *Store) Sync(ctx context.Context, sm *securitymanager.SecurityManager) (SyncResult, error) {
	var res SyncResult

	devices, err := sm.Devices().All(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list devices: %w", err)
	}

	now := time.Now().UTC()
	domainID := sm.Client().DomainID()
	seen := make([]int, 0, len(devices))
	var merr *multierror.Error

	for _, dev := range devices {
		seen = append(seen, dev.ID())
		n, err := s.syncDevice(ctx, dev, domainID, now)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("device %d (%s): %w", dev.ID(), dev.Name(), err))
			continue
		}
		res.Devices++
		res.Revisions += n
	}

	removed, err := s.prune(ctx, domainID, seen)
	if err != nil {
		merr = multierror.Append(merr, err)
	}
	res.Removed = removed

	s.log.Info("inventory synced",
		"domain", domainID,
		"devices", res.Devices,
		"revisions", res.Revisions,
		"removed", res.Removed,
	)
	return res, merr.ErrorOrNil()
}

func (s *Store) syncDevice(ctx context.Context, dev *securitymanager.Device, domainID int, now time.Time) (int, error) {
	sum, err := dev.Summary()
	if err != nil {
		return 0, fmt.Errorf("failed to decode device: %w", err)
	}
	revs, err := dev.Revisions().All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list revisions: %w", err)
	}

	row := Device{
		ID:               sum.ID,
		DomainID:         domainID,
		Name:             sum.Name,
		Description:      sum.Description,
		ManagementIP:     sum.ManagementIP,
		Vendor:           sum.Vendor,
		Product:          sum.Product,
		DevicePack:       sum.DevicePack.ArtifactID,
		LatestRevisionID: sum.LatestRevisionID,
		RetrievalState:   sum.LastRetrievalState,
		Data:             dev.Data(),
		SyncedAt:         now,
	}
	rows := make([]Revision, 0, len(revs))
	for _, rev := range revs {
		rs, err := rev.Summary()
		if err != nil {
			return 0, fmt.Errorf("failed to decode revision %d: %w", rev.ID(), err)
		}
		rows = append(rows, Revision{
			ID:            rs.ID,
			DeviceID:      sum.ID,
			Latest:        rs.Latest,
			State:         rs.RevisionState,
			CorrelationID: rs.CorrelationID,
			CreatedBy:     rs.CreatedBy,
			CreateDate:    timePtr(rs.CreateDate),
			CompleteDate:  timePtr(rs.CompleteDate),
			SyncedAt:      now,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Revisions").Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save device: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save revisions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("device synced", "id", sum.ID, "name", sum.Name, "revisions", len(rows))
	return len(rows), nil
}

// prune deletes the devices of domainID not in keep, with their revisions.
func (s *Store) prune(ctx context.Context, domainID int, keep []int) (int, error) {
	var stale []int
	q := s.db.WithContext(ctx).Model(&Device{}).Where("domain_id = ?", domainID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	if err := q.Pluck("id", &stale).Error; err != nil {
		return 0, fmt.Errorf("failed to find removed devices: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id IN ?", stale).Delete(&Revision{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Device{}, stale).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove devices: %w", err)
	}
	return len(stale), nil
}

// Devices returns the stored devices ordered by name. A domainID of 0
// returns every domain.
func (s *Store) Devices(ctx context.Context, domainID int) ([]Device, error) {
	var out []Device
	q := s.db.WithContext(ctx).Order("name, id")
	if domainID != 0 {
		q = q.Where("domain_id = ?", domainID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return out, nil
}

// Device returns the stored device with id and its revisions.
func (s *Store) Device(ctx context.Context, id int) (*Device, error) {
	var d Device
	err := s.db.WithContext(ctx).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB { return db.Order("id DESC") }).
		First(&d, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get device %d: %w", id, err)
	}
	return &d, nil
}

// Revisions returns the stored revisions of a device, newest first.
func (s *Store) Revisions(ctx context.Context, deviceID int) ([]Revision, error) {
	var out []Revision
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions of device %d: %w", deviceID, err)
	}
	return out, nil
}
