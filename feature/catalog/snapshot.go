package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/database"
	"pattern-catalog/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSnapshotDisabled is returned when no database is configured.
var ErrSnapshotDisabled = errors.New("snapshot store disabled")

const snapshotBatchSize = 500

// SnapshotEntry is one persisted catalog entry.
type SnapshotEntry struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"-"`
	Catalog     string    `gorm:"column:catalog;size:191;uniqueIndex:idx_catalog_entry" json:"catalog"`
	EntryKey    string    `gorm:"column:entry_key;size:191;uniqueIndex:idx_catalog_entry" json:"key"`
	Path        string    `gorm:"column:path;type:text" json:"path"`
	FieldValues string    `gorm:"column:field_values;type:text" json:"values"`
	RefreshedAt time.Time `gorm:"column:refreshed_at" json:"refreshed_at"`
}

// TableName overrides the table name.
func (SnapshotEntry) TableName() string {
	return "catalog_entries"
}

var snapshotColumns = []string{"catalog", "entry_key", "path", "field_values", "refreshed_at"}

// SnapshotStore mirrors every full catalog listing into the database.
type SnapshotStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSnapshotStore creates a new snapshot store.
func NewSnapshotStore(db *gorm.DB, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger, now: time.Now}
}

// Migrate creates the catalog_entries table and verifies its columns.
func (s *SnapshotStore) Migrate() error {
	if err := s.db.AutoMigrate(&SnapshotEntry{}); err != nil {
		return fmt.Errorf("failed to migrate catalog_entries: %w", err)
	}
	missing, err := database.MissingColumns(s.db, SnapshotEntry{}.TableName(), snapshotColumns...)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("catalog_entries is missing columns %v", missing)
	}
	return nil
}

// Save replaces the rows of name with entries in a single transaction and
// reports how the new listing differs from the rows it replaced.
func (s *SnapshotStore) Save(ctx context.Context, name string, entries []catalog.Entry) (reconcile.Report, error) {
	now := s.now()
	rows := make([]SnapshotEntry, 0, len(entries))
	for _, e := range entries {
		values, err := json.Marshal(e.Values)
		if err != nil {
			return reconcile.Report{}, fmt.Errorf("failed to encode values of %s: %w", e.Key, err)
		}
		rows = append(rows, SnapshotEntry{
			Catalog:     name,
			EntryKey:    e.Key,
			Path:        e.Path,
			FieldValues: string(values),
			RefreshedAt: now,
		})
	}

	var report reconcile.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous []SnapshotEntry
		if err := tx.Where("catalog = ?", name).Order("id").Find(&previous).Error; err != nil {
			return fmt.Errorf("failed to read snapshot of %s: %w", name, err)
		}
		report = reconcile.Reconcile(reconcile.Index(rowItems(rows)), reconcile.Index(rowItems(previous)))

		if err := tx.Where("catalog = ?", name).Delete(&SnapshotEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear snapshot of %s: %w", name, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, snapshotBatchSize).Error; err != nil {
			return fmt.Errorf("failed to write snapshot of %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return reconcile.Report{}, err
	}
	return report, nil
}

// Load returns the persisted rows of name in insertion order.
func (s *SnapshotStore) Load(ctx context.Context, name string) ([]SnapshotEntry, error) {
	var rows []SnapshotEntry
	if err := s.db.WithContext(ctx).Where("catalog = ?", name).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot of %s: %w", name, err)
	}
	return rows, nil
}

// Hook returns a refresh hook saving every listing of name. Failures are
// logged and never reach the catalog reader.
func (s *SnapshotStore) Hook(name string) catalog.RefreshFunc {
	return func(ctx context.Context, entries []catalog.Entry) {
		report, err := s.Save(ctx, name, entries)
		if err != nil {
			s.logger.Warn("Snapshot save failed", zap.String("catalog", name), zap.Error(err))
			return
		}
		if !report.Summary.Clean() {
			s.logger.Info("Catalog changed since last snapshot",
				zap.String("catalog", name),
				zap.Int("added", report.Summary.Added),
				zap.Int("removed", report.Summary.Removed),
				zap.Int("changed", report.Summary.Changed))
		}
		s.logger.Debug("Snapshot saved", zap.String("catalog", name), zap.Int("entries", len(entries)))
	}
}

func rowItems(rows []SnapshotEntry) []reconcile.Item {
	items := make([]reconcile.Item, len(rows))
	for i, r := range rows {
		items[i] = reconcile.Item{Key: r.EntryKey, Path: r.Path, Values: r.FieldValues}
	}
	return items
}

func entryItems(entries []catalog.Entry) ([]reconcile.Item, error) {
	items := make([]reconcile.Item, len(entries))
	for i, e := range entries {
		values, err := json.Marshal(e.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to encode values of %s: %w", e.Key, err)
		}
		items[i] = reconcile.Item{Key: e.Key, Path: e.Path, Values: string(values)}
	}
	return items, nil
}
