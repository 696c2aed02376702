package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SQLRecord is one record of one collection. Position preserves insertion order.
type SQLRecord struct {
	Collection string         `gorm:"primaryKey;type:varchar(64)"`
	Position   int            `gorm:"primaryKey;autoIncrement:false"`
	RecordID   string         `gorm:"index;type:varchar(128);not null"`
	Body       datatypes.JSON `gorm:"not null"`
}

func (SQLRecord) TableName() string {
	return "store_records"
}

// SQLPersister stores one row per record and replaces the collection's rows
// in a single transaction on every save.
type SQLPersister struct {
	db         *gorm.DB
	collection string
	idField    string
}

var _ Persister = (*SQLPersister)(nil)

// NewSQLPersister expects the store_records table to exist (see AutoMigrate in
// internal/database). idField names the JSON field copied into record_id.
func NewSQLPersister(db *gorm.DB, collection, idField string) *SQLPersister {
	return &SQLPersister{db: db, collection: collection, idField: idField}
}

func (p *SQLPersister) Load() ([]json.RawMessage, error) {
	var rows []SQLRecord
	if err := p.db.Where("collection = ?", p.collection).Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", p.collection, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoSnapshot
	}

	records := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		records = append(records, json.RawMessage(row.Body))
	}
	return records, nil
}

func (p *SQLPersister) Save(records []json.RawMessage) error {
	rows := make([]SQLRecord, 0, len(records))
	for i, raw := range records {
		var id map[string]json.RawMessage
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("decode %s record %d: %w", p.collection, i, err)
		}
		var recordID string
		_ = json.Unmarshal(id[p.idField], &recordID)

		rows = append(rows, SQLRecord{
			Collection: p.collection,
			Position:   i,
			RecordID:   recordID,
			Body:       datatypes.JSON(raw),
		})
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", p.collection).Delete(&SQLRecord{}).Error; err != nil {
			return fmt.Errorf("clear %s: %w", p.collection, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("insert %s: %w", p.collection, err)
		}
		return nil
	})
}

func (p *SQLPersister) Close() error {
	return nil
}
