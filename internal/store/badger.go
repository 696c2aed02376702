package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "snapshot/"

// BadgerPersister stores each collection's JSON snapshot under one key of an
// embedded badger database. The stored bytes are identical to the file
// backend's output. The database is shared between collections and closed by
// its owner, not by the persister.
type BadgerPersister struct {
	db  *badger.DB
	key []byte
}

var _ Persister = (*BadgerPersister)(nil)

func NewBadgerPersister(db *badger.DB, collection string) *BadgerPersister {
	return &BadgerPersister{db: db, key: []byte(badgerKeyPrefix + collection)}
}

func (p *BadgerPersister) Load() ([]json.RawMessage, error) {
	var data []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(p.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", p.key, err)
	}
	return decodeSnapshot(data)
}

func (p *BadgerPersister) Save(records []json.RawMessage) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return err
	}
	if err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(p.key, data)
	}); err != nil {
		return fmt.Errorf("badger set %s: %w", p.key, err)
	}
	return nil
}

func (p *BadgerPersister) Close() error {
	return nil
}
