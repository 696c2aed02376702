package database

import (
	"fmt"

	"github.com/thanghienlanh/web33/config"
	"github.com/thanghienlanh/web33/internal/store"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"

	ModelsCollection       = "models"
	TransactionsCollection = "transactions"
)

// Persisters bundles the snapshot backends of both record collections
// together with whatever resource has to be released on shutdown.
type Persisters struct {
	Models       store.Persister
	Transactions store.Persister

	closeFn func() error
}

func (p *Persisters) Close() error {
	if p.closeFn == nil {
		return nil
	}
	return p.closeFn()
}

// OpenPersisters selects the storage backend named by STORE_BACKEND.
func OpenPersisters(cfg *config.Config) (*Persisters, error) {
	logger.Log.Info("opening record store", zap.String("backend", cfg.StoreBackend))

	switch cfg.StoreBackend {
	case BackendFile, "":
		return &Persisters{
			Models:       store.NewFilePersister(cfg.ModelsFile()),
			Transactions: store.NewFilePersister(cfg.TransactionsFile()),
		}, nil

	case BackendBadger:
		db, err := OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, err
		}
		return &Persisters{
			Models:       store.NewBadgerPersister(db, ModelsCollection),
			Transactions: store.NewBadgerPersister(db, TransactionsCollection),
			closeFn:      db.Close,
		}, nil

	case BackendSQLite:
		db, err := Connect(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Persisters{
			Models:       store.NewSQLPersister(db, ModelsCollection, "modelId"),
			Transactions: store.NewSQLPersister(db, TransactionsCollection, "txId"),
			closeFn: func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want file, badger or sqlite)", cfg.StoreBackend)
	}
}
