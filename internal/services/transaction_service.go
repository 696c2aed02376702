package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/thanghienlanh/web33/internal/metrics"
	"github.com/thanghienlanh/web33/internal/models"
	"github.com/thanghienlanh/web33/internal/store"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

const transactionsCollection = "transactions"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidStatus       = errors.New("invalid transaction status")
)

// TransactionFilter defines criteria for listing transactions. Address takes
// precedence over ModelID. Only the unfiltered base set is sorted newest
// first; address and model lists keep insertion order.
type TransactionFilter struct {
	Address string
	ModelID string
	Status  models.TransactionStatus
	Chain   models.Chain
	Network models.Network
}

type TransactionService struct {
	records *store.Store[models.TransactionRecord]
	now     func() time.Time
}

func NewTransactionService(persister store.Persister) *TransactionService {
	return &TransactionService{
		records: store.New(transactionsCollection, func(t models.TransactionRecord) string { return t.TxID }, persister),
		now:     time.Now,
	}
}

func (s *TransactionService) Load() error {
	if err := s.records.Load(); err != nil {
		return err
	}
	metrics.SetStoreRecords(transactionsCollection, s.records.Len())
	logger.Log.Info("Loaded transactions from storage", zap.Int("count", s.records.Len()))
	return nil
}

func (s *TransactionService) CreateTransaction(params models.CreateTransactionParams) (models.TransactionRecord, error) {
	now := s.now()
	network := params.Network
	if network == "" {
		network = models.DefaultNetwork
	}

	tx := models.TransactionRecord{
		TxID:      store.NewID("tx", now),
		TxHash:    params.TxHash,
		Chain:     params.Chain,
		Network:   network,
		Type:      params.Type,
		Status:    models.TransactionStatusPending,
		From:      params.From,
		To:        params.To,
		ModelID:   params.ModelID,
		ObjectID:  params.ObjectID,
		TokenID:   params.TokenID,
		Timestamp: now.UnixMilli(),
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}

	if err := s.records.Insert(tx); err != nil {
		return models.TransactionRecord{}, err
	}
	metrics.SetStoreRecords(transactionsCollection, s.records.Len())

	logger.Log.Info("Transaction recorded",
		zap.String("tx_id", tx.TxID),
		zap.String("tx_hash", tx.TxHash),
		zap.String("type", string(tx.Type)),
	)
	return tx, nil
}

// UpdateTransactionStatus overwrites status, error and blockNumber together;
// an empty errMsg or nil blockNumber clears the stored value.
func (s *TransactionService) UpdateTransactionStatus(txID string, status models.TransactionStatus, errMsg string, blockNumber *uint64) (models.TransactionRecord, error) {
	if !status.IsValid() {
		return models.TransactionRecord{}, ErrInvalidStatus
	}

	updated, found, err := s.records.Update(txID, func(current models.TransactionRecord) (models.TransactionRecord, error) {
		current.Status = status
		current.Error = errMsg
		current.BlockNumber = blockNumber
		current.UpdatedAt = s.now().UnixMilli()
		return current, nil
	})
	if !found {
		return models.TransactionRecord{}, ErrTransactionNotFound
	}
	if err != nil {
		return models.TransactionRecord{}, err
	}

	logger.Log.Info("Transaction status updated",
		zap.String("tx_id", txID),
		zap.String("status", string(status)),
	)
	return updated, nil
}

func (s *TransactionService) GetTransactionByID(txID string) (models.TransactionRecord, error) {
	tx, ok := s.records.Get(txID)
	if !ok {
		return models.TransactionRecord{}, ErrTransactionNotFound
	}
	return tx, nil
}

// GetTransactionByHash returns the first record with txHash; hashes are not unique.
func (s *TransactionService) GetTransactionByHash(txHash string) (models.TransactionRecord, error) {
	if txHash == "" {
		return models.TransactionRecord{}, ErrTransactionNotFound
	}
	tx, ok := s.records.Find(func(t models.TransactionRecord) bool { return t.TxHash == txHash })
	if !ok {
		return models.TransactionRecord{}, ErrTransactionNotFound
	}
	return tx, nil
}

// GetTransactionsByAddress matches address against from or to, ignoring case.
func (s *TransactionService) GetTransactionsByAddress(address string) []models.TransactionRecord {
	return s.records.Filter(func(t models.TransactionRecord) bool {
		return strings.EqualFold(t.From, address) || (t.To != "" && strings.EqualFold(t.To, address))
	})
}

func (s *TransactionService) GetTransactionsByModel(modelID string) []models.TransactionRecord {
	return s.records.Filter(func(t models.TransactionRecord) bool { return t.ModelID == modelID })
}

// GetAllTransactions returns every record, newest timestamp first.
func (s *TransactionService) GetAllTransactions() []models.TransactionRecord {
	all := s.records.All()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp > all[j].Timestamp })
	return all
}

func (s *TransactionService) FindTransactions(filter TransactionFilter) []models.TransactionRecord {
	var list []models.TransactionRecord
	switch {
	case filter.Address != "":
		list = s.GetTransactionsByAddress(filter.Address)
	case filter.ModelID != "":
		list = s.GetTransactionsByModel(filter.ModelID)
	default:
		list = s.GetAllTransactions()
	}

	out := list[:0]
	for _, t := range list {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Chain != "" && t.Chain != filter.Chain {
			continue
		}
		if filter.Network != "" && t.Network != filter.Network {
			continue
		}
		out = append(out, t)
	}
	return out
}
