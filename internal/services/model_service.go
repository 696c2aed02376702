package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thanghienlanh/web33/internal/metrics"
	"github.com/thanghienlanh/web33/internal/models"
	"github.com/thanghienlanh/web33/internal/store"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

const modelsCollection = "models"

var (
	ErrModelNotFound = errors.New("model not found")
	ErrInvalidUpdate = errors.New("invalid update")
)

// Fields a partial update can never overwrite.
var protectedModelFields = []string{"modelId", "createdAt", "updatedAt"}

// ModelFilter selects models for listing. Owner takes precedence over
// Creator; Chain and Network narrow whichever set was selected.
type ModelFilter struct {
	Owner   string
	Creator string
	Chain   models.Chain
	Network models.Network
}

// ModelService maps internal model IDs to on-chain identities.
type ModelService struct {
	records *store.Store[models.ModelRecord]
	now     func() time.Time
}

func NewModelService(persister store.Persister) *ModelService {
	return &ModelService{
		records: store.New(modelsCollection, func(m models.ModelRecord) string { return m.ModelID }, persister),
		now:     time.Now,
	}
}

func (s *ModelService) Load() error {
	if err := s.records.Load(); err != nil {
		return err
	}
	s.observe()
	logger.Log.Info("Loaded models from storage", zap.Int("count", s.records.Len()))
	return nil
}

func (s *ModelService) CreateModel(params models.CreateModelParams) (models.ModelRecord, error) {
	now := s.now()

	network := params.Network
	if network == "" {
		network = models.DefaultNetwork
	}
	modelType := params.ModelType
	if modelType == "" {
		modelType = models.DefaultModelType
	}

	model := models.ModelRecord{
		ModelID:           store.NewID("model", now),
		TokenID:           params.TokenID,
		ObjectID:          params.ObjectID,
		TxHash:            params.TxHash,
		Owner:             params.Owner,
		Creator:           params.Creator,
		Chain:             params.Chain,
		Network:           network,
		Name:              params.Name,
		Description:       params.Description,
		ModelType:         modelType,
		Prompt:            params.Prompt,
		IPFSMetadataCID:   params.IPFSMetadataCID,
		IPFSImageCID:      params.IPFSImageCID,
		IPFSFileCID:       params.IPFSFileCID,
		RoyaltyPercentage: params.RoyaltyPercentage,
		Price:             params.Price,
		IsListed:          false,
		CreatedAt:         now.UnixMilli(),
		UpdatedAt:         now.UnixMilli(),
	}

	if err := s.records.Insert(model); err != nil {
		return models.ModelRecord{}, err
	}
	s.observe()

	logger.Log.Info("Model registered",
		zap.String("model_id", model.ModelID),
		zap.String("chain", string(model.Chain)),
		zap.String("owner", model.Owner),
	)
	return model, nil
}

func (s *ModelService) GetModelByID(modelID string) (models.ModelRecord, error) {
	model, ok := s.records.Get(modelID)
	if !ok {
		return models.ModelRecord{}, ErrModelNotFound
	}
	return model, nil
}

// GetModelByTokenID returns the first Ethereum model registered with tokenID.
func (s *ModelService) GetModelByTokenID(tokenID string) (models.ModelRecord, error) {
	if tokenID == "" {
		return models.ModelRecord{}, ErrModelNotFound
	}
	model, ok := s.records.Find(func(m models.ModelRecord) bool { return m.TokenID == tokenID })
	if !ok {
		return models.ModelRecord{}, ErrModelNotFound
	}
	return model, nil
}

// GetModelByObjectID returns the first Sui model registered with objectID.
func (s *ModelService) GetModelByObjectID(objectID string) (models.ModelRecord, error) {
	if objectID == "" {
		return models.ModelRecord{}, ErrModelNotFound
	}
	model, ok := s.records.Find(func(m models.ModelRecord) bool { return m.ObjectID == objectID })
	if !ok {
		return models.ModelRecord{}, ErrModelNotFound
	}
	return model, nil
}

func (s *ModelService) GetModelsByOwner(owner string) []models.ModelRecord {
	return s.records.Filter(func(m models.ModelRecord) bool { return strings.EqualFold(m.Owner, owner) })
}

func (s *ModelService) GetModelsByCreator(creator string) []models.ModelRecord {
	return s.records.Filter(func(m models.ModelRecord) bool { return strings.EqualFold(m.Creator, creator) })
}

func (s *ModelService) GetAllModels() []models.ModelRecord {
	return s.records.All()
}

func (s *ModelService) FindModels(filter ModelFilter) []models.ModelRecord {
	var list []models.ModelRecord
	switch {
	case filter.Owner != "":
		list = s.GetModelsByOwner(filter.Owner)
	case filter.Creator != "":
		list = s.GetModelsByCreator(filter.Creator)
	default:
		list = s.GetAllModels()
	}

	if filter.Chain == "" && filter.Network == "" {
		return list
	}
	out := make([]models.ModelRecord, 0, len(list))
	for _, m := range list {
		if filter.Chain != "" && m.Chain != filter.Chain {
			continue
		}
		if filter.Network != "" && m.Network != filter.Network {
			continue
		}
		out = append(out, m)
	}
	return out
}

// UpdateModel shallow-merges patch over the stored record. modelId and the
// timestamps are not patchable; updatedAt is always refreshed.
func (s *ModelService) UpdateModel(modelID string, patch map[string]json.RawMessage) (models.ModelRecord, error) {
	updated, found, err := s.records.Update(modelID, func(current models.ModelRecord) (models.ModelRecord, error) {
		next, err := store.Merge(current, patch, protectedModelFields...)
		if err != nil {
			return current, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
		}
		if !next.Chain.IsValid() {
			return current, fmt.Errorf("%w: unknown chain %q", ErrInvalidUpdate, next.Chain)
		}
		if !next.Network.IsValid() {
			return current, fmt.Errorf("%w: unknown network %q", ErrInvalidUpdate, next.Network)
		}
		next.UpdatedAt = s.now().UnixMilli()
		return next, nil
	})
	if !found {
		return models.ModelRecord{}, ErrModelNotFound
	}
	if err != nil {
		return models.ModelRecord{}, err
	}
	return updated, nil
}

func (s *ModelService) DeleteModel(modelID string) error {
	removed, err := s.records.Delete(modelID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrModelNotFound
	}
	s.observe()
	return nil
}

func (s *ModelService) observe() {
	metrics.SetStoreRecords(modelsCollection, s.records.Len())
}
