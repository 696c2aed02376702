package model

import "github.com/thanghienlanh/web33/internal/models"

const MissingFieldsMessage = "Missing required fields: owner, creator, chain, name, description"

type CreateModelRequest struct {
	ObjectID string `json:"objectId"`
	TokenID  string `json:"tokenId"`
	TxHash   string `json:"txHash"`

	Owner   string         `json:"owner" binding:"required"`
	Creator string         `json:"creator" binding:"required"`
	Chain   models.Chain   `json:"chain" binding:"required,oneof=ethereum sui"`
	Network models.Network `json:"network" binding:"omitempty,oneof=mainnet testnet devnet local"`

	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	ModelType   string `json:"modelType"`
	Prompt      string `json:"prompt"`

	IPFSMetadataCID string `json:"ipfsMetadataCid"`
	IPFSImageCID    string `json:"ipfsImageCid"`
	IPFSFileCID     string `json:"ipfsFileCid"`

	RoyaltyPercentage int      `json:"royaltyPercentage"`
	Price             *float64 `json:"price"`
}

func (r CreateModelRequest) params() models.CreateModelParams {
	return models.CreateModelParams{
		ObjectID:          r.ObjectID,
		TokenID:           r.TokenID,
		TxHash:            r.TxHash,
		Owner:             r.Owner,
		Creator:           r.Creator,
		Chain:             r.Chain,
		Network:           r.Network,
		Name:              r.Name,
		Description:       r.Description,
		ModelType:         r.ModelType,
		Prompt:            r.Prompt,
		IPFSMetadataCID:   r.IPFSMetadataCID,
		IPFSImageCID:      r.IPFSImageCID,
		IPFSFileCID:       r.IPFSFileCID,
		RoyaltyPercentage: r.RoyaltyPercentage,
		Price:             r.Price,
	}
}

type ModelResponse struct {
	Model models.ModelRecord `json:"model"`
}

type ModelListResponse struct {
	Models []models.ModelRecord `json:"models"`
	Count  int                  `json:"count"`
}

type ValidateModelRequest struct {
	ModelHash string `json:"modelHash"`
	ModelType string `json:"modelType"`
}

type ValidateModelResponse struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type GenerateImageRequest struct {
	Prompt            string  `json:"prompt"`
	ModelType         string  `json:"modelType"`
	Width             int     `json:"width" binding:"min=0,max=2048"`
	Height            int     `json:"height" binding:"min=0,max=2048"`
	NumInferenceSteps int     `json:"numInferenceSteps" binding:"min=0"`
	GuidanceScale     float64 `json:"guidanceScale" binding:"min=0"`
	Seed              *int64  `json:"seed"`
}
