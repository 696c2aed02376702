package models

// DefaultModelType is stored when a model is registered without a type.
const DefaultModelType = "other"

// ModelRecord maps an internal model ID to its on-chain identity (Ethereum
// tokenId or Sui objectId), its owner and its IPFS content.
type ModelRecord struct {
	ModelID string `json:"modelId"`

	TokenID  string `json:"tokenId,omitempty"`
	ObjectID string `json:"objectId,omitempty"`
	TxHash   string `json:"txHash,omitempty"`

	Owner   string `json:"owner"`
	Creator string `json:"creator"`

	Chain   Chain   `json:"chain"`
	Network Network `json:"network"`

	Name        string `json:"name"`
	Description string `json:"description"`
	ModelType   string `json:"modelType"`
	Prompt      string `json:"prompt,omitempty"`

	IPFSMetadataCID string `json:"ipfsMetadataCid,omitempty"`
	IPFSImageCID    string `json:"ipfsImageCid,omitempty"`
	IPFSFileCID     string `json:"ipfsFileCid,omitempty"`

	// RoyaltyPercentage is in basis points (10000 = 100%).
	RoyaltyPercentage int      `json:"royaltyPercentage"`
	Price             *float64 `json:"price,omitempty"`
	IsListed          bool     `json:"isListed"`

	// Unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

type CreateModelParams struct {
	ObjectID          string
	TokenID           string
	TxHash            string
	Owner             string
	Creator           string
	Chain             Chain
	Network           Network
	Name              string
	Description       string
	ModelType         string
	Prompt            string
	IPFSMetadataCID   string
	IPFSImageCID      string
	IPFSFileCID       string
	RoyaltyPercentage int
	Price             *float64
}
