package transaction

import "github.com/thanghienlanh/web33/internal/models"

const (
	MissingFieldsMessage = "Missing required fields: txHash, chain, type, from"
	InvalidStatusMessage = "Invalid status. Must be: pending, success, or failed"
)

type CreateTransactionRequest struct {
	TxHash  string                 `json:"txHash" binding:"required"`
	Chain   models.Chain           `json:"chain" binding:"required,oneof=ethereum sui"`
	Network models.Network         `json:"network" binding:"omitempty,oneof=mainnet testnet devnet local"`
	Type    models.TransactionType `json:"type" binding:"required,oneof=mint transfer list buy cancel"`
	From    string                 `json:"from" binding:"required"`
	To      string                 `json:"to"`

	ModelID  string `json:"modelId"`
	ObjectID string `json:"objectId"`
	TokenID  string `json:"tokenId"`
}

func (r CreateTransactionRequest) params() models.CreateTransactionParams {
	return models.CreateTransactionParams{
		TxHash:   r.TxHash,
		Chain:    r.Chain,
		Network:  r.Network,
		Type:     r.Type,
		From:     r.From,
		To:       r.To,
		ModelID:  r.ModelID,
		ObjectID: r.ObjectID,
		TokenID:  r.TokenID,
	}
}

// UpdateStatusRequest replaces status, error and blockNumber together.
type UpdateStatusRequest struct {
	Status      models.TransactionStatus `json:"status"`
	Error       string                   `json:"error"`
	BlockNumber *uint64                  `json:"blockNumber"`
}

type TransactionResponse struct {
	Transaction models.TransactionRecord `json:"transaction"`
}

type TransactionListResponse struct {
	Transactions []models.TransactionRecord `json:"transactions"`
	Count        int                        `json:"count"`
}
