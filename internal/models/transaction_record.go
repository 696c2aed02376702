package models

type TransactionType string

const (
	TransactionTypeMint     TransactionType = "mint"
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeList     TransactionType = "list"
	TransactionTypeBuy      TransactionType = "buy"
	TransactionTypeCancel   TransactionType = "cancel"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeMint, TransactionTypeTransfer, TransactionTypeList, TransactionTypeBuy, TransactionTypeCancel:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// IsValid reports whether s is a known status. Any valid status may replace
// any other; there is no transition table.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	}
	return false
}

// TransactionRecord tracks an on-chain transaction submitted from the front end.
// TxHash is not unique: retries may share a hash.
type TransactionRecord struct {
	TxID    string            `json:"txId"`
	TxHash  string            `json:"txHash"`
	Chain   Chain             `json:"chain"`
	Network Network           `json:"network"`
	Type    TransactionType   `json:"type"`
	Status  TransactionStatus `json:"status"`

	From string `json:"from"`
	To   string `json:"to,omitempty"`

	ModelID  string `json:"modelId,omitempty"`
	ObjectID string `json:"objectId,omitempty"`
	TokenID  string `json:"tokenId,omitempty"`

	Error       string  `json:"error,omitempty"`
	BlockNumber *uint64 `json:"blockNumber,omitempty"`

	// Unix milliseconds. Timestamp is fixed at creation.
	Timestamp int64 `json:"timestamp"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

type CreateTransactionParams struct {
	TxHash   string
	Chain    Chain
	Network  Network
	Type     TransactionType
	From     string
	To       string
	ModelID  string
	ObjectID string
	TokenID  string
}
