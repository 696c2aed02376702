package transaction_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thanghienlanh/web33/internal/api/v1/transaction"
	"github.com/thanghienlanh/web33/internal/models"
	"github.com/thanghienlanh/web33/internal/services"
	"github.com/thanghienlanh/web33/internal/store"
)

func setupRouter(t *testing.T) (*gin.Engine, *services.TransactionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := services.NewTransactionService(store.NewFilePersister(filepath.Join(t.TempDir(), "transactions.json")))
	require.NoError(t, svc.Load())

	router := gin.New()
	transaction.RegisterRoutes(router.Group("/api"), transaction.NewHandler(svc))
	return router, svc
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeTx(t *testing.T, w *httptest.ResponseRecorder) models.TransactionRecord {
	t.Helper()
	var resp transaction.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Transaction
}

func TestCreateTransaction(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/transactions",
		`{"txHash":"0xabc","chain":"sui","type":"mint","from":"0xA","modelId":"model_1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	tx := decodeTx(t, w)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, models.NetworkTestnet, tx.Network)
	assert.Equal(t, tx.Timestamp, tx.CreatedAt)

	w = doJSON(router, http.MethodGet, "/api/transactions/"+tx.TxID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tx, decodeTx(t, w))

	w = doJSON(router, http.MethodGet, "/api/transactions/hash/0xabc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tx.TxID, decodeTx(t, w).TxID)
}

func TestCreateTransaction_MissingFields(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/transactions", `{"txHash":"0xabc","chain":"sui"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, transaction.MissingFieldsMessage, resp["error"])
}

func TestCreateTransaction_UnknownType(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/transactions",
		`{"txHash":"0xabc","chain":"sui","type":"burn","from":"0xA"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	router, svc := setupRouter(t)
	tx, err := svc.CreateTransaction(models.CreateTransactionParams{
		TxHash: "0x1", Chain: models.ChainEthereum, Type: models.TransactionTypeBuy, From: "0xA",
	})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPut, "/api/transactions/"+tx.TxID+"/status",
		`{"status":"success","blockNumber":987}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeTx(t, w)
	assert.Equal(t, models.TransactionStatusSuccess, updated.Status)
	require.NotNil(t, updated.BlockNumber)
	assert.Equal(t, uint64(987), *updated.BlockNumber)
	assert.Equal(t, tx.Timestamp, updated.Timestamp)
}

func TestUpdateStatus_InvalidLeavesRecordUnchanged(t *testing.T) {
	router, svc := setupRouter(t)
	tx, err := svc.CreateTransaction(models.CreateTransactionParams{
		TxHash: "0x1", Chain: models.ChainEthereum, Type: models.TransactionTypeMint, From: "0xA",
	})
	require.NoError(t, err)

	for _, body := range []string{`{"status":"bogus"}`, `{}`} {
		w := doJSON(router, http.MethodPut, "/api/transactions/"+tx.TxID+"/status", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Invalid status. Must be: pending, success, or failed"}`, w.Body.String())
	}

	w := doJSON(router, http.MethodPut, "/api/transactions/"+tx.TxID+"/status", `{"status":"success","blockNumber":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request parameters","errors":["Field 'blockNumber' has invalid type, expected uint64"]}`, w.Body.String())

	w = doJSON(router, http.MethodPut, "/api/transactions/"+tx.TxID+"/status", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request parameters","errors":["Malformed JSON or invalid request body"]}`, w.Body.String())

	stored, err := svc.GetTransactionByID(tx.TxID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, stored.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPut, "/api/transactions/tx_missing/status", `{"status":"failed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Transaction not found"}`, w.Body.String())
}

func TestGetTransactions(t *testing.T) {
	router, svc := setupRouter(t)
	for _, p := range []models.CreateTransactionParams{
		{TxHash: "0x1", Chain: models.ChainEthereum, Type: models.TransactionTypeMint, From: "0xAlice", ModelID: "m1"},
		{TxHash: "0x2", Chain: models.ChainSui, Type: models.TransactionTypeBuy, From: "0xBob", To: "0xALICE", ModelID: "m1"},
		{TxHash: "0x3", Chain: models.ChainSui, Type: models.TransactionTypeList, From: "0xCarol"},
	} {
		_, err := svc.CreateTransaction(p)
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		count int
	}{
		{"", 3},
		{"?address=0xalice", 2},
		{"?modelId=m1", 2},
		{"?modelId=m1&chain=sui", 1},
		{"?status=pending", 3},
		{"?status=success", 0},
		{"?network=testnet", 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := doJSON(router, http.MethodGet, "/api/transactions"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			var resp transaction.TransactionListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Transactions, tt.count)
		})
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/api/transactions/tx_nope", "/api/transactions/hash/0xnope"} {
		w := doJSON(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"Transaction not found"}`, w.Body.String())
	}
}
