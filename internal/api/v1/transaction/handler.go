package transaction

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thanghienlanh/web33/internal/models"
	"github.com/thanghienlanh/web33/internal/services"
	"github.com/thanghienlanh/web33/internal/utils"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

type Handler struct {
	transactions *services.TransactionService
}

func NewHandler(transactionService *services.TransactionService) *Handler {
	return &Handler{transactions: transactionService}
}

// GetTransactions godoc
// @Summary List transactions
// @Description address (from or to) takes precedence over modelId. Without either the list is newest first.
// @Tags transactions
// @Produce json
// @Param address query string false "Sender or recipient address (case-insensitive)"
// @Param modelId query string false "Model ID"
// @Param status query string false "pending, success or failed"
// @Param chain query string false "ethereum or sui"
// @Param network query string false "Network"
// @Success 200 {object} TransactionListResponse
// @Router /transactions [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	list := h.transactions.FindTransactions(services.TransactionFilter{
		Address: c.Query("address"),
		ModelID: c.Query("modelId"),
		Status:  models.TransactionStatus(c.Query("status")),
		Chain:   models.Chain(c.Query("chain")),
		Network: models.Network(c.Query("network")),
	})
	c.JSON(http.StatusOK, TransactionListResponse{Transactions: list, Count: len(list)})
}

// GetTransactionByID godoc
// @Summary Get transaction by ID
// @Tags transactions
// @Produce json
// @Param txId path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /transactions/{txId} [get]
func (h *Handler) GetTransactionByID(c *gin.Context) {
	tx, err := h.transactions.GetTransactionByID(c.Param("txId"))
	h.respond(c, http.StatusOK, tx, err)
}

// GetTransactionByHash godoc
// @Summary Get transaction by on-chain hash
// @Description Returns the first record with the hash.
// @Tags transactions
// @Produce json
// @Param txHash path string true "Transaction hash"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /transactions/hash/{txHash} [get]
func (h *Handler) GetTransactionByHash(c *gin.Context) {
	tx, err := h.transactions.GetTransactionByHash(c.Param("txHash"))
	h.respond(c, http.StatusOK, tx, err)
}

// CreateTransaction godoc
// @Summary Record a transaction
// @Description New transactions start as pending.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /transactions [post]
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if !utils.BindAndValidate(c, &req, MissingFieldsMessage) {
		return
	}

	tx, err := h.transactions.CreateTransaction(req.params())
	h.respond(c, http.StatusCreated, tx, err)
}

// UpdateTransactionStatus godoc
// @Summary Update transaction status
// @Description Any status may follow any other. Omitted error and blockNumber are cleared.
// @Tags transactions
// @Accept json
// @Produce json
// @Param txId path string true "Transaction ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /transactions/{txId}/status [put]
func (h *Handler) UpdateTransactionStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req, "") {
		return
	}
	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(InvalidStatusMessage))
		return
	}

	tx, err := h.transactions.UpdateTransactionStatus(c.Param("txId"), req.Status, req.Error, req.BlockNumber)
	h.respond(c, http.StatusOK, tx, err)
}

func (h *Handler) respond(c *gin.Context, status int, tx models.TransactionRecord, err error) {
	switch {
	case err == nil:
		c.JSON(status, TransactionResponse{Transaction: tx})
	case errors.Is(err, services.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse("Transaction not found"))
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(InvalidStatusMessage))
	default:
		logger.Log.Error("Transaction store failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(err.Error()))
	}
}
