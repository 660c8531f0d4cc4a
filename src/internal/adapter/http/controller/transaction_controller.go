package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/core-banking-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/src/internal/commons"
	"github.com/api-sage/core-banking-ledger/src/internal/logger"
)

type TransactionService interface {
	ProcessTransaction(ctx context.Context, req models.ProcessTransactionRequest) (commons.Response[models.TransactionResponse], error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	var handler http.Handler = http.HandlerFunc(c.process)
	if authMiddleware != nil {
		handler = authMiddleware(handler)
	}

	mux.Handle("/transactions/process", handler)
}

func (c *TransactionController) process(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	var req models.ProcessTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		return
	}
	logRequest(r, req)

	response, err := c.service.ProcessTransaction(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
