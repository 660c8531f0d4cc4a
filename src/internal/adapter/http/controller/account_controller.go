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

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, ownerID string, accountID string) (commons.Response[models.AccountResponse], error)
	ChangeStatus(ctx context.Context, req models.ChangeStatusRequest) (commons.Response[models.AccountResponse], error)
	UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error)
	DeleteAccount(ctx context.Context, req models.DeleteAccountRequest) (commons.Response[models.DeleteAccountResponse], error)
	ListTransactions(ctx context.Context, ownerID string, accountID string) (commons.Response[models.ListTransactionsResponse], error)
	SweepDormantAccounts(ctx context.Context) (commons.Response[models.SweepDormantResponse], error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	register := func(path string, handler http.HandlerFunc) {
		var wrapped http.Handler = handler
		if authMiddleware != nil {
			wrapped = authMiddleware(wrapped)
		}
		mux.Handle(path, wrapped)
	}

	register("/accounts/create", c.create)
	register("/accounts/get", c.get)
	register("/accounts/change-status", c.changeStatus)
	register("/accounts/update", c.update)
	register("/accounts/delete", c.delete)
	register("/accounts/transactions", c.listTransactions)
	register("/accounts/sweep-dormant", c.sweepDormant)
}

func (c *AccountController) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.AccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateAccount(r.Context(), req)
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

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *AccountController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.AccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	ownerID := r.URL.Query().Get("ownerId")
	accountID := r.URL.Query().Get("accountId")

	response, err := c.service.GetAccount(r.Context(), ownerID, accountID)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) changeStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.AccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	var req models.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		return
	}
	logRequest(r, req)

	response, err := c.service.ChangeStatus(r.Context(), req)
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

func (c *AccountController) update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.AccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		return
	}
	logRequest(r, req)

	response, err := c.service.UpdateAccount(r.Context(), req)
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

func (c *AccountController) delete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.DeleteAccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	var req models.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.DeleteAccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		return
	}
	logRequest(r, req)

	response, err := c.service.DeleteAccount(r.Context(), req)
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

func (c *AccountController) listTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ListTransactionsResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	ownerID := r.URL.Query().Get("ownerId")
	accountID := r.URL.Query().Get("accountId")

	response, err := c.service.ListTransactions(r.Context(), ownerID, accountID)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) sweepDormant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.SweepDormantResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		return
	}

	response, err := c.service.SweepDormantAccounts(r.Context())
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
