package http

import (
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type createTransactionRequest struct {
	Date        *core.Date            `json:"transaction_date"`
	Description *string               `json:"description"`
	Amount      *float64              `json:"amount"`
	CategoryID  *int64                `json:"category_id"`
	Type        *core.TransactionType `json:"transaction_type"`
}

type updateTransactionRequest struct {
	Date        *core.Date            `json:"transaction_date"`
	Description *string               `json:"description"`
	Amount      *float64              `json:"amount"`
	CategoryID  *int64                `json:"category_id"`
	Type        *core.TransactionType `json:"transaction_type"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var f core.TransactionFilter
	var err error

	if f.StartDate, err = queryDate(r, "start_date"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if f.EndDate, err = queryDate(r, "end_date"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if f.Month, err = queryInt(r, "month"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if f.Year, err = queryInt(r, "year"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if f.CategoryID, err = queryInt64(r, "category_id"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if f.Month != nil {
		if err := core.ValidateMonth(*f.Month); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	items, err := s.transactions.ListTransactions(r.Context(), f)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction list failed",
			log.FieldError, err,
			log.FieldOperation, log.OpList)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	switch {
	case req.Description == nil:
		writeError(w, http.StatusUnprocessableEntity, "description is required")
		return
	case req.Amount == nil:
		writeError(w, http.StatusUnprocessableEntity, "amount is required")
		return
	case req.CategoryID == nil:
		writeError(w, http.StatusUnprocessableEntity, "category_id is required")
		return
	case req.Type == nil:
		writeError(w, http.StatusUnprocessableEntity, "transaction_type is required")
		return
	}

	n := core.NewTransaction{
		Date:        req.Date,
		Description: *req.Description,
		Amount:      *req.Amount,
		CategoryID:  *req.CategoryID,
		Type:        *req.Type,
	}
	if err := n.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.transactions.CreateTransaction(r.Context(), n)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction create failed",
			log.FieldError, err,
			log.FieldOperation, log.OpCreate,
			log.FieldAmount, n.Amount)
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldTransactionID, created.ID,
		log.FieldOperation, log.OpCreate,
		log.FieldAmount, created.Amount)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	patch := core.TransactionPatch{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusUnprocessableEntity, "no fields provided to update")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.transactions.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		if status := storeErrorStatus(err); status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction update failed",
				log.FieldError, err,
				log.FieldOperation, log.OpUpdate,
				log.FieldTransactionID, id)
		}
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.transactions.DeleteTransaction(r.Context(), id); err != nil {
		if status := storeErrorStatus(err); status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction delete failed",
				log.FieldError, err,
				log.FieldOperation, log.OpDelete,
				log.FieldTransactionID, id)
		}
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Transaction %d deleted successfully", id),
	})
}
