package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// handleTransactions serves GET and POST on /api/transactions and answers
// every other method with 405.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		writeMethodNotAllowed(w, r.Method, allowedTransactionMethods)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.List(r.Context())
	if err != nil {
		s.log.LogError(r.Context(), "API list failed", err, applog.OpList,
			applog.NewFields().WithErrorType(applog.ErrorTypeDatabase))
		writeInternalError(w, err)
		return
	}
	writeData(w, http.StatusOK, transactionList(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	candidate, err := ParseCandidate(w, r)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Unreadable create body",
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err)
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := s.service.Create(r.Context(), candidate)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeData(w, http.StatusCreated, t)
}
