package http

import (
	"bytes"
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/view"
)

// indexPage is the data behind index.html.
type indexPage struct {
	Ledger *view.Ledger
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", indexPage{Ledger: view.NewLedger()})
}

// handleLedger serves the list partial and form submissions.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleLedgerPartial(w, r)
	case http.MethodPost:
		s.handleCreateFromForm(w, r)
	default:
		MethodNotAllowedError(r.Method, allowedTransactionMethods).Write(w)
	}
}

// handleLedgerPartial renders the list section. A failed list still
// renders with 200 so htmx swaps in the error banner.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	ledger := view.NewLedger()
	txs, err := s.service.List(r.Context())
	if err != nil {
		s.log.LogError(r.Context(), "UI list failed", err, applog.OpList,
			applog.NewFields().WithErrorType(applog.ErrorTypeDatabase))
		ledger.Failed(msgInternalError)
	} else {
		ledger.Loaded(txs)
	}
	s.render(w, r, http.StatusOK, "ledger", ledger)
}

// handleCreateFromForm stores a form submission and answers with the new
// row, which the page prepends to the list. Failures are plain text for
// the error banner.
func (s *Server) handleCreateFromForm(w http.ResponseWriter, r *http.Request) {
	candidate, err := ParseCandidate(w, r)
	if err != nil {
		BadRequestError(msgInvalidBody).Write(w)
		return
	}

	t, err := s.service.Create(r.Context(), candidate)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			BadRequestError(verr.Message).Write(w)
			return
		}
		InternalServerError(msgInternalError).Write(w)
		return
	}

	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "row", view.NewRow(t)); err != nil {
		s.log.LogError(r.Context(), "Row template execution failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentTemplate))
		InternalServerError(msgInternalError).Write(w)
		return
	}

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerFormReset().
		TriggerTransactionCreated(t).
		BodyHTML(buf.Bytes()).
		Write(w)
}

// render executes name into a buffer first so a template error never
// leaves a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.LogError(r.Context(), "Template execution failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentTemplate))
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) templatesMissing(w http.ResponseWriter, r *http.Request) {
	s.logger.ErrorContext(r.Context(), "Templates not loaded",
		applog.FieldPath, r.URL.Path,
		applog.FieldErrorType, applog.ErrorTypeConfiguration)
	http.Error(w, "templates not loaded", http.StatusInternalServerError)
}
