// Package http provides HTTP server and handler implementations.
//
// This file holds the two response shapes the server speaks: the JSON
// envelope of the /api routes and the fragments plus HX-Trigger headers
// returned to htmx.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

const (
	// TriggerFormReset asks the page to reset the create form.
	TriggerFormReset = "form:reset"
	// TriggerTransactionCreated carries the stored transaction to the page.
	TriggerTransactionCreated = "transaction:created"

	msgInternalError   = "Internal server error"
	msgInvalidBody     = "Invalid request body"
	msgTooManyRequests = "Too many requests, please try again later"
)

// envelope is the body of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes v with status. Encoding errors are ignored: the status
// line is already gone by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData writes a success envelope around data.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError writes a failure envelope with a user facing message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

// writeInternalError hides the failure behind a generic error and carries
// its message for diagnostics.
func writeInternalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Error:   msgInternalError,
		Message: err.Error(),
	})
}

// writeMethodNotAllowed answers any method the route does not serve.
func writeMethodNotAllowed(w http.ResponseWriter, method string, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", method))
}

// transactionList is always encoded as an array, never null.
func transactionList(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerFormReset adds the form:reset trigger.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(TriggerFormReset, struct{}{})
}

// TriggerTransactionCreated adds the transaction:created trigger with the
// fields the page needs to update the balance.
func (b *HTMXResponseBuilder) TriggerTransactionCreated(t core.Transaction) *HTMXResponseBuilder {
	return b.Trigger(TriggerTransactionCreated, map[string]any{
		"id":     t.ID,
		"type":   t.Type,
		"amount": t.Amount,
		"signed": t.Signed().StringFixed(2),
	})
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets an already rendered fragment as the body.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// BodyText sets a plain text body. The page writes it into the error
// banner as text, so it is never interpreted as markup.
func (b *HTMXResponseBuilder) BodyText(text string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(text)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a plain text error for the page's error banner.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyText(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError creates a 405 naming method and listing the
// allowed ones.
func MethodNotAllowedError(method, allowedMethods string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", method)).
		Header("Allow", allowedMethods)
}
