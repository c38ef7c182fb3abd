// shared/api/response.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorCategory lets clients tell user-fixable failures apart from ones
// that need a retry.
type ErrorCategory string

const (
	CategoryValidation  ErrorCategory = "validation"
	CategoryNotFound    ErrorCategory = "not_found"
	CategoryForbidden   ErrorCategory = "forbidden"
	CategoryConflict    ErrorCategory = "conflict"
	CategoryPersistence ErrorCategory = "persistence"
	CategoryUnavailable ErrorCategory = "unavailable"
)

// JSONErrorResponse defines a standard structure for API error responses.
type JSONErrorResponse struct {
	Message  string        `json:"message"`
	Code     int           `json:"code,omitempty"`
	Category ErrorCategory `json:"category,omitempty"`
	Details  string        `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response with the given status code and message.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeCategorized(w, status, categoryFor(status), message, "")
}

func writeCategorized(w http.ResponseWriter, status int, category ErrorCategory, message, details string) {
	errResp := JSONErrorResponse{
		Message:  message,
		Code:     status,
		Category: category,
		Details:  details,
	}
	if err := WriteJSON(w, status, errResp); err != nil {
		log.Printf("ERROR: failed to write JSON error response: %v. Falling back to plain text.", err)
		http.Error(w, message, status)
	}
}

func categoryFor(status int) ErrorCategory {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CategoryValidation
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return CategoryForbidden
	case http.StatusConflict:
		return CategoryConflict
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return CategoryUnavailable
	}
	return CategoryPersistence
}

// WriteBadRequest convenience function
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteValidationError reports a rule the caller can fix (empty roster, over the cap).
func WriteValidationError(w http.ResponseWriter, message, details string) {
	writeCategorized(w, http.StatusUnprocessableEntity, CategoryValidation, message, details)
}

// WriteNotFound convenience function
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteForbidden convenience function
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

// WritePersistenceError reports a storage failure; the caller may retry.
func WritePersistenceError(w http.ResponseWriter, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	writeCategorized(w, http.StatusInternalServerError, CategoryPersistence, message, details)
}
