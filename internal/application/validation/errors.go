package validation

import (
	"strings"
)

// Error codes reported to clients
const (
	CodeRequired      = "REQUIRED"
	CodeInvalid       = "INVALID"
	CodeTooLong       = "TOO_LONG"
	CodeAccessDenied  = "ACCESS_DENIED"
	CodeUnknownRole   = "UNKNOWN_ROLE"
	CodeMissingEntity = "NOT_FOUND"
)

// ErrorEntry is one client facing error item
type ErrorEntry struct {
	Code    string `json:"ERROR_CODE"`
	Desc    string `json:"ERROR_DESC"`
	Element string `json:"UI_ELEMENT_NAME"`
}

// Describer is implemented by errors that carry client facing entries
type Describer interface {
	Entries() []ErrorEntry
}

// ValidationError represents rejected input
type ValidationError struct {
	Items []ErrorEntry
}

func (e *ValidationError) Error() string {
	return "validation failed: " + joinEntries(e.Items)
}

// Entries returns the error items
func (e *ValidationError) Entries() []ErrorEntry {
	return e.Items
}

// Add appends an item
func (e *ValidationError) Add(code, desc, element string) {
	e.Items = append(e.Items, ErrorEntry{Code: code, Desc: desc, Element: element})
}

// NewValidationError creates a new validation error
func NewValidationError(code, desc, element string) *ValidationError {
	e := &ValidationError{}
	e.Add(code, desc, element)
	return e
}

// SecurityError is returned when the caller may not run an operation
type SecurityError struct {
	Resource  string
	Operation string
	Items     []ErrorEntry
}

func (e *SecurityError) Error() string {
	return "access denied: " + joinEntries(e.Items)
}

// Entries returns the error items
func (e *SecurityError) Entries() []ErrorEntry {
	return e.Items
}

// NewSecurityError creates a new security error
func NewSecurityError(code, resource, operation, desc string) *SecurityError {
	return &SecurityError{
		Resource:  resource,
		Operation: operation,
		Items:     []ErrorEntry{{Code: code, Desc: desc, Element: resource}},
	}
}

func joinEntries(items []ErrorEntry) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Element != "" {
			parts = append(parts, it.Element+": "+it.Desc)
		} else {
			parts = append(parts, it.Desc)
		}
	}
	return strings.Join(parts, "; ")
}
