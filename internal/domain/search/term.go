package search

import (
	"strings"
)

// ValueSeparator joins alternative values of one term
const ValueSeparator = ","

// FilterTerm is one field criterion. A term without a value tests for null or empty; so does
// an empty value on a string field. An empty value on an integer field is coerced like any
// other unparsable token.
type FilterTerm struct {
	key      string
	value    string
	hasValue bool
}

// NewFilterTerm creates a term; the key is trimmed and must not be blank
func NewFilterTerm(key, value string) (FilterTerm, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return FilterTerm{}, malformed(key+"="+value, "filter key is empty")
	}
	return FilterTerm{key: k, value: value, hasValue: true}, nil
}

// NullTerm creates a term without a value, matching null or empty values of key
func NullTerm(key string) (FilterTerm, error) {
	t, err := NewFilterTerm(key, "")
	t.hasValue = false
	return t, err
}

// Key returns the field name
func (t FilterTerm) Key() string {
	return t.key
}

// Value returns the raw value, possibly comma separated
func (t FilterTerm) Value() string {
	return t.value
}

// HasValue reports whether the term was given a value, possibly empty
func (t FilterTerm) HasValue() bool {
	return t.hasValue
}

// IsNull reports whether the term tests for null or empty
func (t FilterTerm) IsNull() bool {
	if !t.hasValue {
		return true
	}
	return t.value == "" && !IsIntegerField(t.key)
}

// Values splits the raw value into its alternatives. Tokens are returned untrimmed.
func (t FilterTerm) Values() []string {
	return strings.Split(t.value, ValueSeparator)
}

// String renders the canonical key=value form; a term without a value renders as key=
func (t FilterTerm) String() string {
	return t.key + "=" + t.value
}
