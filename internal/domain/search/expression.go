package search

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	termSeparator = "&"
	valueAssign   = "="
)

// FilterExpression is an ordered list of terms that are AND-ed together.
// Duplicate keys are kept as separate terms.
type FilterExpression struct {
	terms []FilterTerm
}

// NewFilterExpression creates an empty expression
func NewFilterExpression(terms ...FilterTerm) *FilterExpression {
	e := &FilterExpression{}
	for _, t := range terms {
		e.AddTerm(t)
	}
	return e
}

// FilterExpressionFromMap builds an expression from key/value pairs.
// Keys are applied in sorted order so the rendered query is reproducible.
func FilterExpressionFromMap(m map[string]string) (*FilterExpression, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := NewFilterExpression()
	for _, k := range keys {
		t, err := NewFilterTerm(k, m[k])
		if err != nil {
			return nil, err
		}
		e.AddTerm(t)
	}
	return e, nil
}

// ParseFilterExpression parses k1=v1&k2=v2,v3 into a new expression
func ParseFilterExpression(raw string) (*FilterExpression, error) {
	e := NewFilterExpression()
	if err := e.AddTerms(raw); err != nil {
		return nil, err
	}
	return e, nil
}

// AddTerm appends a term
func (e *FilterExpression) AddTerm(t FilterTerm) {
	e.terms = append(e.terms, t)
}

// AddTerms parses k1=v1&k2=v2,v3 and appends the terms in order.
// On error nothing is appended.
func (e *FilterExpression) AddTerms(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parsed := make([]FilterTerm, 0, strings.Count(raw, termSeparator)+1)
	for _, segment := range strings.Split(raw, termSeparator) {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, valueAssign)
		if !ok {
			return malformed(raw, "term %q has no %q", segment, valueAssign)
		}
		t, err := NewFilterTerm(key, value)
		if err != nil {
			return errors.WithMessagef(err, "parse %q", raw)
		}
		parsed = append(parsed, t)
	}

	e.terms = append(e.terms, parsed...)
	return nil
}

// Terms returns a copy of the terms in insertion order
func (e *FilterExpression) Terms() []FilterTerm {
	if e == nil {
		return nil
	}
	return append([]FilterTerm(nil), e.terms...)
}

// Len returns the number of terms
func (e *FilterExpression) Len() int {
	if e == nil {
		return 0
	}
	return len(e.terms)
}

// IsEmpty reports whether the expression has no terms
func (e *FilterExpression) IsEmpty() bool {
	return e.Len() == 0
}

// Equal compares two expressions term by term. Order matters.
func (e *FilterExpression) Equal(other *FilterExpression) bool {
	if e.Len() != other.Len() {
		return false
	}
	for i := 0; i < e.Len(); i++ {
		if e.terms[i] != other.terms[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (e *FilterExpression) Clone() *FilterExpression {
	if e == nil {
		return nil
	}
	return &FilterExpression{terms: e.Terms()}
}

// String returns the canonical k=v&k=v form accepted by AddTerms
func (e *FilterExpression) String() string {
	parts := make([]string, 0, e.Len())
	for _, t := range e.Terms() {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, termSeparator)
}

// Render translates every term and joins the fragments with the translator's conjunction.
// An empty expression renders to "" which callers treat as no filter.
func (e *FilterExpression) Render(tr FilterTranslator) (string, error) {
	if e.IsEmpty() {
		return "", nil
	}

	fragments := make([]string, 0, len(e.terms))
	for pos, t := range e.terms {
		fragment, err := tr.RenderFragment(t, pos)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, fragment)
	}
	return strings.Join(fragments, tr.Conjunction()), nil
}

// Parameters collects typed parameters of all terms in the same order Render walks them
func (e *FilterExpression) Parameters(tr FilterTranslator) (Params, error) {
	var params Params
	for pos, t := range e.Terms() {
		p, err := tr.CoerceParams(t, pos)
		if err != nil {
			return nil, err
		}
		params = append(params, p...)
	}
	return params, nil
}
