package search

import (
	"regexp"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// NotFoundID is the sentinel an unparsable integer value coerces to. No row carries it.
const NotFoundID int64 = -1

// FilterTranslator turns one term into a backend query fragment and its typed parameters.
// Both methods receive the term position so placeholder names stay unique across duplicate keys.
type FilterTranslator interface {
	// Name identifies the backend dialect
	Name() string
	// Conjunction joins rendered fragments
	Conjunction() string
	// RenderFragment renders the predicate of one term
	RenderFragment(term FilterTerm, pos int) (string, error)
	// CoerceParams returns one parameter per placeholder of the fragment
	CoerceParams(term FilterTerm, pos int) ([]Param, error)
}

// Param is one bound value of a rendered fragment
type Param struct {
	Name  string
	Value any
}

// Params is an ordered parameter list aligned with the rendered placeholders
type Params []Param

// Values returns the values in placeholder order
func (p Params) Values() []any {
	ret := make([]any, 0, len(p))
	for _, v := range p {
		ret = append(ret, v.Value)
	}
	return ret
}

// Map returns parameters keyed by name; unnamed (positional) ones are keyed by 1-based ordinal
func (p Params) Map() map[string]any {
	ret := make(map[string]any, len(p))
	for i, v := range p {
		name := v.Name
		if name == "" {
			name = strconv.Itoa(i + 1)
		}
		ret[name] = v.Value
	}
	return ret
}

// integerFields are matched case-insensitively and coerced to int64
var integerFields = map[string]struct{}{
	"id":               {},
	"createdby":        {},
	"createdate":       {},
	"lastmodifiedby":   {},
	"lastmodifieddate": {},
}

// IsIntegerField reports whether values of key are coerced to int64
func IsIntegerField(key string) bool {
	_, ok := integerFields[strings.ToLower(leafField(key))]
	return ok
}

// leafField returns the last segment of a dotted path
func leafField(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}

var fieldPathRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateField rejects keys that are not plain identifier paths
func ValidateField(key string) error {
	if !fieldPathRx.MatchString(key) {
		return malformed(key, "field name must be an identifier path")
	}
	return nil
}

// CoerceValues converts the raw value of a term into typed values, one per alternative.
// Integer fields fall back to NotFoundID for blank or unparsable tokens, an empty value
// included; a null term yields a single nil (integer fields) or "" (string fields).
func CoerceValues(t FilterTerm) []any {
	integer := IsIntegerField(t.Key())
	if t.IsNull() {
		if integer {
			return []any{nil}
		}
		return []any{""}
	}

	tokens := t.Values()
	ret := make([]any, 0, len(tokens))
	for _, token := range tokens {
		if !integer {
			ret = append(ret, token)
			continue
		}
		ret = append(ret, coerceInt(t.Key(), token))
	}
	return ret
}

func coerceInt(key, token string) int64 {
	trimmed := strings.TrimSpace(token)
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		klog.Warningf("coercion fallback: field %q value %q is not an integer, using %d", key, token, NotFoundID)
		return NotFoundID
	}
	return v
}

var nonParamRune = regexp.MustCompile(`[^A-Za-z0-9_]`)

// ParamName builds the placeholder name for value n of the term at position pos.
// The position prefix keeps names unique; the key suffix keeps them readable.
func ParamName(key string, pos, n int) string {
	return "p" + strconv.Itoa(pos) + "_" + strconv.Itoa(n) + "_" + nonParamRune.ReplaceAllString(key, "_")
}

// NamedParams pairs coerced values of a term with their placeholder names
func NamedParams(t FilterTerm, pos int) []Param {
	values := CoerceValues(t)
	ret := make([]Param, 0, len(values))
	for n, v := range values {
		ret = append(ret, Param{Name: ParamName(t.Key(), pos, n), Value: v})
	}
	return ret
}
