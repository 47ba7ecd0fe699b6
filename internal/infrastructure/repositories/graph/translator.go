package graph

import (
	"fmt"
	"strings"

	"dataaccess-backend/internal/domain/search"
)

// NodeVar is the Cypher variable bound to the queried node
const NodeVar = "n"

// Translator renders terms as Cypher predicates with $name parameters
type Translator struct{}

// Name of the dialect
func (Translator) Name() string {
	return "neo4j"
}

// Conjunction joins term fragments
func (Translator) Conjunction() string {
	return " AND "
}

// Property maps a filter key to a property reference; dotted keys address
// variables declared by the query variables pattern
func Property(key string) string {
	if strings.Contains(key, ".") {
		return key
	}
	return NodeVar + "." + key
}

// RenderFragment renders the predicate of one term
func (t Translator) RenderFragment(term search.FilterTerm, pos int) (string, error) {
	if err := search.ValidateField(term.Key()); err != nil {
		return "", err
	}
	prop := Property(term.Key())
	params, err := t.CoerceParams(term, pos)
	if err != nil {
		return "", err
	}
	refs := make([]string, 0, len(params))
	for _, p := range params {
		refs = append(refs, "$"+p.Name)
	}

	switch {
	case term.IsNull():
		return fmt.Sprintf("(%s IS NULL OR %s = %s)", prop, prop, refs[0]), nil
	case search.IsIntegerField(term.Key()):
		return fmt.Sprintf("%s IN [%s]", prop, strings.Join(refs, ", ")), nil
	case len(refs) == 1:
		return fmt.Sprintf("%s CONTAINS %s", prop, refs[0]), nil
	default:
		clauses := make([]string, 0, len(refs))
		for _, ref := range refs {
			clauses = append(clauses, prop+" CONTAINS "+ref)
		}
		return "(" + strings.Join(clauses, " OR ") + ")", nil
	}
}

// CoerceParams returns one named parameter per value
func (Translator) CoerceParams(term search.FilterTerm, pos int) ([]search.Param, error) {
	return search.NamedParams(term, pos), nil
}

// OrderBy renders ORDER BY items
func (Translator) OrderBy(fields []search.SortField) string {
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, Property(f.Field)+" "+f.Direction())
	}
	return strings.Join(items, ", ")
}

var _ search.FilterTranslator = Translator{}
