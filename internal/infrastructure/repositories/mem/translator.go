package mem

import (
	"fmt"
	"strings"

	"dataaccess-backend/internal/domain/search"
)

// Translator renders terms into a readable predicate language used for logging.
// Rows are matched in Go by Matches, over the same coerced parameters.
type Translator struct{}

// Name of the dialect
func (Translator) Name() string {
	return "memory"
}

// Conjunction joins term fragments
func (Translator) Conjunction() string {
	return " and "
}

// RenderFragment renders `name ~ :p0_0_name`, `id in (:p0_0_id, ...)` or `name is empty`
func (Translator) RenderFragment(term search.FilterTerm, pos int) (string, error) {
	if err := search.ValidateField(term.Key()); err != nil {
		return "", err
	}
	params := search.NamedParams(term, pos)
	refs := make([]string, 0, len(params))
	for _, p := range params {
		refs = append(refs, ":"+p.Name)
	}

	switch {
	case term.IsNull():
		return fmt.Sprintf("%s is empty(%s)", term.Key(), refs[0]), nil
	case search.IsIntegerField(term.Key()):
		return fmt.Sprintf("%s in (%s)", term.Key(), strings.Join(refs, ", ")), nil
	case len(refs) == 1:
		return fmt.Sprintf("%s ~ %s", term.Key(), refs[0]), nil
	default:
		clauses := make([]string, 0, len(refs))
		for _, ref := range refs {
			clauses = append(clauses, term.Key()+" ~ "+ref)
		}
		return "(" + strings.Join(clauses, " or ") + ")", nil
	}
}

// CoerceParams returns one named parameter per value
func (Translator) CoerceParams(term search.FilterTerm, pos int) ([]search.Param, error) {
	return search.NamedParams(term, pos), nil
}

var _ search.FilterTranslator = Translator{}
