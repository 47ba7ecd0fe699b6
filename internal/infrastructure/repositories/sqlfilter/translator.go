// Package sqlfilter renders filter terms as SQL predicates for the SQL backed adapters.
package sqlfilter

import (
	"fmt"
	"strings"

	"github.com/gobeam/stringy"

	"dataaccess-backend/internal/domain/search"
)

// Placeholder renders the bind marker of one parameter
type Placeholder func(p search.Param) string

// Named renders @name markers understood by pgx.NamedArgs
func Named(p search.Param) string {
	return "@" + p.Name
}

// Positional renders ? markers bound in order
func Positional(search.Param) string {
	return "?"
}

// Translator renders terms as SQL predicates over one table alias.
// Integer fields compare with IN, string fields match substrings with strpos,
// null terms test IS NULL or the empty value.
type Translator struct {
	name        string
	alias       string
	placeholder Placeholder
	positional  bool
}

// NewTranslator creates a translator; columns without a path are qualified with alias
func NewTranslator(name, alias string, placeholder Placeholder, positional bool) Translator {
	return Translator{
		name:        name,
		alias:       alias,
		placeholder: placeholder,
		positional:  positional,
	}
}

// Name of the dialect
func (t Translator) Name() string {
	return t.name
}

// Conjunction joins term fragments
func (t Translator) Conjunction() string {
	return " AND "
}

// Column maps a filter key to a column. createDate becomes t.create_date and
// owner.firstName becomes owner.first_name, owner being declared by query variables.
func (t Translator) Column(key string) string {
	column := ColumnName(key)
	if t.alias != "" && !strings.Contains(column, ".") {
		return t.alias + "." + column
	}
	return column
}

// ColumnName converts every segment of a key path to snake case
func ColumnName(key string) string {
	segments := strings.Split(key, ".")
	for i, s := range segments {
		segments[i] = stringy.New(s).SnakeCase("?", "").ToLower()
	}
	return strings.Join(segments, ".")
}

// RenderFragment renders the predicate of one term
func (t Translator) RenderFragment(term search.FilterTerm, pos int) (string, error) {
	if err := search.ValidateField(term.Key()); err != nil {
		return "", err
	}
	column := t.Column(term.Key())
	params, err := t.CoerceParams(term, pos)
	if err != nil {
		return "", err
	}

	marks := make([]string, 0, len(params))
	for _, p := range params {
		marks = append(marks, t.placeholder(p))
	}

	switch {
	case term.IsNull():
		return fmt.Sprintf("(%s IS NULL OR %s = %s)", column, column, marks[0]), nil
	case search.IsIntegerField(term.Key()):
		return fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ", ")), nil
	case len(marks) == 1:
		return contains(column, marks[0]), nil
	default:
		clauses := make([]string, 0, len(marks))
		for _, m := range marks {
			clauses = append(clauses, contains(column, m))
		}
		return "(" + strings.Join(clauses, " OR ") + ")", nil
	}
}

func contains(column, mark string) string {
	return fmt.Sprintf("strpos(%s, %s) > 0", column, mark)
}

// CoerceParams returns one parameter per marker, unnamed for positional dialects
func (t Translator) CoerceParams(term search.FilterTerm, pos int) ([]search.Param, error) {
	params := search.NamedParams(term, pos)
	if t.positional {
		for i := range params {
			params[i].Name = ""
		}
	}
	return params, nil
}

// OrderBy renders ORDER BY items, empty when there is nothing to sort by
func (t Translator) OrderBy(fields []search.SortField) string {
	if len(fields) == 0 {
		return ""
	}
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, t.Column(f.Field)+" "+f.Direction())
	}
	return strings.Join(items, ", ")
}

var _ search.FilterTranslator = Translator{}
