package ports

import (
	"fmt"
	"strings"

	"dataaccess-backend/internal/domain/search"
)

// Query is criteria rendered for one backend: the filter fragment, its parameters,
// ordering and the row window. Criteria is kept for adapters that build native filters
// from terms and for QueryVariables.
type Query struct {
	Criteria *search.SearchCriteria
	Filter   string
	Params   search.Params
	Sort     []search.SortField
	Window   search.Window
}

// IsEmpty returns true when the query has no filter, ordering or window
func (q Query) IsEmpty() bool {
	return q.Filter == "" && len(q.Sort) == 0 && !q.Window.Applied && q.QueryVariables() == ""
}

// QueryVariables returns the backend declaration carried by the criteria
func (q Query) QueryVariables() string {
	if q.Criteria == nil {
		return ""
	}
	return q.Criteria.QueryVariables
}

// Terms returns the filter terms of the criteria
func (q Query) Terms() []search.FilterTerm {
	if q.Criteria == nil {
		return nil
	}
	return q.Criteria.Filter.Terms()
}

// Unranged returns the query without its window, used for counting
func (q Query) Unranged() Query {
	q.Window = search.Window{}
	return q
}

// String returns a string representation of the query
func (q Query) String() string {
	if q.IsEmpty() {
		return "empty"
	}

	parts := make([]string, 0, 4)
	if q.Filter != "" {
		parts = append(parts, fmt.Sprintf("filter(%s)", q.Filter))
	}
	if len(q.Sort) > 0 {
		fields := make([]string, 0, len(q.Sort))
		for _, s := range q.Sort {
			fields = append(fields, s.Field+" "+s.Direction())
		}
		parts = append(parts, fmt.Sprintf("sort(%s)", strings.Join(fields, ",")))
	}
	if q.Window.Applied {
		parts = append(parts, fmt.Sprintf("range(%d,%d)", q.Window.Lower, q.Window.Upper))
	}
	if v := q.QueryVariables(); v != "" {
		parts = append(parts, fmt.Sprintf("variables(%s)", v))
	}
	return strings.Join(parts, " ")
}
