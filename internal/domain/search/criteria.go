package search

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Reserved request parameters, matched case-insensitively
const (
	ParamSort   = "sort"
	ParamOffset = "offset"
	ParamLimit  = "limit"
)

// Unset marks offset, limit and row count that were not provided
const Unset = -1

// SearchCriteria describes one query: filter, ordering, paging and the computed row count.
// A criteria value is request scoped and not safe for concurrent use.
type SearchCriteria struct {
	SortBy string
	Filter *FilterExpression
	Offset int
	Limit  int
	// QueryVariables is a backend specific declaration used when the filter spans a relationship.
	// It is handed to the backend as is.
	QueryVariables string

	rowCount int64
}

// NewSearchCriteria creates criteria with paging and row count unset
func NewSearchCriteria() *SearchCriteria {
	return &SearchCriteria{
		Offset:   Unset,
		Limit:    Unset,
		rowCount: Unset,
	}
}

// IsPaginationEnabled holds when offset > -1 and limit > 0
func (c *SearchCriteria) IsPaginationEnabled() bool {
	return c != nil && c.Offset > Unset && c.Limit > 0
}

// RowCount returns the total matching rows, -1 until a query ran
func (c *SearchCriteria) RowCount() int64 {
	if c == nil {
		return Unset
	}
	return c.rowCount
}

// SetRowCount records the total matching rows
func (c *SearchCriteria) SetRowCount(n int64) {
	c.rowCount = n
}

// HasFilter reports whether at least one filter term is set
func (c *SearchCriteria) HasFilter() bool {
	return c != nil && !c.Filter.IsEmpty()
}

func (c *SearchCriteria) filter() *FilterExpression {
	if c.Filter == nil {
		c.Filter = NewFilterExpression()
	}
	return c.Filter
}

// AddFilterTerm appends a term
func (c *SearchCriteria) AddFilterTerm(t FilterTerm) {
	c.filter().AddTerm(t)
}

// AddFilter appends key=value
func (c *SearchCriteria) AddFilter(key, value string) error {
	t, err := NewFilterTerm(key, value)
	if err != nil {
		return err
	}
	c.AddFilterTerm(t)
	return nil
}

// AddFilterString parses and appends k1=v1&k2=v2
func (c *SearchCriteria) AddFilterString(raw string) error {
	return c.filter().AddTerms(raw)
}

// SetFilterMap replaces the filter with the given pairs
func (c *SearchCriteria) SetFilterMap(m map[string]string) error {
	e, err := FilterExpressionFromMap(m)
	if err != nil {
		return err
	}
	c.Filter = e
	return nil
}

// SortFields parses SortBy
func (c *SearchCriteria) SortFields() ([]SortField, error) {
	if c == nil {
		return nil, nil
	}
	return ParseSort(c.SortBy)
}

// Clone returns a deep copy
func (c *SearchCriteria) Clone() *SearchCriteria {
	if c == nil {
		return nil
	}
	ret := *c
	ret.Filter = c.Filter.Clone()
	return &ret
}

// Equal compares all fields including the row count
func (c *SearchCriteria) Equal(other *SearchCriteria) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.SortBy == other.SortBy &&
		c.Offset == other.Offset &&
		c.Limit == other.Limit &&
		c.rowCount == other.rowCount &&
		c.QueryVariables == other.QueryVariables &&
		c.Filter.Equal(other.Filter)
}

// IsEmpty reports criteria with no filter, sort or paging
func (c *SearchCriteria) IsEmpty() bool {
	return c == nil || (!c.HasFilter() && c.SortBy == "" && !c.IsPaginationEnabled() && c.QueryVariables == "")
}

// String representation used in logs
func (c *SearchCriteria) String() string {
	if c.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("filter(%s) sort(%s) offset(%d) limit(%d) rowCount(%d)",
		c.Filter.String(), c.SortBy, c.Offset, c.Limit, c.rowCount)
}

// CriteriaFromParams builds criteria from decoded request parameters.
// sort, offset and limit are reserved; every other key becomes a filter term,
// in sorted key order, with multiple values joined by a comma.
func CriteriaFromParams(params url.Values) (*SearchCriteria, error) {
	c := NewSearchCriteria()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := params[k]
		switch strings.ToLower(k) {
		case ParamSort:
			c.SortBy = first(values)
		case ParamOffset:
			n, err := parsePaging(k, first(values))
			if err != nil {
				return nil, err
			}
			c.Offset = n
		case ParamLimit:
			n, err := parsePaging(k, first(values))
			if err != nil {
				return nil, err
			}
			c.Limit = n
		default:
			if err := c.AddFilter(k, strings.Join(values, ValueSeparator)); err != nil {
				return nil, err
			}
		}
	}

	if _, err := c.SortFields(); err != nil {
		return nil, err
	}
	return c, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func parsePaging(key, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unset, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, malformed(key+"="+raw, "%s must be an integer", key)
	}
	if n < Unset {
		n = Unset
	}
	return n, nil
}
