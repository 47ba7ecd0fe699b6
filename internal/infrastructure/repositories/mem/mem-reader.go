package mem

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

// Find streams matching rows, ordered and ranged as the query asks
func (r *Registry[T]) Find(ctx context.Context, q ports.Query, consume func(T) error) error {
	rows, err := r.selectRows(q)
	if err != nil {
		return err
	}
	if err := sortRows(rows, q.Sort); err != nil {
		return err
	}
	if q.Window.Applied {
		lower := min(q.Window.Lower, int64(len(rows)))
		upper := min(q.Window.Upper, int64(len(rows)))
		rows = rows[lower:upper]
	}

	klog.V(5).Infof("mem: find %s returned %d rows", q, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := consume(clone(row)); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of rows matching the query filter
func (r *Registry[T]) Count(_ context.Context, q ports.Query) (int64, error) {
	rows, err := r.selectRows(q)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// FindByID returns the row with id
func (r *Registry[T]) FindByID(_ context.Context, id int64) (T, error) {
	var zero T
	if err := r.checkOpen(); err != nil {
		return zero, err
	}
	row, ok := r.db.Get(id)
	if !ok {
		return zero, ports.ErrNotFound
	}
	return clone(row), nil
}

func (r *Registry[T]) selectRows(q ports.Query) ([]T, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	terms := q.Terms()
	matchers := make([]termMatcher, 0, len(terms))
	for pos, term := range terms {
		params, err := r.translator.CoerceParams(term, pos)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, termMatcher{term: term, params: params})
	}

	var ret []T
	for _, row := range r.db.Snapshot() {
		ok, err := matchAll(row, matchers)
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, row)
		}
	}
	return ret, nil
}

type termMatcher struct {
	term   search.FilterTerm
	params []search.Param
}

func matchAll(e models.Entity, matchers []termMatcher) (bool, error) {
	for _, m := range matchers {
		ok, err := m.match(e)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// match is true when any alternative of the term matches the field
func (m termMatcher) match(e models.Entity) (bool, error) {
	v, ok := models.FieldValue(e, m.term.Key())
	if !ok {
		return false, errors.Errorf("unknown field %q", m.term.Key())
	}

	if m.term.IsNull() {
		return isEmpty(v), nil
	}

	integer := search.IsIntegerField(m.term.Key())
	for _, p := range m.params {
		if integer {
			if models.AsInt64(v) == p.Value.(int64) {
				return true, nil
			}
			continue
		}
		if strings.Contains(fmt.Sprint(v), p.Value.(string)) {
			return true, nil
		}
	}
	return false, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	default:
		return models.AsInt64(v) == 0
	}
}

func sortRows[T models.Entity](rows []T, fields []search.SortField) error {
	if len(fields) == 0 {
		return nil
	}

	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		for _, f := range fields {
			a, okA := models.FieldValue(rows[i], f.Field)
			b, okB := models.FieldValue(rows[j], f.Field)
			if !okA || !okB {
				sortErr = errors.Errorf("unknown sort field %q", f.Field)
				return false
			}
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return sortErr
}

func compare(a, b any) int {
	if sa, ok := a.(string); ok {
		return strings.Compare(sa, fmt.Sprint(b))
	}
	x, y := models.AsInt64(a), models.AsInt64(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
