package sqlfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataaccess-backend/internal/domain/search"
)

func TestTranslator_Named(t *testing.T) {
	tr := NewTranslator("postgresql", "t", Named, false)

	tests := []struct {
		raw      string
		fragment string
		params   search.Params
	}{
		{
			raw:      "name=wake",
			fragment: "strpos(t.name, @p0_0_name) > 0",
			params:   search.Params{{Name: "p0_0_name", Value: "wake"}},
		},
		{
			raw:      "name=a,b",
			fragment: "(strpos(t.name, @p0_0_name) > 0 OR strpos(t.name, @p0_1_name) > 0)",
			params:   search.Params{{Name: "p0_0_name", Value: "a"}, {Name: "p0_1_name", Value: "b"}},
		},
		{
			raw:      "createDate=1,x",
			fragment: "t.create_date IN (@p0_0_createDate, @p0_1_createDate)",
			params:   search.Params{{Name: "p0_0_createDate", Value: int64(1)}, {Name: "p0_1_createDate", Value: int64(-1)}},
		},
		{
			raw:      "name=",
			fragment: "(t.name IS NULL OR t.name = @p0_0_name)",
			params:   search.Params{{Name: "p0_0_name", Value: ""}},
		},
		{
			raw:      "id=",
			fragment: "t.id IN (@p0_0_id)",
			params:   search.Params{{Name: "p0_0_id", Value: int64(-1)}},
		},
		{
			raw:      "ID=3",
			fragment: "t.id IN (@p0_0_ID)",
			params:   search.Params{{Name: "p0_0_ID", Value: int64(3)}},
		},
		{
			raw:      "owner.firstName=ann",
			fragment: "strpos(owner.first_name, @p0_0_owner_firstName) > 0",
			params:   search.Params{{Name: "p0_0_owner_firstName", Value: "ann"}},
		},
		{
			raw:      "name=a&id=5&name=b",
			fragment: "strpos(t.name, @p0_0_name) > 0 AND t.id IN (@p1_0_id) AND strpos(t.name, @p2_0_name) > 0",
			params: search.Params{
				{Name: "p0_0_name", Value: "a"},
				{Name: "p1_0_id", Value: int64(5)},
				{Name: "p2_0_name", Value: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			e, err := search.ParseFilterExpression(tt.raw)
			require.NoError(t, err)

			fragment, err := e.Render(tr)
			require.NoError(t, err)
			assert.Equal(t, tt.fragment, fragment)

			params, err := e.Parameters(tr)
			require.NoError(t, err)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestTranslator_NullTerm(t *testing.T) {
	tr := NewTranslator("postgresql", "t", Named, false)
	null, err := search.NullTerm("id")
	require.NoError(t, err)
	e := search.NewFilterExpression(null)

	fragment, err := e.Render(tr)
	require.NoError(t, err)
	assert.Equal(t, "(t.id IS NULL OR t.id = @p0_0_id)", fragment)

	params, err := e.Parameters(tr)
	require.NoError(t, err)
	assert.Equal(t, search.Params{{Name: "p0_0_id", Value: nil}}, params)
}

func TestTranslator_Positional(t *testing.T) {
	tr := NewTranslator("gorm", "", Positional, true)

	e, err := search.ParseFilterExpression("id=1,2&name=wake")
	require.NoError(t, err)

	fragment, err := e.Render(tr)
	require.NoError(t, err)
	assert.Equal(t, "id IN (?, ?) AND strpos(name, ?) > 0", fragment)

	params, err := e.Parameters(tr)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), "wake"}, params.Values())
	assert.Equal(t, map[string]any{"1": int64(1), "2": int64(2), "3": "wake"}, params.Map())
}

func TestTranslator_RejectsInjection(t *testing.T) {
	tr := NewTranslator("postgresql", "t", Named, false)
	_, err := tr.RenderFragment(mustTerm(t, "name) OR (1=1", "x"), 0)
	assert.ErrorIs(t, err, search.ErrMalformedFilter)
}

func TestTranslator_OrderBy(t *testing.T) {
	tr := NewTranslator("postgresql", "t", Named, false)
	assert.Equal(t, "", tr.OrderBy(nil))
	assert.Equal(t, "t.last_modified_date DESC, t.name ASC", tr.OrderBy([]search.SortField{
		{Field: "lastModifiedDate", Desc: true},
		{Field: "name"},
	}))
}

func mustTerm(t *testing.T, key, value string) search.FilterTerm {
	t.Helper()
	term, err := search.NewFilterTerm(key, value)
	require.NoError(t, err)
	return term
}
