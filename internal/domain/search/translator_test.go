package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValues(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected []any
	}{
		{name: "integer field", key: "id", value: "5", expected: []any{int64(5)}},
		{name: "integer field is case insensitive", key: "CreatedBy", value: "7", expected: []any{int64(7)}},
		{name: "integer tokens are trimmed", key: "lastModifiedDate", value: " 10 , 11", expected: []any{int64(10), int64(11)}},
		{name: "blank token falls back", key: "id", value: "1, ", expected: []any{int64(1), NotFoundID}},
		{name: "non numeric falls back", key: "createDate", value: "yesterday", expected: []any{NotFoundID}},
		{name: "dotted path uses leaf field", key: "owner.id", value: "3", expected: []any{int64(3)}},
		{name: "string field keeps raw tokens", key: "name", value: "a, b", expected: []any{"a", " b"}},
		{name: "string field numeric value stays string", key: "name", value: "5", expected: []any{"5"}},
		{name: "empty integer falls back", key: "id", value: "", expected: []any{NotFoundID}},
		{name: "empty string tests for empty", key: "name", value: "", expected: []any{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := NewFilterTerm(tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, CoerceValues(term))
		})
	}
}

func TestCoerceValues_EmptyAndNull(t *testing.T) {
	e, err := ParseFilterExpression("id=&name=x")
	require.NoError(t, err)
	terms := e.Terms()
	assert.True(t, terms[0].HasValue())
	assert.False(t, terms[0].IsNull())
	assert.Equal(t, []any{NotFoundID}, CoerceValues(terms[0]))

	null, err := NullTerm("id")
	require.NoError(t, err)
	assert.False(t, null.HasValue())
	assert.True(t, null.IsNull())
	assert.Equal(t, []any{nil}, CoerceValues(null))

	nullName, err := NullTerm("name")
	require.NoError(t, err)
	assert.Equal(t, []any{""}, CoerceValues(nullName))
}

func TestParamName(t *testing.T) {
	assert.Equal(t, "p0_0_name", ParamName("name", 0, 0))
	assert.Equal(t, "p3_1_owner_name", ParamName("owner.name", 3, 1))
	assert.NotEqual(t, ParamName("a", 1, 0), ParamName("a", 2, 0))
}

func TestParamsMap(t *testing.T) {
	named := Params{{Name: "a", Value: 1}, {Name: "b", Value: "x"}}
	assert.Equal(t, map[string]any{"a": 1, "b": "x"}, named.Map())

	positional := Params{{Value: 1}, {Value: "x"}}
	assert.Equal(t, map[string]any{"1": 1, "2": "x"}, positional.Map())
	assert.Equal(t, []any{1, "x"}, positional.Values())
}

func TestValidateField(t *testing.T) {
	for _, ok := range []string{"name", "owner.name", "_x1", "createDate"} {
		assert.NoError(t, ValidateField(ok), ok)
	}
	for _, bad := range []string{"", "1name", "name desc", "a..b", "name'--", "a.b."} {
		assert.Error(t, ValidateField(bad), bad)
	}
}
