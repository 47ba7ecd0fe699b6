package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoTranslator renders key=:name fragments so tests can see the walk order
type echoTranslator struct{}

func (echoTranslator) Name() string        { return "echo" }
func (echoTranslator) Conjunction() string { return " AND " }

func (echoTranslator) RenderFragment(t FilterTerm, pos int) (string, error) {
	if err := ValidateField(t.Key()); err != nil {
		return "", err
	}
	params := NamedParams(t, pos)
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, ":"+p.Name)
	}
	return fmt.Sprintf("%s in (%s)", t.Key(), strings.Join(names, ",")), nil
}

func (echoTranslator) CoerceParams(t FilterTerm, pos int) ([]Param, error) {
	return NamedParams(t, pos), nil
}

func TestFilterExpression_AddTerms(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
		wantErr  bool
	}{
		{
			name:     "two terms with multi value",
			raw:      "k1=v1&k2=v2,v3",
			expected: []string{"k1=v1", "k2=v2,v3"},
		},
		{
			name:     "single term without separator",
			raw:      "name=wake",
			expected: []string{"name=wake"},
		},
		{
			name:     "empty input is a no-op",
			raw:      "",
			expected: nil,
		},
		{
			name:     "empty segments are skipped",
			raw:      "a=1&&b=2&",
			expected: []string{"a=1", "b=2"},
		},
		{
			name:     "duplicate keys are kept",
			raw:      "name=a&name=b",
			expected: []string{"name=a", "name=b"},
		},
		{
			name:     "empty value is a null test",
			raw:      "name=",
			expected: []string{"name="},
		},
		{
			name:    "key without equals sign",
			raw:     "a=1&broken",
			wantErr: true,
		},
		{
			name:    "blank key",
			raw:     "=value",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewFilterExpression()
			err := e.AddTerms(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedFilter))
				assert.Equal(t, 0, e.Len(), "failed parse must not append terms")
				return
			}
			require.NoError(t, err)

			var got []string
			for _, term := range e.Terms() {
				got = append(got, term.String())
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFilterExpression_TermValues(t *testing.T) {
	e, err := ParseFilterExpression("k1=v1&k2=v2,v3")
	require.NoError(t, err)

	terms := e.Terms()
	require.Len(t, terms, 2)
	assert.Equal(t, "k1", terms[0].Key())
	assert.Equal(t, "v1", terms[0].Value())
	assert.Equal(t, "k2", terms[1].Key())
	assert.Equal(t, "v2,v3", terms[1].Value())
	assert.Equal(t, []string{"v2", "v3"}, terms[1].Values())
}

func TestFilterExpression_FromMapIsSorted(t *testing.T) {
	e, err := FilterExpressionFromMap(map[string]string{"name": "wake", "id": "1", "createdBy": "7"})
	require.NoError(t, err)
	assert.Equal(t, "createdBy=7&id=1&name=wake", e.String())
}

func TestFilterExpression_Equal(t *testing.T) {
	a, _ := ParseFilterExpression("a=1&b=2")
	b, _ := ParseFilterExpression("a=1&b=2")
	reversed, _ := ParseFilterExpression("b=2&a=1")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(reversed), "equality is order sensitive")
	assert.True(t, NewFilterExpression().Equal(nil))
}

func TestFilterExpression_StringRoundTrip(t *testing.T) {
	raw := "name=wake&id=1,2&createDate="
	e, err := ParseFilterExpression(raw)
	require.NoError(t, err)

	again, err := ParseFilterExpression(e.String())
	require.NoError(t, err)
	assert.True(t, e.Equal(again))
}

func TestFilterExpression_Render(t *testing.T) {
	e, err := ParseFilterExpression("name=wake&id=1,2&name=up")
	require.NoError(t, err)

	fragment, err := e.Render(echoTranslator{})
	require.NoError(t, err)
	assert.Equal(t,
		"name in (:p0_0_name) AND id in (:p1_0_id,:p1_1_id) AND name in (:p2_0_name)",
		fragment)

	params, err := e.Parameters(echoTranslator{})
	require.NoError(t, err)
	assert.Equal(t, Params{
		{Name: "p0_0_name", Value: "wake"},
		{Name: "p1_0_id", Value: int64(1)},
		{Name: "p1_1_id", Value: int64(2)},
		{Name: "p2_0_name", Value: "up"},
	}, params)
}

func TestFilterExpression_RenderEmpty(t *testing.T) {
	fragment, err := NewFilterExpression().Render(echoTranslator{})
	require.NoError(t, err)
	assert.Empty(t, fragment)

	params, err := NewFilterExpression().Parameters(echoTranslator{})
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestFilterExpression_RenderRejectsBadField(t *testing.T) {
	e, err := ParseFilterExpression("name;drop table=1")
	require.NoError(t, err)

	_, err = e.Render(echoTranslator{})
	assert.True(t, errors.Is(err, ErrMalformedFilter))
}

func TestFilterExpression_ParameterCardinality(t *testing.T) {
	filters := []string{
		"k1=v1",
		"k1=v1&k2=v2,v3",
		"id=1,,x,4&name=a,b",
		"a=&b=1",
		"name=a&name=b,c,d&createDate=5",
	}

	for _, raw := range filters {
		t.Run(raw, func(t *testing.T) {
			e, err := ParseFilterExpression(raw)
			require.NoError(t, err)

			expected := 0
			for _, term := range e.Terms() {
				expected += len(term.Values())
			}

			params, err := e.Parameters(echoTranslator{})
			require.NoError(t, err)
			assert.Len(t, params, expected)
		})
	}
}
