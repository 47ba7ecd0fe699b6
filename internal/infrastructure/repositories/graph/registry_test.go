package graph

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

type fakeResult struct {
	records []*neo4j.Record
	pos     int
}

func (r *fakeResult) Next(context.Context) bool {
	r.pos++
	return r.pos <= len(r.records)
}

func (r *fakeResult) Record() *neo4j.Record { return r.records[r.pos-1] }
func (r *fakeResult) Err() error            { return nil }

type fakeSession struct {
	cypher  []string
	params  []map[string]any
	records []*neo4j.Record
	closed  int
}

func (s *fakeSession) Run(_ context.Context, cypher string, params map[string]any) (result, error) {
	s.cypher = append(s.cypher, cypher)
	s.params = append(s.params, params)
	return &fakeResult{records: s.records}, nil
}

func (s *fakeSession) Close(context.Context) error {
	s.closed++
	return nil
}

func propsRecord(props map[string]any) *neo4j.Record {
	return &neo4j.Record{Keys: []string{propsKey}, Values: []any{props}}
}

func newTestRegistry(sess *fakeSession) *Registry[*models.Todo] {
	r := NewRegistry(nil, "", "Todo", models.TodoFromProperties)
	r.newSession = func(context.Context) runner { return sess }
	return r
}

func TestTranslator_RenderFragment(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "name=wake", expected: "n.name CONTAINS $p0_0_name"},
		{raw: "name=a,b", expected: "(n.name CONTAINS $p0_0_name OR n.name CONTAINS $p0_1_name)"},
		{raw: "id=1,2", expected: "n.id IN [$p0_0_id, $p0_1_id]"},
		{raw: "name=", expected: "(n.name IS NULL OR n.name = $p0_0_name)"},
		{raw: "owner.name=ann", expected: "owner.name CONTAINS $p0_0_owner_name"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			e, err := search.ParseFilterExpression(tt.raw)
			require.NoError(t, err)
			fragment, err := e.Render(Translator{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fragment)
		})
	}
}

func TestRegistry_Find(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{
		propsRecord(map[string]any{"id": int64(1), "name": "wake up", "createdBy": int64(4)}),
	}}
	r := newTestRegistry(sess)

	c := search.NewSearchCriteria()
	require.NoError(t, c.AddFilter("name", "wake"))
	c.SortBy = "name desc"
	c.QueryVariables = "(n)-[:OWNED_BY]->(owner:User)"
	fragment, err := c.Filter.Render(r.Translator())
	require.NoError(t, err)
	params, err := c.Filter.Parameters(r.Translator())
	require.NoError(t, err)
	fields, err := c.SortFields()
	require.NoError(t, err)

	q := ports.Query{
		Criteria: c,
		Filter:   fragment,
		Params:   params,
		Sort:     fields,
		Window:   search.Window{Lower: 2, Upper: 4, Applied: true},
	}

	var got []*models.Todo
	require.NoError(t, r.Find(context.Background(), q, func(todo *models.Todo) error {
		got = append(got, todo)
		return nil
	}))

	require.Len(t, got, 1)
	assert.Equal(t, "wake up", got[0].Name)
	assert.Equal(t, int64(4), got[0].CreatedBy)
	assert.Equal(t,
		"MATCH (n:Todo) MATCH (n)-[:OWNED_BY]->(owner:User) WHERE n.name CONTAINS $p0_0_name"+
			" RETURN properties(n) AS props ORDER BY n.name DESC SKIP $row_offset LIMIT $row_limit",
		sess.cypher[0])
	assert.Equal(t, map[string]any{"p0_0_name": "wake", "row_offset": int64(2), "row_limit": int64(2)}, sess.params[0])
	assert.Equal(t, 1, sess.closed)
}

func TestRegistry_Count(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{{Keys: []string{totalKey}, Values: []any{int64(3)}}}}
	r := newTestRegistry(sess)

	n, err := r.Count(context.Background(), ports.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "MATCH (n:Todo) RETURN count(n) AS total", sess.cypher[0])
}

func TestRegistry_FindByIDNotFound(t *testing.T) {
	r := newTestRegistry(&fakeSession{})
	_, err := r.FindByID(context.Background(), 5)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestRegistry_Insert(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{propsRecord(map[string]any{"id": int64(11), "name": "wake up"})}}
	r := newTestRegistry(sess)

	created, err := r.Insert(context.Background(), models.NewTodo("wake up"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, "Todo", sess.params[0][argLabel])
	assert.NotContains(t, sess.params[0][argProps], "id")
}

func TestRegistry_DeleteMissing(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{{Keys: []string{totalKey}, Values: []any{int64(0)}}}}
	r := newTestRegistry(sess)

	todo := models.NewTodo("x")
	todo.ID = 9
	err := r.Delete(context.Background(), todo)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
	assert.Equal(t, int64(9), sess.params[0][argID])
}
