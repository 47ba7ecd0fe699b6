package orm

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

var todoColumns = []string{"id", "name", "version", "created_by", "create_date", "last_modified_by", "last_modified_date"}

func newTodo() *models.Todo {
	return &models.Todo{}
}

// mocked returns a registry over a gorm postgres session backed by sqlmock
func mocked(t *testing.T) (*Registry[*models.Todo], sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open("postgres", sqlDB)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewRegistry[*models.Todo](db, "tbl_todo", newTodo), mock
}

func query(t *testing.T, tr search.FilterTranslator, filter, sortBy, variables string, window search.Window) ports.Query {
	t.Helper()
	c := search.NewSearchCriteria()
	require.NoError(t, c.AddFilterString(filter))
	c.SortBy = sortBy
	c.QueryVariables = variables

	fragment, err := c.Filter.Render(tr)
	require.NoError(t, err)
	params, err := c.Filter.Parameters(tr)
	require.NoError(t, err)
	fields, err := c.SortFields()
	require.NoError(t, err)
	return ports.Query{Criteria: c, Filter: fragment, Params: params, Sort: fields, Window: window}
}

func sql(s string) string {
	return regexp.QuoteMeta(s)
}

func TestRegistry_TranslatorIsPositional(t *testing.T) {
	r := NewRegistry[*models.Todo](nil, "tbl_todo", newTodo)

	e, err := search.ParseFilterExpression("name=wake,dish&createdBy=")
	require.NoError(t, err)

	fragment, err := e.Render(r.Translator())
	require.NoError(t, err)
	assert.Equal(t, "(strpos(name, ?) > 0 OR strpos(name, ?) > 0) AND created_by IN (?)", fragment)

	params, err := e.Parameters(r.Translator())
	require.NoError(t, err)
	assert.Equal(t, []any{"wake", "dish", int64(-1)}, params.Values())

	null, err := search.NullTerm("createdBy")
	require.NoError(t, err)
	fragment, err = search.NewFilterExpression(null).Render(r.Translator())
	require.NoError(t, err)
	assert.Equal(t, "(created_by IS NULL OR created_by = ?)", fragment)
}

func TestRegistry_FindWindowAndOrder(t *testing.T) {
	r, mock := mocked(t)
	q := query(t, r.Translator(), "id=1,3", "name desc", "", search.Window{Lower: 1, Upper: 2, Applied: true})

	mock.ExpectQuery(sql(`SELECT * FROM "tbl_todo" WHERE (id IN ($1, $2)) ORDER BY name DESC LIMIT 1 OFFSET 1`)).
		WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows(todoColumns).AddRow(int64(1), "wake up", int64(1), int64(0), int64(0), int64(0), int64(0)))

	var got []string
	err := r.Find(context.Background(), q, func(todo *models.Todo) error {
		got = append(got, todo.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"wake up"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_FindJoinsQueryVariables(t *testing.T) {
	r, mock := mocked(t)
	join := "JOIN tbl_owner o ON o.owner_id = created_by"
	q := query(t, r.Translator(), "name=wake", "", join, search.Window{})

	mock.ExpectQuery(sql(`SELECT "tbl_todo".* FROM "tbl_todo" ` + join + ` WHERE (strpos(name, $1) > 0)`)).
		WithArgs("wake").
		WillReturnRows(sqlmock.NewRows(todoColumns))

	err := r.Find(context.Background(), q, func(*models.Todo) error {
		return errors.New("no rows expected")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_FindStopsOnConsumerError(t *testing.T) {
	r, mock := mocked(t)
	mock.ExpectQuery(sql(`SELECT * FROM "tbl_todo"`)).
		WillReturnRows(sqlmock.NewRows(todoColumns).
			AddRow(int64(1), "wake up", int64(1), int64(0), int64(0), int64(0), int64(0)).
			AddRow(int64(2), "do dishes", int64(1), int64(0), int64(0), int64(0), int64(0)))

	stop := errors.New("stop")
	calls := 0
	err := r.Find(context.Background(), ports.Query{}, func(*models.Todo) error {
		calls++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, calls)
}

func TestRegistry_Count(t *testing.T) {
	r, mock := mocked(t)
	q := query(t, r.Translator(), "createdBy=7", "name", "", search.Window{})

	mock.ExpectQuery(sql(`SELECT count(*) FROM "tbl_todo" WHERE (created_by IN ($1))`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := r.Count(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_CountBackendError(t *testing.T) {
	r, mock := mocked(t)
	failure := errors.New("connection reset")
	mock.ExpectQuery(sql(`SELECT count(*) FROM "tbl_todo"`)).WillReturnError(failure)

	_, err := r.Count(context.Background(), ports.Query{})
	require.Error(t, err)
	assert.Equal(t, failure, errors.Cause(err))
}

func TestRegistry_FindByID(t *testing.T) {
	r, mock := mocked(t)

	mock.ExpectQuery(sql(`SELECT * FROM "tbl_todo" WHERE (id = $1)`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(todoColumns).AddRow(int64(2), "do dishes", int64(3), int64(1), int64(10), int64(1), int64(20)))
	todo, err := r.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "do dishes", todo.Name)
	assert.Equal(t, int64(3), todo.Version)

	mock.ExpectQuery(sql(`SELECT * FROM "tbl_todo" WHERE (id = $1)`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(todoColumns))
	_, err = r.FindByID(context.Background(), 9)
	assert.Equal(t, ports.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_UpdateAndDeleteMissingRow(t *testing.T) {
	r, mock := mocked(t)
	todo := models.NewTodo("gone")
	todo.ID = 42

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tbl_todo" SET .* WHERE \(id = \$7\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	_, err := r.Update(context.Background(), todo)
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	mock.ExpectBegin()
	mock.ExpectExec(sql(`DELETE FROM "tbl_todo" WHERE (id = $1)`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	err = r.Delete(context.Background(), todo)
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_UpdateAndDelete(t *testing.T) {
	r, mock := mocked(t)
	todo := models.NewTodo("wake up")
	todo.ID = 1

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tbl_todo" SET "create_date" = \$1, "created_by" = \$2, .*"name" = \$5, "version" = \$6 WHERE \(id = \$7\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	got, err := r.Update(context.Background(), todo)
	require.NoError(t, err)
	assert.Same(t, todo, got)

	mock.ExpectBegin()
	mock.ExpectExec(sql(`DELETE FROM "tbl_todo" WHERE (id = $1)`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, r.Delete(context.Background(), todo))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistry_CanceledContext(t *testing.T) {
	r, _ := mocked(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Count(ctx, ports.Query{})
	assert.Equal(t, context.Canceled, err)
}

func TestColumns(t *testing.T) {
	todo := models.NewTodo("wake up")
	todo.ID = 9
	todo.LastModifiedBy = 3

	cols := columns(todo)
	assert.NotContains(t, cols, "id")
	assert.Equal(t, "wake up", cols["name"])
	assert.Equal(t, int64(3), cols["last_modified_by"])
	assert.Len(t, cols, 6)
}
