package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbridge/internal/testutil"
	"github.com/leapstack-labs/leapbridge/internal/warehouse"
	"github.com/leapstack-labs/leapbridge/pkg/envelope"
	"github.com/leapstack-labs/leapbridge/pkg/source"
)

// stubConnector hands out pre-built connections in order, one per command.
type stubConnector struct {
	dbs   []*sql.DB
	err   error
	opens int
}

func (s *stubConnector) Connect(_ context.Context, _ source.Config) (*source.Conn, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.opens >= len(s.dbs) {
		return nil, fmt.Errorf("unexpected connection attempt %d", s.opens)
	}
	db := s.dbs[s.opens]
	s.opens++
	return source.NewConn(db, nil), nil
}

func (s *stubConnector) DriverName() string { return "mock" }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	return db, mock
}

func newBridge(t *testing.T, conn source.Connector, session *warehouse.Session) *Bridge {
	t.Helper()
	return New(Config{
		Connector: conn,
		SourceCfg: source.Config{Type: "postgres"},
		Session:   session,
		Logger:    testutil.NewTestLogger(t),
	})
}

func dispatchOne(t *testing.T, b *Bridge, kind Kind, args ...any) envelope.Result {
	t.Helper()
	env := &envelope.Envelope{Commands: []envelope.Command{{Index: 0, Args: args}}}
	resp := b.Dispatch(context.Background(), kind, env)
	require.Len(t, resp.Results, 1)
	return resp.Results[0]
}

func TestQueryReturnsHeaderAndRows(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), "bob"))
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	res := dispatchOne(t, b, KindQuery, "SELECT id, name FROM users")

	rows, ok := res.Payload.([][]any)
	require.True(t, ok, "payload should be a row sequence")
	require.Len(t, rows, 3, "header plus two data rows")
	assert.Equal(t, []any{"id", "name"}, rows[0])
	assert.Equal(t, []any{int64(1), "alice"}, rows[1])
	assert.Equal(t, []any{int64(2), "bob"}, rows[2])

	assert.NoError(t, mock.ExpectationsWereMet(), "connection must be released exactly once")
}

func TestQueryErrorIsReportedPerCommand(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT broken").WillReturnError(assert.AnError)
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	res := dispatchOne(t, b, KindQuery, "SELECT broken")

	msg, ok := res.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Error: ")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryNormalizesByteColumns(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT note FROM t").WillReturnRows(
		sqlmock.NewRows([]string{"note"}).AddRow([]byte("hello")))
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	res := dispatchOne(t, b, KindQuery, "SELECT note FROM t")

	rows := res.Payload.([][]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "hello", rows[1][0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteReturnsSuccess(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	res := dispatchOne(t, b, KindExec, "DELETE FROM t")

	assert.Equal(t, SuccessMarker, res.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEmptyValuesSkipsConnection(t *testing.T) {
	conn := &stubConnector{}

	b := newBridge(t, conn, nil)
	res := dispatchOne(t, b, KindInsert, "INSERT INTO t VALUES ($1)", []any{})

	assert.Equal(t, SuccessMarker, res.Payload)
	assert.Zero(t, conn.opens, "no connection may be opened for an empty tuple list")
}

func TestInsertExecutesOncePerTupleAndCommits(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t VALUES ($1, $2)").
		WithArgs(float64(1), "a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO t VALUES ($1, $2)").
		WithArgs(float64(2), "b").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	res := dispatchOne(t, b, KindInsert, "INSERT INTO t VALUES ($1, $2)",
		[]any{[]any{float64(1), "a"}, []any{float64(2), "b"}})

	assert.Equal(t, SuccessMarker, res.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t VALUES ($1)").
		WithArgs(float64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO t VALUES ($1)").
		WithArgs(float64(2)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	res := dispatchOne(t, b, KindInsert, "INSERT INTO t VALUES ($1)",
		[]any{[]any{float64(1)}, []any{float64(2)}})

	msg, ok := res.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Error: ")
	assert.Contains(t, msg, "insert tuple 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyToWarehouse(t *testing.T) {
	srcDB, srcMock := newMock(t)
	srcMock.ExpectQuery("SELECT * FROM src").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), "o'brien").
			AddRow(int64(3), nil))
	srcMock.ExpectClose()

	whDB, whMock := newMock(t)
	whMock.ExpectExec("INSERT INTO dst (id, name) VALUES (1, 'alice'), (2, 'o''brien'), (3, NULL)").
		WillReturnResult(sqlmock.NewResult(0, 3))

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{srcDB}}, warehouse.NewSession(whDB, nil))
	res := dispatchOne(t, b, KindCopy, "src", "dst")

	assert.Equal(t, "Successfully copied 3 rows from src to dst", res.Payload)
	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, whMock.ExpectationsWereMet())
}

func TestCopyEmptySourceTable(t *testing.T) {
	srcDB, srcMock := newMock(t)
	srcMock.ExpectQuery("SELECT * FROM src").WillReturnRows(
		sqlmock.NewRows([]string{"id"}))
	srcMock.ExpectClose()

	whDB, whMock := newMock(t)

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{srcDB}}, warehouse.NewSession(whDB, nil))
	res := dispatchOne(t, b, KindCopy, "src", "dst")

	assert.Equal(t, "Successfully copied 0 rows from src to dst", res.Payload)
	assert.NoError(t, srcMock.ExpectationsWereMet())
	assert.NoError(t, whMock.ExpectationsWereMet(), "no warehouse statement for an empty source table")
}

func TestCopyWarehouseFailure(t *testing.T) {
	srcDB, srcMock := newMock(t)
	srcMock.ExpectQuery("SELECT * FROM src").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	srcMock.ExpectClose()

	whDB, whMock := newMock(t)
	whMock.ExpectExec("INSERT INTO dst (id) VALUES (1)").WillReturnError(assert.AnError)

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{srcDB}}, warehouse.NewSession(whDB, nil))
	res := dispatchOne(t, b, KindCopy, "src", "dst")

	msg, ok := res.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Error: ")
	assert.Contains(t, msg, "failed to insert data into target table")
	assert.NoError(t, srcMock.ExpectationsWereMet(), "source connection must be released on the failure path")
}

func TestCopyWithoutSession(t *testing.T) {
	conn := &stubConnector{}

	b := newBridge(t, conn, nil)
	res := dispatchOne(t, b, KindCopy, "src", "dst")

	msg, ok := res.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, msg, ErrSessionNotInitialized.Error())
	assert.Zero(t, conn.opens)
}

func TestUnknownCommandKind(t *testing.T) {
	b := newBridge(t, &stubConnector{}, nil)
	res := dispatchOne(t, b, Kind("bogus"), "whatever")

	msg, ok := res.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "unknown command")
}

func TestConnectionErrorIsReportedPerCommand(t *testing.T) {
	connErr := &source.ConnectionError{Engine: "postgres", Err: assert.AnError}

	b := newBridge(t, &stubConnector{err: connErr}, nil)
	res := dispatchOne(t, b, KindQuery, "SELECT 1")

	msg, ok := res.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Error: ")
	assert.Contains(t, msg, "cannot connect to postgres source")
}

func TestSiblingCommandsSurviveAFailure(t *testing.T) {
	db1, mock1 := newMock(t)
	mock1.ExpectQuery("SELECT broken").WillReturnError(assert.AnError)
	mock1.ExpectClose()

	db2, mock2 := newMock(t)
	mock2.ExpectQuery("SELECT 1").WillReturnRows(
		sqlmock.NewRows([]string{"x"}).AddRow(int64(1)))
	mock2.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db1, db2}}, nil)
	env := &envelope.Envelope{Commands: []envelope.Command{
		{Index: 0, Args: []any{"SELECT broken"}},
		{Index: 1, Args: []any{"SELECT 1"}},
	}}
	resp := b.Dispatch(context.Background(), KindQuery, env)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 0, resp.Results[0].Index)
	assert.Contains(t, resp.Results[0].Payload.(string), "Error: ")
	assert.Equal(t, 1, resp.Results[1].Index)
	assert.IsType(t, [][]any{}, resp.Results[1].Payload)

	assert.NoError(t, mock1.ExpectationsWereMet())
	assert.NoError(t, mock2.ExpectationsWereMet())
}

func TestVerifySource(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(
		sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectClose()

	b := newBridge(t, &stubConnector{dbs: []*sql.DB{db}}, nil)
	require.NoError(t, b.VerifySource(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
