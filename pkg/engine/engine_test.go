package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlbridge/sqlbridge/pkg/config"
	"github.com/sqlbridge/sqlbridge/pkg/errcat"
	"github.com/sqlbridge/sqlbridge/pkg/logging"
)

// failingDriver refuses every open, standing in for a database that was
// never reachable.
type failingDriver struct{}

func (failingDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("connection refused")
}

func init() {
	sql.Register("sqlbridge-failing", failingDriver{})
}

// newExhaustedEngine returns an engine whose pool holds a single connection,
// so the backup adoption immediately exhausts it and every later acquire
// lands on the fallback path.
func newExhaustedEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	return New(db, config.ProviderSettings{}, 50*time.Millisecond, logging.New("")), mock
}

func TestCreateConnectionReturnsOrdinaryConnection(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine := New(db, config.ProviderSettings{}, time.Second, logging.New(""))
	conn, err := engine.CreateConnection(context.Background())
	require.NoError(t, err)
	assert.False(t, conn.IsBackup())
	assert.NotEmpty(t, conn.ID)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close()) // idempotent
}

func TestFirstOpenFailureIsFatal(t *testing.T) {
	db, err := sql.Open("sqlbridge-failing", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine := New(db, config.ProviderSettings{}, 50*time.Millisecond, logging.New(""))
	_, err = engine.CreateConnection(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errcat.New("CONNECTION_FAILED", ""))
}

func TestPoolExhaustionServesBackup(t *testing.T) {
	engine, _ := newExhaustedEngine(t)

	// the single pool slot becomes the backup, so this acquire times out
	// and the engine falls back instead of failing
	conn, err := engine.CreateConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, conn.IsBackup())
	require.NoError(t, conn.Close())

	// every subsequent call keeps landing on the backup
	again, err := engine.CreateConnection(context.Background())
	require.NoError(t, err)
	assert.True(t, again.IsBackup())
	require.NoError(t, again.Close())
}

func TestUnhealthyBackupIsReopened(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	ctx := context.Background()

	engine := New(db, config.ProviderSettings{}, 50*time.Millisecond, logging.New(""))

	// no ping expectation is registered, so the retained backup fails its
	// health check and the engine closes it and opens a fresh one
	conn, err := engine.CreateConnection(ctx)
	require.NoError(t, err)
	require.True(t, conn.IsBackup())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(int64(1)))
	var v int64
	require.NoError(t, conn.conn.QueryRowContext(ctx, "SELECT 1").Scan(&v))
	assert.Equal(t, int64(1), v)
	require.NoError(t, conn.Close())

	// a backup that passes its health check is served as-is
	mock.ExpectPing()
	again, err := engine.CreateConnection(ctx)
	require.NoError(t, err)
	assert.True(t, again.IsBackup())
	require.NoError(t, again.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackupUseIsSerialized(t *testing.T) {
	engine, _ := newExhaustedEngine(t)
	ctx := context.Background()

	first, err := engine.CreateConnection(ctx)
	require.NoError(t, err)
	require.True(t, first.IsBackup())

	acquired := make(chan *Connection)
	go func() {
		second, err := engine.CreateConnection(ctx)
		if err != nil {
			close(acquired)
			return
		}
		acquired <- second
	}()

	select {
	case <-acquired:
		t.Fatal("second caller obtained the backup while the first still held it")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, first.Close())

	select {
	case second := <-acquired:
		require.NotNil(t, second)
		assert.True(t, second.IsBackup())
		require.NoError(t, second.Close())
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never obtained the backup after release")
	}
}

func TestBackupStatementsDoNotInterleave(t *testing.T) {
	engine, mock := newExhaustedEngine(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 2")).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(int64(2)))

	// a reader holds the backup until it is closed
	rows, err := engine.ExecuteReader(ctx, "SELECT 1", nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := engine.ExecuteScalar(ctx, "SELECT 2", nil)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("overlapping call ran while the reader held the backup")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, rows.Close())
	require.NoError(t, <-done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineCloseReleasesBackup(t *testing.T) {
	engine, mock := newExhaustedEngine(t)

	conn, err := engine.CreateConnection(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	mock.ExpectClose()
	assert.NoError(t, engine.Close())
}
