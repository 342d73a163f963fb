package dbal_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bratiask/dbal"
	"github.com/bratiask/dbal/test/testutil"
	"github.com/bratiask/dbal/types"
)

func exampleConfig(keepReplica bool) dbal.Config {
	return dbal.Config{
		Driver:  "mysql",
		Primary: &types.BackendConfig{Host: "primary", Username: "app", Database: "orders"},
		Replicas: []types.BackendConfig{
			{Host: "replica-1", Username: "app_ro", Database: "orders"},
			{Host: "replica-2", Username: "app_ro", Database: "orders"},
		},
		KeepReplica: keepReplica,
	}
}

func newConn(t *testing.T, keepReplica bool, opts ...dbal.Option) (*dbal.Conn, *testutil.MockDriver) {
	t.Helper()

	driver := testutil.NewMockDriver()
	opts = append(opts, dbal.WithRandSource(rand.NewSource(1)))

	conn, err := dbal.New(driver, exampleConfig(keepReplica), opts...)
	require.NoError(t, err)

	return conn, driver
}

func TestNewRejectsNilDriver(t *testing.T) {
	_, err := dbal.New(nil, exampleConfig(false))
	require.ErrorIs(t, err, types.ErrNilDriver)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	driver := testutil.NewMockDriver()

	_, err := dbal.New(driver, dbal.Config{Primary: &types.BackendConfig{Host: "p"}})
	require.ErrorIs(t, err, types.ErrMissingReplicas)

	_, err = dbal.New(driver, dbal.Config{Replicas: []types.BackendConfig{{Host: "r"}}})
	require.ErrorIs(t, err, types.ErrMissingPrimary)

	// Validation happens before any connection attempt.
	require.Zero(t, driver.ConnectCount())
}

func TestConnectRejectsExplicitTarget(t *testing.T) {
	conn, driver := newConn(t, false)

	err := conn.Connect(context.Background(), types.RolePrimary)
	require.ErrorIs(t, err, types.ErrExplicitTarget)

	var confErr *types.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Zero(t, driver.ConnectCount())
}

func TestConnectDefaultsToReplica(t *testing.T) {
	conn, driver := newConn(t, false)

	require.NoError(t, conn.Connect(context.Background()))
	require.False(t, conn.IsConnectedToPrimary())
	require.Equal(t, 1, driver.ConnectCount())
	require.Contains(t, []string{"replica-1", "replica-2"}, driver.Configs[0].Host)
}

func TestReadRoutesToReplica(t *testing.T) {
	conn, driver := newConn(t, false)
	ctx := context.Background()

	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)

	require.False(t, conn.IsConnectedToPrimary())
	require.Contains(t, []string{"replica-1", "replica-2"}, driver.Configs[0].Host)
	require.Equal(t, []string{"SELECT 1"}, driver.Sessions[0].Statements)
}

func TestWriteShapedOperationsRouteToPrimary(t *testing.T) {
	tests := []struct {
		name string
		op   func(ctx context.Context, conn *dbal.Conn) error
	}{
		{"exec", func(ctx context.Context, conn *dbal.Conn) error {
			_, err := conn.ExecContext(ctx, "DELETE FROM users")
			return err
		}},
		{"prepare", func(ctx context.Context, conn *dbal.Conn) error {
			_, err := conn.PrepareContext(ctx, "INSERT INTO users (name) VALUES (?)")
			return err
		}},
		{"begin", func(ctx context.Context, conn *dbal.Conn) error {
			return conn.Begin(ctx)
		}},
		{"savepoint", func(ctx context.Context, conn *dbal.Conn) error {
			return conn.Savepoint(ctx, "before_batch")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, driver := newConn(t, false)

			require.NoError(t, tt.op(context.Background(), conn))
			require.True(t, conn.IsConnectedToPrimary())
			require.Equal(t, "primary", driver.Configs[0].Host)
		})
	}
}

func TestWriteStickiness(t *testing.T) {
	conn, driver := newConn(t, false)
	ctx := context.Background()

	// Reads before the write use a replica.
	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.False(t, conn.IsConnectedToPrimary())

	// The write promotes the session to the primary...
	_, err = conn.ExecContext(ctx, "UPDATE users SET name = ?", "a")
	require.NoError(t, err)
	require.True(t, conn.IsConnectedToPrimary())

	// ...and every later operation stays there, reads included.
	_, err = conn.QueryContext(ctx, "SELECT 2")
	require.NoError(t, err)
	require.True(t, conn.IsConnectedToPrimary())

	require.NoError(t, conn.EnsureConnectedToReplica(ctx))
	require.True(t, conn.IsConnectedToPrimary())

	// Two physical connects total: one replica, one primary.
	require.Equal(t, 2, driver.ConnectCount())
}

func TestKeepReplicaAllowsReadsBack(t *testing.T) {
	conn, driver := newConn(t, true)
	ctx := context.Background()

	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	replica := driver.Sessions[0]

	_, err = conn.ExecContext(ctx, "UPDATE users SET name = ?", "a")
	require.NoError(t, err)
	require.True(t, conn.IsConnectedToPrimary())

	// The original replica survives the write and serves explicit replica
	// routing again.
	require.NoError(t, conn.EnsureConnectedToReplica(ctx))
	require.False(t, conn.IsConnectedToPrimary())

	_, err = conn.QueryContext(ctx, "SELECT 2")
	require.NoError(t, err)
	require.Equal(t, []string{"SELECT 1", "SELECT 2"}, replica.Statements)
}

func TestKeepReplicaStillForcedInsideTransaction(t *testing.T) {
	conn, driver := newConn(t, true)
	ctx := context.Background()

	require.NoError(t, conn.Begin(ctx))

	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.True(t, conn.IsConnectedToPrimary())

	require.NoError(t, conn.EnsureConnectedToReplica(ctx))
	require.True(t, conn.IsConnectedToPrimary())

	require.NoError(t, conn.Rollback(ctx))

	// Outside the transaction replica routing works again.
	require.NoError(t, conn.EnsureConnectedToReplica(ctx))
	require.False(t, conn.IsConnectedToPrimary())
	require.Equal(t, 2, driver.ConnectCount())
}

func TestTransactionReadsOnPrimary(t *testing.T) {
	conn, driver := newConn(t, false)
	ctx := context.Background()

	require.NoError(t, conn.Begin(ctx))
	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, conn.Commit(ctx))

	require.Equal(t, 1, driver.ConnectCount())
	require.Equal(t, "primary", driver.Configs[0].Host)
	require.Equal(t, []string{"BEGIN", "SELECT 1", "COMMIT"}, driver.Sessions[0].Statements)
}

func TestCloseResetsAndReconnects(t *testing.T) {
	conn, driver := newConn(t, false)
	ctx := context.Background()

	_, err := conn.ExecContext(ctx, "INSERT INTO users (name) VALUES (?)", "a")
	require.NoError(t, err)
	require.True(t, conn.IsConnectedToPrimary())

	require.NoError(t, conn.Close())
	require.False(t, conn.IsConnectedToPrimary())
	require.True(t, driver.Sessions[0].Closed)

	// Close is idempotent.
	require.NoError(t, conn.Close())

	// The next operation re-triggers the lazy connect path from scratch:
	// a fresh read goes back to a replica.
	_, err = conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.False(t, conn.IsConnectedToPrimary())
	require.Equal(t, 2, driver.ConnectCount())
}

func TestConnectHook(t *testing.T) {
	var infos []dbal.ConnectInfo
	hook := func(info dbal.ConnectInfo) {
		infos = append(infos, info)
	}

	conn, _ := newConn(t, true, dbal.WithConnectHook(hook))
	ctx := context.Background()

	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "DELETE FROM users")
	require.NoError(t, err)

	require.Len(t, infos, 2)
	require.Equal(t, types.RoleReplica, infos[0].Role)
	require.Equal(t, types.RolePrimary, infos[1].Role)
	require.NotEmpty(t, infos[0].ConnID)
	require.NotEqual(t, infos[0].ConnID, infos[1].ConnID)
	require.Equal(t, "primary", infos[1].Config.Host)
}

func TestPingConnectsLazily(t *testing.T) {
	conn, driver := newConn(t, false)

	require.NoError(t, conn.PingContext(context.Background()))
	require.Equal(t, 1, driver.ConnectCount())
	require.Equal(t, []string{"PING"}, driver.Sessions[0].Statements)
}

func TestDriverErrorsPassThrough(t *testing.T) {
	conn, driver := newConn(t, false)
	ctx := context.Background()

	_, err := conn.QueryContext(ctx, "SELECT 1")
	require.NoError(t, err)

	// Statement-level failures are the driver's concern and come back
	// unmodified.
	driver.Sessions[0].QueryErr = errSyntax
	_, err = conn.QueryContext(ctx, "SELEC 1")
	require.ErrorIs(t, err, errSyntax)
}

var errSyntax = errors.New("syntax error near 'SELEC'")

func TestQueryRowSurfacesConnectError(t *testing.T) {
	conn, driver := newConn(t, false)
	driver.ConnectErr = map[string]error{
		"replica-1": errors.New("dial tcp: connection refused"),
		"replica-2": errors.New("dial tcp: connection refused"),
	}

	row, err := conn.QueryRowContext(context.Background(), "SELECT 1")
	require.Nil(t, row)
	require.Error(t, err)

	var connErr *types.ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.Equal(t, types.RoleReplica, connErr.Role)
}
