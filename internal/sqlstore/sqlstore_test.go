package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/sysstats/internal/tablefunc"
)

func diskResult() *tablefunc.Result {
	return &tablefunc.Result{
		Function: "sys_disk_info",
		Columns: []tablefunc.Column{
			{Name: "mount_point", Type: tablefunc.Text},
			{Name: "file_system_type", Type: tablefunc.Text},
			{Name: "total_space", Type: tablefunc.Integer},
		},
		Rows: [][]interface{}{
			{"/", "ext4", uint64(4096000000)},
			{"/data", "xfs", uint64(2000)},
			{"/huge", "zfs", ^uint64(0)},
		},
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadAndQuery(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, diskResult()))

	res, err := s.Query(ctx, "SELECT mount_point, total_space FROM sys_disk_info WHERE file_system_type = 'ext4'")
	require.NoError(t, err)
	assert.Equal(t, QueryName, res.Function)
	assert.Equal(t, []string{"mount_point", "total_space"}, res.ColumnNames())
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []interface{}{"/", int64(4096000000)}, res.Rows[0])

	records, ok := res.Records.([]map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/", records[0]["mount_point"])
}

func TestLoadReplacesTable(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, diskResult()))
	require.NoError(t, s.Load(ctx, diskResult()))

	res, err := s.Query(ctx, "SELECT count(*) AS n FROM sys_disk_info")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows[0][0])
}

func TestLoadClampsLargeUnsigned(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, diskResult()))

	res, err := s.Query(ctx, "SELECT total_space FROM sys_disk_info WHERE mount_point = '/huge'")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), res.Rows[0][0])
}

func TestQueryError(t *testing.T) {
	s := openStore(t)
	_, err := s.Query(context.Background(), "SELECT * FROM missing_table")
	assert.Error(t, err)
}

func TestEmptyResult(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, &tablefunc.Result{
		Function: "sys_network_info",
		Columns:  []tablefunc.Column{{Name: "interface_name", Type: tablefunc.Text}},
	}))

	res, err := s.Query(ctx, "SELECT * FROM sys_network_info")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, []string{"interface_name"}, res.ColumnNames())
}

func TestReferenced(t *testing.T) {
	names := []string{"sys_cpu_info", "sys_memory_info", "sys_disk_info", "sys_os_info"}

	got := Referenced("select * from SYS_DISK_INFO d join sys_os_info o on 1=1", names)
	assert.Equal(t, []string{"sys_disk_info", "sys_os_info"}, got)

	assert.Empty(t, Referenced("select * from sys_disk_info_old", names))
	assert.Empty(t, Referenced("select 1", names))
}
