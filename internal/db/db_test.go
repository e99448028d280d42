package db

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", nil)
	assert.Error(t, err)
}

func TestStartup_MigratesReachableDatabase(t *testing.T) {
	gormDB, err := Open(DriverSQLite, "file:startup?mode=memory&cache=shared", nil)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	ok := Startup(context.Background(), gormDB, fastPolicy(0), false, log)
	require.True(t, ok)

	for _, m := range Models() {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
	assert.True(t, gormDB.Migrator().HasTable("task_categories"))
	assert.True(t, gormDB.Migrator().HasTable("user_roles"))
}

func TestStartup_UnreachableDatabaseIsNotFatal(t *testing.T) {
	gormDB, err := Open(DriverPostgres, "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1", nil)
	require.NoError(t, err, "opening must not contact the server")

	log, hook := test.NewNullLogger()
	ok := Startup(context.Background(), gormDB, fastPolicy(0), false, log)

	assert.False(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestOpen_RoutesStatementLogsToLogrus(t *testing.T) {
	log, hook := test.NewNullLogger()
	gormDB, err := Open(DriverSQLite, MemoryDSN("gormlog"), log)
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))
	hook.Reset()

	var user model.User
	err = gormDB.Where("email = ?", "nobody@x.io").First(&user).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries(), "a missed lookup is not an error")

	var n int
	require.Error(t, gormDB.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "gorm", entry.Data["component"])
	assert.Contains(t, entry.Data["sql"], "no_such_table")
}

func TestOpen_NilLoggerIsSilent(t *testing.T) {
	gormDB, err := Open(DriverSQLite, MemoryDSN("gormsilent"), nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		var n int
		_ = gormDB.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error
	})
}
