package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// Supported values for the DB_DRIVER setting.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open returns a GORM DB for the given driver without contacting the server.
// Connectivity is checked separately by Ping so that an unreachable database
// does not prevent the process from starting. Statement errors and slow queries
// go to log; a nil log silences gorm.
func Open(driver, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: true})
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		TranslateError:       true,
		Logger:               newGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// Ping checks connectivity, retrying transient failures according to policy.
func Ping(ctx context.Context, db *gorm.DB, policy RetryPolicy) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return Retry(ctx, policy, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, policy.commandTimeout())
		defer cancel()
		return sqlDB.PingContext(pingCtx)
	})
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Task{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops the task domain tables, join tables included. Identity tables are kept.
func Reset(db *gorm.DB, log logrus.FieldLogger) {
	tables := []interface{}{"task_categories", &model.Task{}, &model.Category{}}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			log.WithError(err).Warn("failed to drop table (may not exist)")
		}
	}
}

// Startup pings the database and, when reachable, migrates the schema.
// It reports whether the database is usable; failures are logged, never fatal,
// so requests can fail individually until the database comes back.
func Startup(ctx context.Context, db *gorm.DB, policy RetryPolicy, reset bool, log logrus.FieldLogger) bool {
	log.Info("checking database connectivity")
	if err := Ping(ctx, db, policy); err != nil {
		log.WithError(err).Error("database unreachable, skipping migrations and seeding")
		return false
	}
	log.Info("database connection established")

	if reset {
		log.Warn("RESET_DB=true detected, dropping task tables")
		Reset(db, log)
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Error("database migration failed")
		return false
	}
	log.Info("database migration completed")
	return true
}

// MemoryDSN returns the DSN of a named in-memory SQLite database.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// OpenMemory opens and migrates a private in-memory SQLite database.
// The pool is pinned to one connection so the database outlives idle connections
// and writers never contend for the shared-cache lock.
func OpenMemory(name string) (*gorm.DB, error) {
	conn, err := Open(DriverSQLite, MemoryDSN(name), nil)
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}
