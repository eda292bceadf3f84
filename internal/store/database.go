package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, registered as "sqlite"

	"github.com/fortuna/courtside/internal/logger"
)

// Database wraps the gorm handle and the pool underneath it.
type Database struct {
	gorm   *gorm.DB
	conn   *sql.DB
	driver string
}

// NewDatabase opens a database for the given driver ("postgres" or "sqlite").
func NewDatabase(driver, dsn string, log *logger.Logger) (*Database, error) {
	switch driver {
	case "postgres":
		return OpenPostgres(dsn, log)
	case "sqlite":
		return OpenSQLite(dsn, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenPostgres connects through lib/pq and hands the pool to gorm.
func OpenPostgres(dsn string, log *logger.Logger) (*Database, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormConfig(log))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &Database{gorm: db, conn: conn, driver: "postgres"}, nil
}

// OpenSQLite opens a SQLite file through modernc.org/sqlite. Used for local
// development and tests.
func OpenSQLite(dsn string, log *logger.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{gorm: db, conn: conn, driver: "sqlite"}, nil
}

func gormConfig(log *logger.Logger) *gorm.Config {
	return &gorm.Config{
		// Deletes are unconditional, so dangling references must be allowed.
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			gormWriter{log: log},
			gormLogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// gormWriter routes gorm's printf-style output into zap.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	if w.log == nil {
		return
	}
	w.log.SugaredLogger.Warnf(format, args...)
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the gorm handle for queries
func (db *Database) DB() *gorm.DB {
	return db.gorm
}

// Driver reports which backend is in use.
func (db *Database) Driver() string {
	return db.driver
}

// AutoMigrate creates or updates the teams, players, games and stats tables.
func (db *Database) AutoMigrate() error {
	if err := db.gorm.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
