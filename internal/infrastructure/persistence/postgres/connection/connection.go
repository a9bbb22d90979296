package connection

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RangerDjanger/BetterDay/pkg/config"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the gorm handle shared by every repository.
type Database struct {
	*gorm.DB
	dsn string
}

// Wrap adapts an existing gorm handle, such as a transaction.
func Wrap(db *gorm.DB) *Database {
	return &Database{DB: db}
}

func gormConfig(mode string) *gorm.Config {
	level := logger.Warn
	if mode == "development" {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:      logger.Default.LogMode(level),
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// describePing turns a driver error into a readable message.
func describePing(err error) error {
	var sqlErr *pq.Error
	if errors.As(err, &sqlErr) {
		return fmt.Errorf("postgres error: code=%s, message=%s, detail=%s", sqlErr.Code, sqlErr.Message, sqlErr.Detail)
	}
	return fmt.Errorf("failed to ping database: %w", err)
}

func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := cfg.Database.DSN()

	// Verify connectivity with a plain driver connection first so that
	// authentication failures surface with the postgres error code.
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create sql.DB: %w", err)
	}
	defer sqlDB.Close()

	sqlDB.SetConnMaxLifetime(10 * time.Second)
	if err := sqlDB.Ping(); err != nil {
		return nil, describePing(err)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(cfg.Server.Mode))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	maxIdleConns := 10
	maxOpenConns := 50
	lifetime := time.Hour

	if cfg.Database.MaxIdleConns > 0 {
		maxIdleConns = cfg.Database.MaxIdleConns
	}
	if cfg.Database.MaxOpenConns > 0 {
		maxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		lifetime = cfg.Database.ConnMaxLifetime
	}

	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetConnMaxLifetime(lifetime)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping connection pool: %w", err)
	}

	return &Database{
		DB:  db,
		dsn: dsn,
	}, nil
}

// Ping checks the pooled connection.
func (db *Database) Ping() error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Ping()
}

// Close releases the connection pool.
func (db *Database) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var sqlErr *pq.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
