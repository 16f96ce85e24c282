package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/comanda/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pingTimeout bounds the health check so a hung connection cannot stall /health
const pingTimeout = 2 * time.Second

// Database is the PostgreSQL connection shared by the product and tab repositories
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewDatabase connects to PostgreSQL, sizes the pool and verifies the connection.
// A nil gormLogger silences GORM.
func NewDatabase(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d, err := wrapDatabase(db)
	if err != nil {
		return nil, err
	}
	d.sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	d.sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	d.sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	d.sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := d.Ping(); err != nil {
		_ = d.sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func wrapDatabase(db *gorm.DB) (*Database, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// SQL returns the pooled handle, for golang-migrate and pool metrics
func (d *Database) SQL() *sql.DB {
	return d.sqlDB
}

// Ping checks that PostgreSQL answers within pingTimeout
func (d *Database) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := d.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// PoolStats returns the connection pool statistics
func (d *Database) PoolStats() sql.DBStats {
	return d.sqlDB.Stats()
}

// Close closes every pooled connection
func (d *Database) Close() error {
	return d.sqlDB.Close()
}
