package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteSchema = `
CREATE TABLE products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	price DECIMAL(12,2) NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	available BOOLEAN NOT NULL DEFAULT 1,
	discontinued BOOLEAN NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE tabs (
	id TEXT PRIMARY KEY,
	number INTEGER UNIQUE,
	customer_name TEXT NOT NULL,
	customer_identity TEXT NOT NULL DEFAULT '',
	table_ref TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'open',
	total DECIMAL(12,2) NOT NULL DEFAULT 0,
	closed_at DATETIME,
	payment_method TEXT,
	amount_paid DECIMAL(12,2),
	change_due DECIMAL(12,2),
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TRIGGER tabs_number AFTER INSERT ON tabs WHEN NEW.number IS NULL
BEGIN
	UPDATE tabs SET number = (SELECT COALESCE(MAX(number), 0) + 1 FROM tabs) WHERE id = NEW.id;
END;
CREATE TABLE tab_items (
	id TEXT PRIMARY KEY,
	tab_id TEXT NOT NULL REFERENCES tabs(id) ON DELETE CASCADE,
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity >= 1),
	unit_price DECIMAL(12,2) NOT NULL,
	total_price DECIMAL(12,2) NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL
);
`

// setupTestDB opens an in-memory SQLite database with the comanda schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec(sqliteSchema).Error)
	return db
}
