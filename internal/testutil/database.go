package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Portfolio table
		CREATE TABLE IF NOT EXISTS portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			is_archived BOOLEAN DEFAULT FALSE NOT NULL
		);

		-- Sleeve table
		CREATE TABLE IF NOT EXISTS sleeve (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			target_pct FLOAT DEFAULT 0 NOT NULL,
			is_cash BOOLEAN DEFAULT FALSE NOT NULL,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE,
			CONSTRAINT unique_sleeve_name UNIQUE (portfolio_id, name)
		);

		-- Sleeve-security assignment table
		CREATE TABLE IF NOT EXISTS sleeve_security (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			sleeve_id VARCHAR(36) NOT NULL,
			security_id VARCHAR(20) NOT NULL,
			rank INTEGER DEFAULT 999 NOT NULL,
			target_pct FLOAT DEFAULT 0 NOT NULL,
			is_legacy BOOLEAN DEFAULT FALSE NOT NULL,
			FOREIGN KEY(sleeve_id) REFERENCES sleeve(id) ON DELETE CASCADE,
			CONSTRAINT unique_sleeve_security UNIQUE (sleeve_id, security_id)
		);

		-- Position table
		CREATE TABLE IF NOT EXISTS position (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			account_id VARCHAR(36) NOT NULL,
			security_id VARCHAR(20) NOT NULL,
			qty FLOAT NOT NULL,
			price FLOAT NOT NULL,
			is_taxable BOOLEAN DEFAULT FALSE NOT NULL,
			unrealized_gain FLOAT,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE,
			CONSTRAINT unique_position UNIQUE (portfolio_id, account_id, security_id)
		);

		-- Wash-sale restriction table
		CREATE TABLE IF NOT EXISTS wash_sale_restriction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(20) NOT NULL,
			blocked_until DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Replacement-candidate table
		CREATE TABLE IF NOT EXISTS security_replacement (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			original_ticker VARCHAR(20) NOT NULL UNIQUE,
			replacement_ticker VARCHAR(20) NOT NULL
		);

		-- Transaction table (quoted because transaction is a reserved keyword)
		CREATE TABLE IF NOT EXISTS "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(20) NOT NULL,
			date DATE NOT NULL,
			type VARCHAR(10) NOT NULL,
			shares FLOAT NOT NULL,
			price_per_share FLOAT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		-- Broker settings table
		CREATE TABLE IF NOT EXISTS broker_settings (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			api_key_encrypted TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}
