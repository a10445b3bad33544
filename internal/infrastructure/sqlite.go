package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type SQLiteClient struct {
	DB *sql.DB
}

func NewSQLiteClient(path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// A single writer connection keeps credit updates serialized per the
	// concurrency contract; SQLite would lock-step them anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &SQLiteClient{DB: db}

	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (c *SQLiteClient) Migrate() error {
	ctx := context.Background()

	_, err := c.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			credits INTEGER DEFAULT 5
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	_, err = c.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			query TEXT,
			category TEXT,
			ts DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}

	_, err = c.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS daily_credits (
			user_id INTEGER PRIMARY KEY,
			last_credit_date DATE
		);
	`)
	if err != nil {
		return fmt.Errorf("create daily_credits table: %w", err)
	}

	// blocked_by is a soft reference; users are never deleted.
	_, err = c.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS blocked_users (
			user_id INTEGER PRIMARY KEY,
			blocked_by INTEGER,
			reason TEXT,
			blocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (blocked_by) REFERENCES users (user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("create blocked_users table: %w", err)
	}

	_, err = c.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS special_users (
			user_id INTEGER PRIMARY KEY,
			label TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("create special_users table: %w", err)
	}

	return nil
}

func (c *SQLiteClient) Close() error {
	return c.DB.Close()
}
