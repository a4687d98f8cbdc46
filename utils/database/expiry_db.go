package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitExpiryDB opens the expiry record database and ensures all tables exist.
func InitExpiryDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to expiry database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS temp_bans (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        reason TEXT NOT NULL DEFAULT '',
        expires_at DATETIME NOT NULL,
        UNIQUE(guild_id, user_id)
    );
    CREATE TABLE IF NOT EXISTS temp_roles (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        expires_at DATETIME NOT NULL,
        UNIQUE(guild_id, user_id, role_id)
    );
    CREATE TABLE IF NOT EXISTS giveaways (
        giveaway_id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        message_id TEXT NOT NULL,
        prize TEXT NOT NULL,
        winners INTEGER NOT NULL DEFAULT 1,
        expires_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS ticket_deletions (
        channel_id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        closed_by TEXT NOT NULL DEFAULT '',
        expires_at DATETIME NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create expiry tables: %w", err)
	}

	return db, nil
}
