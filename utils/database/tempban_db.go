package database

import (
	"fmt"
	"lordcord/model"

	"github.com/jmoiron/sqlx"
)

// AddTempBan inserts or replaces the temp ban record for a member. A
// second ban for the same member supersedes the first, matching the
// cancel-and-replace behavior of the timer registry.
func AddTempBan(db *sqlx.DB, ban model.TempBan) error {
	query := `INSERT OR REPLACE INTO temp_bans (guild_id, user_id, reason, expires_at)
              VALUES (:guild_id, :user_id, :reason, :expires_at)`

	if _, err := db.NamedExec(query, ban); err != nil {
		return fmt.Errorf("failed to insert temp ban: %w", err)
	}
	return nil
}

// ListTempBans retrieves every temp ban record across all guilds.
func ListTempBans(db *sqlx.DB) ([]model.TempBan, error) {
	var bans []model.TempBan
	if err := db.Select(&bans, "SELECT * FROM temp_bans"); err != nil {
		return nil, fmt.Errorf("failed to list temp bans: %w", err)
	}
	return bans, nil
}

// GetTempBan retrieves the temp ban record for a member, if any.
func GetTempBan(db *sqlx.DB, guildID, userID string) (*model.TempBan, error) {
	var ban model.TempBan
	query := "SELECT * FROM temp_bans WHERE guild_id = ? AND user_id = ?"
	if err := db.Get(&ban, query, guildID, userID); err != nil {
		return nil, err
	}
	return &ban, nil
}

// DeleteTempBan removes the temp ban record for a member. Deleting an
// absent record is not an error.
func DeleteTempBan(db *sqlx.DB, guildID, userID string) error {
	query := "DELETE FROM temp_bans WHERE guild_id = ? AND user_id = ?"
	if _, err := db.Exec(query, guildID, userID); err != nil {
		return fmt.Errorf("failed to delete temp ban for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}
