package database

import (
	"database/sql"
	"errors"
	"fmt"
	"lordcord/model"

	"github.com/jmoiron/sqlx"
)

// AddGiveaway inserts a new giveaway record.
func AddGiveaway(db *sqlx.DB, g model.Giveaway) error {
	query := `INSERT INTO giveaways (giveaway_id, guild_id, channel_id, message_id, prize, winners, expires_at)
              VALUES (:giveaway_id, :guild_id, :channel_id, :message_id, :prize, :winners, :expires_at)`

	if _, err := db.NamedExec(query, g); err != nil {
		return fmt.Errorf("failed to insert giveaway: %w", err)
	}
	return nil
}

// ListGiveaways retrieves every running giveaway across all guilds.
func ListGiveaways(db *sqlx.DB) ([]model.Giveaway, error) {
	var giveaways []model.Giveaway
	if err := db.Select(&giveaways, "SELECT * FROM giveaways"); err != nil {
		return nil, fmt.Errorf("failed to list giveaways: %w", err)
	}
	return giveaways, nil
}

// GetGiveaway retrieves one giveaway by id. Returns nil without error when
// the giveaway no longer exists; a completed giveaway's record is gone.
func GetGiveaway(db *sqlx.DB, giveawayID string) (*model.Giveaway, error) {
	var g model.Giveaway
	err := db.Get(&g, "SELECT * FROM giveaways WHERE giveaway_id = ?", giveawayID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway %s: %w", giveawayID, err)
	}
	return &g, nil
}

// DeleteGiveaway removes a giveaway record.
func DeleteGiveaway(db *sqlx.DB, giveawayID string) error {
	query := "DELETE FROM giveaways WHERE giveaway_id = ?"
	if _, err := db.Exec(query, giveawayID); err != nil {
		return fmt.Errorf("failed to delete giveaway %s: %w", giveawayID, err)
	}
	return nil
}
