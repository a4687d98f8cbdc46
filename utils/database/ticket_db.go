package database

import (
	"fmt"
	"lordcord/model"

	"github.com/jmoiron/sqlx"
)

// AddTicketDeletion inserts or replaces the pending deletion record for a
// ticket channel.
func AddTicketDeletion(db *sqlx.DB, t model.TicketDeletion) error {
	query := `INSERT OR REPLACE INTO ticket_deletions (channel_id, guild_id, closed_by, expires_at)
              VALUES (:channel_id, :guild_id, :closed_by, :expires_at)`

	if _, err := db.NamedExec(query, t); err != nil {
		return fmt.Errorf("failed to insert ticket deletion: %w", err)
	}
	return nil
}

// ListTicketDeletions retrieves every pending ticket deletion.
func ListTicketDeletions(db *sqlx.DB) ([]model.TicketDeletion, error) {
	var tickets []model.TicketDeletion
	if err := db.Select(&tickets, "SELECT * FROM ticket_deletions"); err != nil {
		return nil, fmt.Errorf("failed to list ticket deletions: %w", err)
	}
	return tickets, nil
}

// DeleteTicketDeletion removes the pending deletion record for a channel.
func DeleteTicketDeletion(db *sqlx.DB, channelID string) error {
	query := "DELETE FROM ticket_deletions WHERE channel_id = ?"
	if _, err := db.Exec(query, channelID); err != nil {
		return fmt.Errorf("failed to delete ticket deletion for channel %s: %w", channelID, err)
	}
	return nil
}
