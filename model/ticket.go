package model

import "time"

// TicketDeletion records a closed ticket channel awaiting deletion after
// its grace period.
type TicketDeletion struct {
	ChannelID string    `db:"channel_id"`
	GuildID   string    `db:"guild_id"`
	ClosedBy  string    `db:"closed_by"`
	ExpiresAt time.Time `db:"expires_at"`
}
