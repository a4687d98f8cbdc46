package model

import "time"

// Giveaway records a running giveaway and when it completes. The message
// holding the entry reaction lives in ChannelID/MessageID.
type Giveaway struct {
	GiveawayID string    `db:"giveaway_id"`
	GuildID    string    `db:"guild_id"`
	ChannelID  string    `db:"channel_id"`
	MessageID  string    `db:"message_id"`
	Prize      string    `db:"prize"`
	Winners    int       `db:"winners"`
	ExpiresAt  time.Time `db:"expires_at"`
}
