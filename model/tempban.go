package model

import "time"

// TempBan records a ban that must be lifted at a specific time.
type TempBan struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	Reason    string    `db:"reason"`
	ExpiresAt time.Time `db:"expires_at"`
}
