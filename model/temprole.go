package model

import "time"

// TempRole records a role grant that must be removed at a specific time.
type TempRole struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	RoleID    string    `db:"role_id"`
	ExpiresAt time.Time `db:"expires_at"`
}
