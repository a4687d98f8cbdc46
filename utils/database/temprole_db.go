package database

import (
	"fmt"
	"lordcord/model"

	"github.com/jmoiron/sqlx"
)

// AddTempRole inserts or replaces the temp role record for a member/role
// pair. Re-granting extends the existing record.
func AddTempRole(db *sqlx.DB, grant model.TempRole) error {
	query := `INSERT OR REPLACE INTO temp_roles (guild_id, user_id, role_id, expires_at)
              VALUES (:guild_id, :user_id, :role_id, :expires_at)`

	if _, err := db.NamedExec(query, grant); err != nil {
		return fmt.Errorf("failed to insert temp role: %w", err)
	}
	return nil
}

// ListTempRoles retrieves every temp role record across all guilds.
func ListTempRoles(db *sqlx.DB) ([]model.TempRole, error) {
	var grants []model.TempRole
	if err := db.Select(&grants, "SELECT * FROM temp_roles"); err != nil {
		return nil, fmt.Errorf("failed to list temp roles: %w", err)
	}
	return grants, nil
}

// DeleteTempRole removes the temp role record for a member/role pair.
func DeleteTempRole(db *sqlx.DB, guildID, userID, roleID string) error {
	query := "DELETE FROM temp_roles WHERE guild_id = ? AND user_id = ? AND role_id = ?"
	if _, err := db.Exec(query, guildID, userID, roleID); err != nil {
		return fmt.Errorf("failed to delete temp role %s for user %s in guild %s: %w", roleID, userID, guildID, err)
	}
	return nil
}
