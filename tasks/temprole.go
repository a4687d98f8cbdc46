package tasks

import (
	"fmt"
	"log"
	"time"

	"lordcord/model"
	"lordcord/scheduler"
	"lordcord/utils"
	"lordcord/utils/database"

	"github.com/jmoiron/sqlx"
)

// TempRoleAdapter owns temp role expiry records and the timers that strip
// the role when the grant runs out.
type TempRoleAdapter struct {
	DB       *sqlx.DB
	Registry *scheduler.Registry
	Client   RoleClient
	Webhook  string
}

func TempRoleKey(guildID, userID, roleID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", scheduler.EntityTempRole, guildID, userID, roleID)
}

func (a *TempRoleAdapter) Type() scheduler.EntityType {
	return scheduler.EntityTempRole
}

// Schedule persists the expiry record and arms the removal timer.
// Re-granting the same role replaces the pending expiry, which is how
// "extend" works.
func (a *TempRoleAdapter) Schedule(guildID, userID, roleID string, d time.Duration) error {
	grant := model.TempRole{
		GuildID:   guildID,
		UserID:    userID,
		RoleID:    roleID,
		ExpiresAt: a.Registry.Now().Add(d),
	}
	if err := database.AddTempRole(a.DB, grant); err != nil {
		return err
	}
	a.Registry.Create(TempRoleKey(guildID, userID, roleID), d, a.expireAction(guildID, userID, roleID))
	return nil
}

// Remaining returns how long until the grant expires, or false if none is
// pending.
func (a *TempRoleAdapter) Remaining(guildID, userID, roleID string) (time.Duration, bool) {
	e := a.Registry.Get(TempRoleKey(guildID, userID, roleID))
	if e == nil {
		return 0, false
	}
	return e.Remaining(a.Registry.Now()), true
}

// Cancel drops the timer and the record, making the grant permanent.
func (a *TempRoleAdapter) Cancel(guildID, userID, roleID string) error {
	a.Registry.Close(TempRoleKey(guildID, userID, roleID))
	return database.DeleteTempRole(a.DB, guildID, userID, roleID)
}

// Pending returns every persisted grant whose member still resolves.
// Members who left are terminal; their records are skipped.
func (a *TempRoleAdapter) Pending() ([]scheduler.PendingExpiry, error) {
	grants, err := database.ListTempRoles(a.DB)
	if err != nil {
		return nil, err
	}

	pending := make([]scheduler.PendingExpiry, 0, len(grants))
	for _, grant := range grants {
		if _, err := a.Client.GuildMember(grant.GuildID, grant.UserID); err != nil {
			if isNotFound(err) {
				continue
			}
			log.Printf("[TempRole] Could not resolve member %s in guild %s, skipping record: %v", grant.UserID, grant.GuildID, err)
			continue
		}
		pending = append(pending, scheduler.PendingExpiry{
			Key:       TempRoleKey(grant.GuildID, grant.UserID, grant.RoleID),
			ExpiresAt: grant.ExpiresAt,
			Action:    a.expireAction(grant.GuildID, grant.UserID, grant.RoleID),
		})
	}
	return pending, nil
}

// expireAction removes the role. A member who already lost the role, or
// left the guild, only triggers record cleanup; replaying the action after
// a crash is a safe no-op.
func (a *TempRoleAdapter) expireAction(guildID, userID, roleID string) func() {
	return func() {
		member, err := a.Client.GuildMember(guildID, userID)
		if err != nil {
			if isNotFound(err) {
				a.deleteRecord(guildID, userID, roleID)
				return
			}
			log.Printf("[TempRole] Failed to look up member %s in guild %s: %v", userID, guildID, err)
			return
		}

		if !hasRole(member.Roles, roleID) {
			a.deleteRecord(guildID, userID, roleID)
			return
		}

		if err := a.Client.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			if !isNotFound(err) {
				log.Printf("[TempRole] Failed to remove role %s from user %s: %v", roleID, userID, err)
				utils.LogError(a.Webhook, "TempRole", "Remove", fmt.Sprintf("role %s, user %s, guild %s: %v", roleID, userID, guildID, err))
				return
			}
		} else {
			log.Printf("[TempRole] Removed expired role %s from user %s in guild %s", roleID, userID, guildID)
		}

		a.deleteRecord(guildID, userID, roleID)
	}
}

func (a *TempRoleAdapter) deleteRecord(guildID, userID, roleID string) {
	if err := database.DeleteTempRole(a.DB, guildID, userID, roleID); err != nil {
		log.Printf("[TempRole] Failed to delete record for user %s in guild %s: %v", userID, guildID, err)
	}
}

func hasRole(roles []string, roleID string) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}
