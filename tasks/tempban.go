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

// TempBanAdapter owns temp ban expiry records and the timers that lift
// bans when they run out.
type TempBanAdapter struct {
	DB       *sqlx.DB
	Registry *scheduler.Registry
	Client   BanClient
	Webhook  string
}

func TempBanKey(guildID, userID string) string {
	return fmt.Sprintf("%s:%s:%s", scheduler.EntityTempBan, guildID, userID)
}

func (a *TempBanAdapter) Type() scheduler.EntityType {
	return scheduler.EntityTempBan
}

// Schedule persists the expiry record and arms the unban timer. Banning a
// member who already has a pending temp ban replaces the old expiry.
func (a *TempBanAdapter) Schedule(guildID, userID, reason string, d time.Duration) error {
	ban := model.TempBan{
		GuildID:   guildID,
		UserID:    userID,
		Reason:    reason,
		ExpiresAt: a.Registry.Now().Add(d),
	}
	if err := database.AddTempBan(a.DB, ban); err != nil {
		return err
	}
	a.Registry.Create(TempBanKey(guildID, userID), d, a.expireAction(guildID, userID))
	return nil
}

// Remaining returns how long until the member's ban lifts, or false if no
// temp ban is pending. Used by the extend path before replacing the timer.
func (a *TempBanAdapter) Remaining(guildID, userID string) (time.Duration, bool) {
	e := a.Registry.Get(TempBanKey(guildID, userID))
	if e == nil {
		return 0, false
	}
	return e.Remaining(a.Registry.Now()), true
}

// LiftNow force-fires the pending unban, clearing the timer.
func (a *TempBanAdapter) LiftNow(guildID, userID string) {
	a.Registry.Call(TempBanKey(guildID, userID))
}

// Cancel drops the timer and the record without lifting the ban; the ban
// becomes permanent.
func (a *TempBanAdapter) Cancel(guildID, userID string) error {
	a.Registry.Close(TempBanKey(guildID, userID))
	return database.DeleteTempBan(a.DB, guildID, userID)
}

// Pending returns every persisted temp ban whose guild still resolves.
// Records for guilds the bot has left are terminal and skipped.
func (a *TempBanAdapter) Pending() ([]scheduler.PendingExpiry, error) {
	bans, err := database.ListTempBans(a.DB)
	if err != nil {
		return nil, err
	}

	pending := make([]scheduler.PendingExpiry, 0, len(bans))
	for _, ban := range bans {
		if _, err := a.Client.Guild(ban.GuildID); err != nil {
			if isNotFound(err) {
				continue
			}
			log.Printf("[TempBan] Could not resolve guild %s, skipping record: %v", ban.GuildID, err)
			continue
		}
		pending = append(pending, scheduler.PendingExpiry{
			Key:       TempBanKey(ban.GuildID, ban.UserID),
			ExpiresAt: ban.ExpiresAt,
			Action:    a.expireAction(ban.GuildID, ban.UserID),
		})
	}
	return pending, nil
}

// expireAction lifts the ban. Runs idempotently: an already-lifted ban
// only cleans up the record, so a crash-recovery replay is a safe no-op.
// The record is deleted after the unban succeeds; if the process dies in
// between, the next reconciliation replays this action and hits the
// idempotency check.
func (a *TempBanAdapter) expireAction(guildID, userID string) func() {
	return func() {
		if _, err := a.Client.GuildBan(guildID, userID); err != nil {
			if isNotFound(err) {
				a.deleteRecord(guildID, userID)
				return
			}
			log.Printf("[TempBan] Failed to look up ban for user %s in guild %s: %v", userID, guildID, err)
			return
		}

		if err := a.Client.GuildBanDelete(guildID, userID); err != nil {
			log.Printf("[TempBan] Failed to unban user %s in guild %s: %v", userID, guildID, err)
			utils.LogError(a.Webhook, "TempBan", "Unban", fmt.Sprintf("user %s, guild %s: %v", userID, guildID, err))
			return
		}

		log.Printf("[TempBan] Lifted expired ban for user %s in guild %s", userID, guildID)
		a.deleteRecord(guildID, userID)
	}
}

func (a *TempBanAdapter) deleteRecord(guildID, userID string) {
	if err := database.DeleteTempBan(a.DB, guildID, userID); err != nil {
		log.Printf("[TempBan] Failed to delete record for user %s in guild %s: %v", userID, guildID, err)
	}
}
