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

// TicketAdapter owns pending ticket channel deletions. Closing a ticket
// schedules the channel for deletion after a grace period so members can
// still read the transcript; reopening cancels it.
type TicketAdapter struct {
	DB       *sqlx.DB
	Registry *scheduler.Registry
	Client   TicketClient
	Webhook  string
}

func TicketKey(channelID string) string {
	return fmt.Sprintf("%s:%s", scheduler.EntityTicketDelete, channelID)
}

func (a *TicketAdapter) Type() scheduler.EntityType {
	return scheduler.EntityTicketDelete
}

// ScheduleDeletion persists the deletion record and arms the timer.
// Closing an already-closed ticket restarts its grace period.
func (a *TicketAdapter) ScheduleDeletion(guildID, channelID, closedBy string, grace time.Duration) error {
	t := model.TicketDeletion{
		ChannelID: channelID,
		GuildID:   guildID,
		ClosedBy:  closedBy,
		ExpiresAt: a.Registry.Now().Add(grace),
	}
	if err := database.AddTicketDeletion(a.DB, t); err != nil {
		return err
	}
	a.Registry.Create(TicketKey(channelID), grace, a.deleteAction(channelID))
	return nil
}

// Keep cancels a pending deletion; the ticket channel stays.
func (a *TicketAdapter) Keep(channelID string) error {
	a.Registry.Close(TicketKey(channelID))
	return database.DeleteTicketDeletion(a.DB, channelID)
}

// DeleteNow force-fires the pending deletion.
func (a *TicketAdapter) DeleteNow(channelID string) {
	a.Registry.Call(TicketKey(channelID))
}

// Pending returns every persisted deletion whose channel still resolves.
// A channel someone already deleted by hand is terminal and skipped.
func (a *TicketAdapter) Pending() ([]scheduler.PendingExpiry, error) {
	tickets, err := database.ListTicketDeletions(a.DB)
	if err != nil {
		return nil, err
	}

	pending := make([]scheduler.PendingExpiry, 0, len(tickets))
	for _, t := range tickets {
		if _, err := a.Client.Channel(t.ChannelID); err != nil {
			if isNotFound(err) {
				continue
			}
			log.Printf("[Ticket] Could not resolve channel %s, skipping record: %v", t.ChannelID, err)
			continue
		}
		pending = append(pending, scheduler.PendingExpiry{
			Key:       TicketKey(t.ChannelID),
			ExpiresAt: t.ExpiresAt,
			Action:    a.deleteAction(t.ChannelID),
		})
	}
	return pending, nil
}

// deleteAction removes the channel. Deleting an already-deleted channel
// only cleans up the record, so a crash-recovery replay is a safe no-op.
func (a *TicketAdapter) deleteAction(channelID string) func() {
	return func() {
		if _, err := a.Client.ChannelDelete(channelID); err != nil {
			if !isNotFound(err) {
				log.Printf("[Ticket] Failed to delete channel %s: %v", channelID, err)
				utils.LogError(a.Webhook, "Ticket", "Delete", fmt.Sprintf("channel %s: %v", channelID, err))
				return
			}
		} else {
			log.Printf("[Ticket] Deleted expired ticket channel %s", channelID)
		}

		if err := database.DeleteTicketDeletion(a.DB, channelID); err != nil {
			log.Printf("[Ticket] Failed to delete record for channel %s: %v", channelID, err)
		}
	}
}
