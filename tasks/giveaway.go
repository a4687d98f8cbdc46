package tasks

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"lordcord/model"
	"lordcord/scheduler"
	"lordcord/utils"
	"lordcord/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EntryEmoji is the reaction users add to enter a giveaway.
const EntryEmoji = "🎉"

// GiveawayAdapter owns giveaway records and the timers that complete them.
type GiveawayAdapter struct {
	DB       *sqlx.DB
	Registry *scheduler.Registry
	Client   GiveawayClient
	Webhook  string
}

func GiveawayKey(giveawayID string) string {
	return fmt.Sprintf("%s:%s", scheduler.EntityGiveaway, giveawayID)
}

func (a *GiveawayAdapter) Type() scheduler.EntityType {
	return scheduler.EntityGiveaway
}

// Start persists a new giveaway for an already-posted entry message and
// arms its completion timer. Returns the giveaway id.
func (a *GiveawayAdapter) Start(guildID, channelID, messageID, prize string, winners int, d time.Duration) (string, error) {
	g := model.Giveaway{
		GiveawayID: uuid.NewString(),
		GuildID:    guildID,
		ChannelID:  channelID,
		MessageID:  messageID,
		Prize:      prize,
		Winners:    winners,
		ExpiresAt:  a.Registry.Now().Add(d),
	}
	if err := database.AddGiveaway(a.DB, g); err != nil {
		return "", err
	}
	a.Registry.Create(GiveawayKey(g.GiveawayID), d, a.completeAction(g.GiveawayID))
	return g.GiveawayID, nil
}

// EndNow force-completes a giveaway ahead of its deadline.
func (a *GiveawayAdapter) EndNow(giveawayID string) {
	a.Registry.Call(GiveawayKey(giveawayID))
}

// Cancel drops the timer and the record without drawing winners.
func (a *GiveawayAdapter) Cancel(giveawayID string) error {
	a.Registry.Close(GiveawayKey(giveawayID))
	return database.DeleteGiveaway(a.DB, giveawayID)
}

// Pending returns every persisted giveaway whose channel still resolves.
// A deleted channel is terminal and the record is skipped.
func (a *GiveawayAdapter) Pending() ([]scheduler.PendingExpiry, error) {
	giveaways, err := database.ListGiveaways(a.DB)
	if err != nil {
		return nil, err
	}

	pending := make([]scheduler.PendingExpiry, 0, len(giveaways))
	for _, g := range giveaways {
		if _, err := a.Client.Channel(g.ChannelID); err != nil {
			if isNotFound(err) {
				continue
			}
			log.Printf("[Giveaway] Could not resolve channel %s, skipping record: %v", g.ChannelID, err)
			continue
		}
		pending = append(pending, scheduler.PendingExpiry{
			Key:       GiveawayKey(g.GiveawayID),
			ExpiresAt: g.ExpiresAt,
			Action:    a.completeAction(g.GiveawayID),
		})
	}
	return pending, nil
}

// completeAction draws winners and announces them. The record lookup at
// the top is the idempotency check: a completed giveaway has no record, so
// re-running the action after a crash replay does nothing.
func (a *GiveawayAdapter) completeAction(giveawayID string) func() {
	return func() {
		g, err := database.GetGiveaway(a.DB, giveawayID)
		if err != nil {
			log.Printf("[Giveaway] Failed to load giveaway %s: %v", giveawayID, err)
			return
		}
		if g == nil {
			return
		}

		entrants, err := a.Client.MessageReactions(g.ChannelID, g.MessageID, EntryEmoji, 100, "", "")
		if err != nil {
			if isNotFound(err) {
				a.deleteRecord(giveawayID)
				return
			}
			log.Printf("[Giveaway] Failed to fetch entrants for giveaway %s: %v", giveawayID, err)
			utils.LogError(a.Webhook, "Giveaway", "Complete", fmt.Sprintf("giveaway %s: %v", giveawayID, err))
			return
		}

		announcement := a.drawResult(g, entrants)
		if _, err := a.Client.ChannelMessageSend(g.ChannelID, announcement); err != nil {
			log.Printf("[Giveaway] Failed to announce giveaway %s: %v", giveawayID, err)
			return
		}

		log.Printf("[Giveaway] Completed giveaway %s in guild %s", giveawayID, g.GuildID)
		a.deleteRecord(giveawayID)
	}
}

// drawResult picks up to g.Winners distinct entrants at random and builds
// the announcement.
func (a *GiveawayAdapter) drawResult(g *model.Giveaway, entrants []*discordgo.User) string {
	var eligible []string
	for _, u := range entrants {
		if u.Bot {
			continue
		}
		eligible = append(eligible, u.ID)
	}

	if len(eligible) == 0 {
		return fmt.Sprintf("The giveaway for **%s** has ended, but nobody entered.", g.Prize)
	}

	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	n := g.Winners
	if n < 1 {
		n = 1
	}
	if n > len(eligible) {
		n = len(eligible)
	}

	mentions := make([]string, 0, n)
	for _, id := range eligible[:n] {
		mentions = append(mentions, "<@"+id+">")
	}
	return fmt.Sprintf("%s The giveaway for **%s** has ended! Congratulations %s", EntryEmoji, g.Prize, strings.Join(mentions, ", "))
}

func (a *GiveawayAdapter) deleteRecord(giveawayID string) {
	if err := database.DeleteGiveaway(a.DB, giveawayID); err != nil {
		log.Printf("[Giveaway] Failed to delete record for giveaway %s: %v", giveawayID, err)
	}
}
