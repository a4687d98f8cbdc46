package handlers

import (
	"fmt"
	"log"

	"lordcord/bot"
	"lordcord/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleTempBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i.ApplicationCommandData().Options)

	user := opts["user"].UserValue(s)
	d, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil || d <= 0 {
		utils.SendErrorResponse(s, i, "Invalid duration. Use something like 30m, 12h or 7d.")
		return
	}
	reason := ""
	if o, ok := opts["reason"]; ok {
		reason = o.StringValue()
	}

	// Extending an existing temp ban only replaces the timer; the member
	// is already banned.
	_, extending := b.TempBans.Remaining(i.GuildID, user.ID)
	if !extending {
		if err := s.GuildBanCreateWithReason(i.GuildID, user.ID, reason, 0); err != nil {
			log.Printf("Failed to ban user %s in guild %s: %v", user.ID, i.GuildID, err)
			utils.SendErrorResponse(s, i, "Failed to ban that member.")
			return
		}
	}

	if err := b.TempBans.Schedule(i.GuildID, user.ID, reason, d); err != nil {
		log.Printf("Failed to persist temp ban for user %s: %v", user.ID, err)
		utils.SendErrorResponse(s, i, "Member banned, but the automatic unban could not be persisted. Unban manually.")
		return
	}

	verb := "banned"
	if extending {
		verb = "ban extended for"
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("**%s** %s %s.", user.Username, verb, d))
}

func HandleUnbanNow(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i.ApplicationCommandData().Options)
	user := opts["user"].UserValue(s)

	if _, ok := b.TempBans.Remaining(i.GuildID, user.ID); !ok {
		utils.SendErrorResponse(s, i, "No temporary ban is pending for that member.")
		return
	}

	b.TempBans.LiftNow(i.GuildID, user.ID)
	utils.SendPublicResponse(s, i, fmt.Sprintf("Lifted the temporary ban for **%s**.", user.Username))
}
