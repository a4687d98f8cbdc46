package handlers

import (
	"fmt"
	"log"

	"lordcord/bot"
	"lordcord/tasks"
	"lordcord/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleTicket(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "close":
		handleTicketClose(s, i, b, opts)
	case "keep":
		handleTicketKeep(s, i, b)
	}
}

func handleTicketClose(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	grace := b.GetConfig().TicketGrace
	if o, ok := opts["grace"]; ok {
		d, err := utils.ParseDuration(o.StringValue())
		if err != nil || d < 0 {
			utils.SendErrorResponse(s, i, "Invalid grace period. Use something like 1h or 2d.")
			return
		}
		grace = d
	}

	if err := b.Tickets.ScheduleDeletion(i.GuildID, i.ChannelID, i.Member.User.ID, grace); err != nil {
		log.Printf("Failed to schedule ticket deletion for channel %s: %v", i.ChannelID, err)
		utils.SendErrorResponse(s, i, "Failed to close the ticket.")
		return
	}

	utils.SendPublicResponse(s, i, fmt.Sprintf("Ticket closed. This channel will be deleted in %s. Use `/ticket keep` to cancel.", grace))
}

func handleTicketKeep(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if b.Registry.Get(tasks.TicketKey(i.ChannelID)) == nil {
		utils.SendErrorResponse(s, i, "This channel has no pending deletion.")
		return
	}
	if err := b.Tickets.Keep(i.ChannelID); err != nil {
		log.Printf("Failed to cancel ticket deletion for channel %s: %v", i.ChannelID, err)
		utils.SendErrorResponse(s, i, "Failed to cancel the pending deletion.")
		return
	}
	utils.SendPublicResponse(s, i, "Pending deletion cancelled; this channel stays.")
}
