package handlers

import (
	"fmt"
	"log"
	"time"

	"lordcord/bot"
	"lordcord/tasks"
	"lordcord/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleGiveaway(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "start":
		handleGiveawayStart(s, i, b, opts)
	case "end":
		handleGiveawayEnd(s, i, b, opts)
	case "cancel":
		handleGiveawayCancel(s, i, b, opts)
	}
}

func handleGiveawayStart(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	prize := opts["prize"].StringValue()
	d, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil || d <= 0 {
		utils.SendErrorResponse(s, i, "Invalid duration. Use something like 1h or 2d.")
		return
	}
	winners := b.GetConfig().GiveawayWinners
	if o, ok := opts["winners"]; ok {
		winners = int(o.IntValue())
	}
	if winners < 1 {
		winners = 1
	}

	endsAt := time.Now().Add(d)
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Giveaway: %s", tasks.EntryEmoji, prize),
		Description: fmt.Sprintf("React with %s to enter! Ends <t:%d:R>.", tasks.EntryEmoji, endsAt.Unix()),
		Color:       0x5865F2,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d winner(s)", winners),
		},
	}
	msg, err := s.ChannelMessageSendEmbed(i.ChannelID, embed)
	if err != nil {
		log.Printf("Failed to post giveaway message: %v", err)
		utils.SendErrorResponse(s, i, "Failed to post the giveaway message.")
		return
	}
	if err := s.MessageReactionAdd(i.ChannelID, msg.ID, tasks.EntryEmoji); err != nil {
		log.Printf("Failed to seed giveaway reaction: %v", err)
	}

	id, err := b.Giveaways.Start(i.GuildID, i.ChannelID, msg.ID, prize, winners, d)
	if err != nil {
		log.Printf("Failed to persist giveaway: %v", err)
		utils.SendErrorResponse(s, i, "Failed to start the giveaway.")
		return
	}

	utils.SendSimpleResponse(s, i, fmt.Sprintf("Giveaway started. ID: `%s`", id))
}

func handleGiveawayEnd(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	id := opts["id"].StringValue()
	if b.Registry.Get(tasks.GiveawayKey(id)) == nil {
		utils.SendErrorResponse(s, i, "No running giveaway with that id.")
		return
	}
	b.Giveaways.EndNow(id)
	utils.SendSimpleResponse(s, i, "Giveaway ended; winners drawn.")
}

func handleGiveawayCancel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	id := opts["id"].StringValue()
	if b.Registry.Get(tasks.GiveawayKey(id)) == nil {
		utils.SendErrorResponse(s, i, "No running giveaway with that id.")
		return
	}
	if err := b.Giveaways.Cancel(id); err != nil {
		log.Printf("Failed to cancel giveaway %s: %v", id, err)
		utils.SendErrorResponse(s, i, "Failed to cancel the giveaway.")
		return
	}
	utils.SendSimpleResponse(s, i, "Giveaway cancelled; no winners drawn.")
}
