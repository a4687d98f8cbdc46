package handlers

import (
	"fmt"

	"lordcord/bot"
	"lordcord/tasks"
	"lordcord/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleBet(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i.ApplicationCommandData().Options)

	choice := opts["choice"].StringValue()
	amount := int(opts["amount"].IntValue())
	if amount <= 0 {
		utils.SendErrorResponse(s, i, "The wager must be positive.")
		return
	}

	fireAt := b.Bets.PlaceBet(i.ChannelID, tasks.Bet{
		UserID: i.Member.User.ID,
		Choice: choice,
		Amount: amount,
	})
	pot, bets := b.Bets.OpenRound(i.ChannelID)

	utils.SendPublicResponse(s, i, fmt.Sprintf(
		"**%s** wagers %d on **%s**. Pot is %d across %d bet(s); the round settles <t:%d:R> unless someone else bets.",
		i.Member.User.Username, amount, choice, pot, bets, fireAt.Unix()))
}
