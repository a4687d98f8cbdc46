package handlers

import (
	"fmt"
	"log"

	"lordcord/bot"
	"lordcord/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleTempRole(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i.ApplicationCommandData().Options)

	user := opts["user"].UserValue(s)
	role := opts["role"].RoleValue(s, i.GuildID)
	d, err := utils.ParseDuration(opts["duration"].StringValue())
	if err != nil || d <= 0 {
		utils.SendErrorResponse(s, i, "Invalid duration. Use something like 30m, 12h or 7d.")
		return
	}

	_, extending := b.TempRoles.Remaining(i.GuildID, user.ID, role.ID)
	if !extending {
		if err := s.GuildMemberRoleAdd(i.GuildID, user.ID, role.ID); err != nil {
			log.Printf("Failed to add role %s to user %s: %v", role.ID, user.ID, err)
			utils.SendErrorResponse(s, i, "Failed to grant that role.")
			return
		}
	}

	if err := b.TempRoles.Schedule(i.GuildID, user.ID, role.ID, d); err != nil {
		log.Printf("Failed to persist temp role for user %s: %v", user.ID, err)
		utils.SendErrorResponse(s, i, "Role granted, but the automatic removal could not be persisted. Remove manually.")
		return
	}

	verb := "granted to"
	if extending {
		verb = "extended for"
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Role **%s** %s **%s** for %s.", role.Name, verb, user.Username, d))
}

func HandleTempRoleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i.ApplicationCommandData().Options)
	user := opts["user"].UserValue(s)
	role := opts["role"].RoleValue(s, i.GuildID)

	if _, ok := b.TempRoles.Remaining(i.GuildID, user.ID, role.ID); !ok {
		utils.SendErrorResponse(s, i, "No temporary grant is pending for that member and role.")
		return
	}

	if err := b.TempRoles.Cancel(i.GuildID, user.ID, role.ID); err != nil {
		log.Printf("Failed to cancel temp role for user %s: %v", user.ID, err)
		utils.SendErrorResponse(s, i, "Failed to cancel the pending removal.")
		return
	}
	utils.SendPublicResponse(s, i, fmt.Sprintf("Role **%s** is now permanent for **%s**.", role.Name, user.Username))
}
