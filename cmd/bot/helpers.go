package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/messages"
	"github.com/discosoft/talep/pkg/ticket"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondSlashEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondSlashEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondSlash(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

// followupEphemeral sends an ephemeral followup on an already acknowledged
// interaction.
func followupEphemeral(a IApp, i *discordgo.Interaction, content string) error {
	_, err := a.Session().FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

// actorFromInteraction resolves the acting user from a guild interaction.
func actorFromInteraction(i *discordgo.InteractionCreate) ticket.Actor {
	if i.Member == nil || i.Member.User == nil {
		return ticket.Actor{}
	}
	return ticket.Actor{
		ID:          i.Member.User.ID,
		Username:    i.Member.User.Username,
		Roles:       i.Member.Roles,
		Permissions: i.Member.Permissions,
	}
}
