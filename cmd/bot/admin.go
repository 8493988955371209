package main

import (
	"context"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/messages"
)

// staffRoleCmdController sets the staff role that can moderate every ticket.
func staffRoleCmdController(a IApp, i *discordgo.InteractionCreate) error {
	role := i.ApplicationCommandData().Options[0].RoleValue(a.Session(), i.GuildID)
	if role == nil {
		return respondSlashError(a, i)
	}

	if _, err := a.Store().Update(context.Background(), func(cfg *entities.GuildConfig) error {
		cfg.StaffRoleID = role.ID
		return nil
	}); err != nil {
		return fmt.Errorf("error saving staff role: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf(messages.StaffRoleSet, role.Mention()))
}

// logChannelCmdController sets the channel ticket records are posted to.
func logChannelCmdController(a IApp, i *discordgo.InteractionCreate) error {
	channel := i.ApplicationCommandData().Options[0].ChannelValue(a.Session())
	if channel == nil {
		return respondSlashError(a, i)
	}

	if channel.Type != discordgo.ChannelTypeGuildText {
		return respondSlashEphemeral(a, i, messages.LogChannelNotText)
	}

	if _, err := a.Store().Update(context.Background(), func(cfg *entities.GuildConfig) error {
		cfg.TicketLogChannelID = channel.ID
		return nil
	}); err != nil {
		return fmt.Errorf("error saving log channel: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf(messages.LogChannelSet, channel.Mention()))
}

// archiveCategoryCmdController sets the category closed tickets are moved
// into.
func archiveCategoryCmdController(a IApp, i *discordgo.InteractionCreate) error {
	channel := i.ApplicationCommandData().Options[0].ChannelValue(a.Session())
	if channel == nil {
		return respondSlashError(a, i)
	}

	if _, err := a.Store().Update(context.Background(), func(cfg *entities.GuildConfig) error {
		cfg.ArchiveCategoryID = channel.ID
		return nil
	}); err != nil {
		return fmt.Errorf("error saving archive category: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf(messages.ArchiveCategorySet, channel.Name))
}

// supportTeamCmdController binds a support team role to a ticket category.
func supportTeamCmdController(a IApp, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) < 2 {
		return respondSlashError(a, i)
	}

	category, ok := entities.FindCategory(options[0].StringValue())
	if !ok {
		return respondSlashEphemeral(a, i, messages.UnknownCategory)
	}

	role := options[1].RoleValue(a.Session(), i.GuildID)
	if role == nil {
		return respondSlashError(a, i)
	}

	if _, err := a.Store().Update(context.Background(), func(cfg *entities.GuildConfig) error {
		if cfg.CategoryRoles == nil {
			cfg.CategoryRoles = map[string]string{}
		}
		cfg.CategoryRoles[category.Name] = role.ID
		return nil
	}); err != nil {
		return fmt.Errorf("error saving support team role: %w", err)
	}

	return respondSlashEphemeral(a, i, fmt.Sprintf(messages.SupportTeamSet, category.Name, role.Mention()))
}
