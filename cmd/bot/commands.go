package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/entities"
)

const (
	// SetupCmdName is the name of the guided setup command.
	SetupCmdName = "kurulum"

	// StaffRoleCmdName is the name of the staff role command.
	StaffRoleCmdName = "yetkilirol"

	// LogChannelCmdName is the name of the log channel command.
	LogChannelCmdName = "logkanal"

	// ArchiveCategoryCmdName is the name of the archive category command.
	ArchiveCategoryCmdName = "arşivkategorisi"

	// SupportTeamCmdName is the name of the support team binding command.
	SupportTeamCmdName = "destekekibi"
)

const (
	// CategorySelectID is the custom ID of the category dropdown on the
	// ticket entry message.
	CategorySelectID = "category_select"

	// TicketModalPrefix prefixes the custom ID of the ticket request form.
	// The category name follows it.
	TicketModalPrefix = "ticket_modal:"

	// WizardRoleSelectPrefix prefixes the custom ID of a wizard role
	// picker. The category name follows it.
	WizardRoleSelectPrefix = "wizard_role:"

	// WizardSkipPrefix prefixes the custom ID of a wizard skip button. The
	// category name follows it.
	WizardSkipPrefix = "wizard_skip:"
)

var (
	setupCmd = &discordgo.ApplicationCommand{
		Name:        SetupCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Destek talep sistemini bu kanal için adım adım kurar.",
	}

	staffRoleCmd = &discordgo.ApplicationCommand{
		Name:        StaffRoleCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Tüm taleplere erişebilen yetkili rolünü ayarlar.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "rol",
				Type:        discordgo.ApplicationCommandOptionRole,
				Description: "Yetkili rolü.",
				Required:    true,
			},
		},
	}

	logChannelCmd = &discordgo.ApplicationCommand{
		Name:        LogChannelCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Talep kayıtlarının gönderileceği kanalı ayarlar.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "kanal",
				Type:        discordgo.ApplicationCommandOptionChannel,
				Description: "Kayıt kanalı.",
				Required:    true,
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildText,
				},
			},
		},
	}

	archiveCategoryCmd = &discordgo.ApplicationCommand{
		Name:        ArchiveCategoryCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Kapatılan taleplerin taşınacağı arşiv kategorisini ayarlar.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "kategori",
				Type:        discordgo.ApplicationCommandOptionChannel,
				Description: "Arşiv kategorisi.",
				Required:    true,
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildCategory,
				},
			},
		},
	}

	supportTeamCmd = &discordgo.ApplicationCommand{
		Name:        SupportTeamCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Bir talep kategorisine destek ekibi rolü bağlar.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "kategori",
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Talep kategorisi.",
				Required:    true,
				Choices:     categoryChoices(),
			},
			{
				Name:        "rol",
				Type:        discordgo.ApplicationCommandOptionRole,
				Description: "Destek ekibi rolü.",
				Required:    true,
			},
		},
	}

	// slashCommands are the commands registered in every guild.
	slashCommands = []*discordgo.ApplicationCommand{
		setupCmd,
		staffRoleCmd,
		logChannelCmd,
		archiveCategoryCmd,
		supportTeamCmd,
	}
)

func categoryChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(entities.Categories))
	for _, c := range entities.Categories {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  c.Name,
			Value: c.Name,
		})
	}
	return choices
}
