package ticket

import (
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/entities"
)

const (
	// CloseTicketButtonID is the control ID for the close button attached to
	// every ticket.
	CloseTicketButtonID = "close_ticket"

	// FreezeTicketButtonID is the control ID for the freeze/unfreeze button
	// attached to every ticket.
	FreezeTicketButtonID = "freeze_ticket"
)

const (
	colourBlue   = 0x3498db
	colourGreen  = 0x2ecc71
	colourRed    = 0xe74c3c
	colourYellow = 0xf1c40f
)

// footerText is the standard footer carried by every embed.
const footerText = "gg/discosoft"

func withFooter(e *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	e.Footer = &discordgo.MessageEmbedFooter{Text: footerText}
	return e
}

// ControlButtons builds the close and freeze buttons attached to every ticket
// channel. The freeze button label flips with the frozen state.
func ControlButtons(frozen bool) []discordgo.MessageComponent {
	freezeLabel := "Talebi Dondur"
	freezeStyle := discordgo.PrimaryButton
	if frozen {
		freezeLabel = "Talebi Aç"
		freezeStyle = discordgo.SuccessButton
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Talebi Kapat",
					Style:    discordgo.DangerButton,
					CustomID: CloseTicketButtonID,
				},
				discordgo.Button{
					Label:    freezeLabel,
					Style:    freezeStyle,
					CustomID: FreezeTicketButtonID,
				},
			},
		},
	}
}

// introMessage builds the first message of a new ticket channel, naming the
// ticket, mentioning the requester and the bound support team and echoing the
// request form.
func introMessage(id int, category entities.Category, requesterID, boundRoleID string, form entities.TicketForm) *discordgo.MessageSend {
	description := fmt.Sprintf("Talep oluşturduğunuz için teşekkürler, <@%s>!\nDestek ekibimiz en kısa sürede sizinle ilgilenecektir.", requesterID)
	if boundRoleID != "" {
		description += fmt.Sprintf("\n\n<@&%s>, yeni bir destek talebi oluşturuldu!", boundRoleID)
	}

	embed := withFooter(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Talep #%d - %s", category.Emoji, id, category.Name),
		Description: description,
		Color:       colourBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Adı", Value: form.FirstName, Inline: true},
			{Name: "Soyadı", Value: form.LastName, Inline: true},
			{Name: "E-posta", Value: form.Email},
			{Name: "Talep Sebebi", Value: form.Reason},
		},
	})

	return &discordgo.MessageSend{
		Embed:      embed,
		Components: ControlButtons(false),
	}
}

func closingEmbed() *discordgo.MessageEmbed {
	return withFooter(&discordgo.MessageEmbed{
		Title:       "Talep Kapatılıyor",
		Description: "Bu talep 5 saniye içinde kapatılacak ve arşive taşınacak...",
		Color:       colourRed,
	})
}

func closedEmbed(actorID string) *discordgo.MessageEmbed {
	return withFooter(&discordgo.MessageEmbed{
		Title:       "Talep Kapatıldı",
		Description: fmt.Sprintf("Bu talep <@%s> tarafından kapatıldı.", actorID),
		Color:       colourRed,
	})
}

func archiveMissingEmbed() *discordgo.MessageEmbed {
	return withFooter(&discordgo.MessageEmbed{
		Title:       "Hata",
		Description: "Arşiv kategorisi bulunamadı! Talep kanalı siliniyor...",
		Color:       colourRed,
	})
}

func frozenEmbed(actorID string, frozen bool) *discordgo.MessageEmbed {
	if frozen {
		return withFooter(&discordgo.MessageEmbed{
			Title:       "Talep Donduruldu",
			Description: fmt.Sprintf("Bu talep <@%s> tarafından donduruldu. Şu anda mesaj gönderemezsiniz.", actorID),
			Color:       colourYellow,
		})
	}
	return withFooter(&discordgo.MessageEmbed{
		Title:       "Talep Açıldı",
		Description: fmt.Sprintf("Bu talep <@%s> tarafından açıldı. Artık mesaj gönderebilirsiniz.", actorID),
		Color:       colourGreen,
	})
}

func creationLogEmbed(id int, category entities.Category, requesterID, boundRoleID string, form entities.TicketForm) *discordgo.MessageEmbed {
	embed := withFooter(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Talep Oluşturuldu", category.Emoji),
		Description: fmt.Sprintf("Talep #%d <@%s> tarafından oluşturuldu\nKategori: %s", id, requesterID, category.Name),
		Color:       colourGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "İletişim", Value: fmt.Sprintf("%s %s (%s)", form.FirstName, form.LastName, form.Email)},
		},
	})

	if boundRoleID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Destek Ekibi",
			Value: fmt.Sprintf("<@&%s>", boundRoleID),
		})
	}
	return embed
}

func closeLogEmbed(channelName, actorID string) *discordgo.MessageEmbed {
	return withFooter(&discordgo.MessageEmbed{
		Title:       "Talep Kapatıldı",
		Description: fmt.Sprintf("Talep %s <@%s> tarafından kapatıldı", channelName, actorID),
		Color:       colourRed,
	})
}

func freezeLogEmbed(channelName, actorID string, frozen bool) *discordgo.MessageEmbed {
	action := "açıldı"
	title := "Talep Açıldı"
	if frozen {
		action = "donduruldu"
		title = "Talep Donduruldu"
	}
	return withFooter(&discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Talep %s <@%s> tarafından %s", channelName, actorID, action),
		Color:       colourYellow,
	})
}
