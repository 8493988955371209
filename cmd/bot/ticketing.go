package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/cmd/bot/monitoring"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/logging"
	"github.com/discosoft/talep/pkg/messages"
	"github.com/discosoft/talep/pkg/ticket"
)

// sendTicketEntryMessage publishes the permanent entry point for opening
// tickets: an embed explaining the system with the category dropdown under
// it.
func sendTicketEntryMessage(a IApp, channelID string) (*discordgo.Message, error) {
	options := make([]discordgo.SelectMenuOption, 0, len(entities.Categories))
	for _, c := range entities.Categories {
		options = append(options, discordgo.SelectMenuOption{
			Label: c.Name,
			Value: c.Name,
			Emoji: discordgo.ComponentEmoji{Name: c.Emoji},
		})
	}

	msg, err := a.Session().ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: "🎫 Destek Talepleri",
				Description: "Destek talebi oluşturmak için aşağıdaki menüden bir kategori seçin.\n" +
					"Talebiniz için özel bir kanal açılacaktır.",
				Color: 0x5865F2,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    CategorySelectID,
						Placeholder: "Talep kategorisi seçin...",
						Options:     options,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error sending ticket entry message: %w", err)
	}
	return msg, nil
}

// categorySelectHandler answers the category dropdown with the ticket
// request form.
func categorySelectHandler(a IApp, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return respondSlashEphemeral(a, i, messages.UnknownCategory)
	}

	category, ok := entities.FindCategory(values[0])
	if !ok {
		return respondSlashEphemeral(a, i, messages.UnknownCategory)
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: TicketModalPrefix + category.Name,
			Title:    "Destek Talebi: " + category.Name,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "first_name",
							Label:     "Adınız",
							Style:     discordgo.TextInputShort,
							Required:  true,
							MaxLength: 50,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "last_name",
							Label:     "Soyadınız",
							Style:     discordgo.TextInputShort,
							Required:  true,
							MaxLength: 50,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "email",
							Label:     "E-posta Adresiniz",
							Style:     discordgo.TextInputShort,
							Required:  true,
							MaxLength: 100,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  "reason",
							Label:     "Talep Sebebiniz",
							Style:     discordgo.TextInputParagraph,
							Required:  true,
							MaxLength: 1000,
						},
					},
				},
			},
		},
	})
}

// ticketModalHandler opens the ticket from a submitted request form.
func ticketModalHandler(a IApp, i *discordgo.InteractionCreate, categoryName string) error {
	category, ok := entities.FindCategory(categoryName)
	if !ok {
		return respondSlashEphemeral(a, i, messages.UnknownCategory)
	}

	data := i.ModalSubmitData()
	form := entities.TicketForm{
		FirstName: modalValue(&data, "first_name"),
		LastName:  modalValue(&data, "last_name"),
		Email:     modalValue(&data, "email"),
		Reason:    modalValue(&data, "reason"),
	}

	created, err := a.Lifecycle().Create(context.Background(), &ticket.CreateRequest{
		GuildID:   i.GuildID,
		Requester: actorFromInteraction(i),
		Category:  category,
		Form:      form,
	})
	if err != nil {
		return fmt.Errorf("error creating ticket: %w", err)
	}

	monitoring.TicketsCreated.Inc()

	return respondSlashEphemeral(a, i, fmt.Sprintf(messages.TicketCreated, "<#"+created.ChannelID+">"))
}

// closeTicketHandler starts the closure of the ticket channel the button
// lives in. The grace period outlives the interaction deadline, so the
// interaction is acknowledged first and failures are reported as ephemeral
// followups.
func closeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := actorFromInteraction(i)

	if err := respondSlashEphemeral(a, i, messages.TicketCloseStarted); err != nil {
		return fmt.Errorf("error acknowledging close: %w", err)
	}

	go func() {
		state, err := a.Lifecycle().Close(context.Background(), i.GuildID, i.ChannelID, actor)
		if err != nil {
			a.Log().Error("Error closing ticket",
				slog.String("channel", i.ChannelID),
				slog.String(logging.KeyError, err.Error()))

			if err := followupEphemeral(a, i.Interaction, ticketErrorMessage(err)); err != nil {
				a.Log().Error("Error sending close followup", slog.String(logging.KeyError, err.Error()))
			}
			return
		}

		monitoring.TicketsClosed.WithLabelValues(strings.ToLower(string(state))).Inc()
	}()
	return nil
}

// freezeTicketHandler toggles the freeze state of the ticket channel the
// button lives in.
func freezeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	actor := actorFromInteraction(i)

	frozen, err := a.Lifecycle().ToggleFreeze(context.Background(), i.GuildID, i.ChannelID, actor)
	if err != nil {
		if msg := ticketErrorMessage(err); msg != messages.ErrUserErrorProcessing {
			return respondSlashEphemeral(a, i, msg)
		}
		return fmt.Errorf("error toggling freeze: %w", err)
	}

	state := "unfrozen"
	reply := messages.TicketUnfrozen
	if frozen {
		state = "frozen"
		reply = messages.TicketFrozen
	}
	monitoring.TicketFreezes.WithLabelValues(state).Inc()

	return respondSlashEphemeral(a, i, reply)
}

// ticketErrorMessage maps lifecycle errors onto user-facing replies.
func ticketErrorMessage(err error) string {
	switch {
	case errors.Is(err, ticket.ErrArchiveNotConfigured):
		return messages.ArchiveNotConfigured
	case errors.Is(err, ticket.ErrNotTicket):
		return messages.NotATicketChannel
	case errors.Is(err, ticket.ErrTicketClosing):
		return messages.TicketAlreadyClosing
	case errors.Is(err, ticket.ErrUnauthorized):
		return messages.NoPermission
	}
	return messages.ErrUserErrorProcessing
}

// modalValue pulls a text input value out of a submitted modal by its
// custom ID.
func modalValue(data *discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		r, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range r.Components {
			input, ok := c.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if input.CustomID == customID {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}
