package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/cmd/bot/config"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/logging"
	"github.com/discosoft/talep/pkg/messages"
	"github.com/discosoft/talep/pkg/ticket"
	"github.com/discosoft/talep/pkg/wizard"
)

// logChannelReminderTTL is how long the post-setup reminder about the log
// channel stays before it is removed.
const logChannelReminderTTL = 30 * time.Second

// setupCmdController starts the guided setup in the channel the command was
// issued in.
func setupCmdController(a IApp, i *discordgo.InteractionCreate) error {
	actor := actorFromInteraction(i)

	if _, err := a.Wizard().Begin(context.Background(), actor.ID, i.GuildID, i.ChannelID, i.Token); err != nil {
		return fmt.Errorf("error starting setup: %w", err)
	}

	return respondSlash(a, i, messages.SetupArchivePrompt)
}

// messageCreateHandler watches for the archive category ID an administrator
// types during the first step of the setup wizard. All other messages are
// ignored.
func messageCreateHandler(a IApp) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}

		sess, ok := a.Wizard().Lookup(m.Author.ID)
		if !ok || sess.State != wizard.StateAwaitingArchive || sess.ChannelID != m.ChannelID {
			return
		}

		sess, err := a.Wizard().SubmitArchiveID(context.Background(), m.Author.ID, m.Content, func(id string) bool {
			ch, err := a.Session().Channel(id)
			return err == nil && ch.Type == discordgo.ChannelTypeGuildCategory && ch.GuildID == m.GuildID
		})
		if err != nil {
			var vErr *ticket.ValidationError
			if errors.As(err, &vErr) {
				reply := messages.SetupArchiveNotFound
				if _, perr := strconv.ParseUint(strings.TrimSpace(m.Content), 10, 64); perr != nil {
					reply = messages.SetupArchiveInvalid
				}
				if _, serr := a.Session().ChannelMessageSend(m.ChannelID, reply); serr != nil {
					a.Log().Error("Error sending archive validation reply", slog.String(logging.KeyError, serr.Error()))
				}
				return
			}

			a.Log().Error("Error submitting archive category", slog.String(logging.KeyError, err.Error()))
			return
		}

		category, ok := sess.Current()
		if !ok {
			a.Log().Error("Wizard advanced past role selection without categories")
			return
		}

		if err := sendWizardStep(a, m.ChannelID, category); err != nil {
			a.Log().Error("Error sending wizard step", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// wizardRoleHandler binds the selected role to the current category and
// advances the wizard.
func wizardRoleHandler(a IApp, i *discordgo.InteractionCreate, categoryName string) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return respondSlashEphemeral(a, i, messages.ErrUserErrorProcessing)
	}

	actor := actorFromInteraction(i)

	next, done, err := a.Wizard().Bind(actor.ID, categoryName, values[0])
	if err != nil {
		if errors.Is(err, wizard.ErrStaleStep) {
			return respondSlashEphemeral(a, i, messages.SetupStepStale)
		}
		return respondSlashEphemeral(a, i, messages.SetupSessionExpired)
	}

	return advanceWizard(a, i, next, done)
}

// wizardSkipHandler advances the wizard without binding a role to the
// current category.
func wizardSkipHandler(a IApp, i *discordgo.InteractionCreate, categoryName string) error {
	actor := actorFromInteraction(i)

	next, done, err := a.Wizard().Skip(actor.ID, categoryName)
	if err != nil {
		if errors.Is(err, wizard.ErrStaleStep) {
			return respondSlashEphemeral(a, i, messages.SetupStepStale)
		}
		return respondSlashEphemeral(a, i, messages.SetupSessionExpired)
	}

	return advanceWizard(a, i, next, done)
}

// advanceWizard swaps the step message for the next category, or finalizes
// the run once every category has been visited.
func advanceWizard(a IApp, i *discordgo.InteractionCreate, next entities.Category, done bool) error {
	if !done {
		return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{wizardStepEmbed(next)},
				Components: wizardStepComponents(next),
			},
		})
	}
	return finalizeWizard(a, i)
}

// finalizeWizard publishes the ticket entry message, persists the collected
// configuration and delivers the setup summary to the administrator. The
// summary is pushed through the notification fallback chain, so a closed DM
// never loses it.
func finalizeWizard(a IApp, i *discordgo.InteractionCreate) error {
	actor := actorFromInteraction(i)

	sess, ok := a.Wizard().Lookup(actor.ID)
	if !ok {
		return respondSlashEphemeral(a, i, messages.SetupSessionExpired)
	}

	// Clear the wizard controls first so the step message cannot be
	// clicked again while the entry message is published.
	if err := a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    messages.SetupFinalizing,
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	}); err != nil {
		return fmt.Errorf("error clearing wizard controls: %w", err)
	}

	entry, err := sendTicketEntryMessage(a, sess.ChannelID)
	if err != nil {
		return fmt.Errorf("error publishing ticket entry message: %w", err)
	}

	completion, err := a.Wizard().Finalize(context.Background(), actor.ID, entry.ChannelID)
	if err != nil {
		return fmt.Errorf("error finalizing setup: %w", err)
	}

	summary := wizard.Summary(completion.ArchiveCategoryID, completion.Bindings)

	responders := []ticket.Responder{
		ticket.ResponderFunc{
			ResponderName: "interaction followup",
			Fn: func(content string) error {
				return followupEphemeral(a, i.Interaction, content)
			},
		},
		ticket.ResponderFunc{
			ResponderName: "setup command followup",
			Fn: func(content string) error {
				return followupEphemeral(a, &discordgo.Interaction{
					AppID: config.ApplicationId,
					Token: sess.ReplyToken,
				}, content)
			},
		},
	}

	outcome := a.Notifier().DeliverWithFallback(context.Background(), actor.ID, summary, responders, sess.ChannelID)

	if err := a.Notifier().PostTransient(context.Background(), sess.ChannelID, messages.SetupLogChannelReminder, logChannelReminderTTL); err != nil {
		a.Log().Warn("Error posting log channel reminder", slog.String(logging.KeyError, err.Error()))
	}

	a.Log().Info("Setup completed",
		slog.String("guild", sess.GuildID),
		slog.String("admin", actor.ID),
		slog.String("summary_delivery", string(outcome)),
	)
	return nil
}

// sendWizardStep posts the role-selection controls for a category.
func sendWizardStep(a IApp, channelID string, category entities.Category) error {
	if _, err := a.Session().ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{wizardStepEmbed(category)},
		Components: wizardStepComponents(category),
	}); err != nil {
		return fmt.Errorf("error sending wizard step message: %w", err)
	}
	return nil
}

func wizardStepEmbed(category entities.Category) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Destek Ekibi Seçimi",
		Description: fmt.Sprintf("**%s %s** kategorisi için sorumlu destek ekibi rolünü seçin veya bu adımı atlayın.",
			category.Emoji, category.Name),
		Color: 0x5865F2,
	}
}

func wizardStepComponents(category entities.Category) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.RoleSelectMenu,
					CustomID:    WizardRoleSelectPrefix + category.Name,
					Placeholder: "Rol seçin...",
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Bu adımı atla",
					Style:    discordgo.SecondaryButton,
					CustomID: WizardSkipPrefix + category.Name,
				},
			},
		},
	}
}
