package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/cmd/bot/monitoring"
	"github.com/discosoft/talep/pkg/logging"
	"github.com/discosoft/talep/pkg/messages"
	"github.com/discosoft/talep/pkg/request"
	"github.com/discosoft/talep/pkg/ticket"
	"github.com/gorilla/mux"
)

// commandController is the handler for a slash command.
type commandController func(a IApp, i *discordgo.InteractionCreate) error

// componentAction is the decoded meaning of a message component or modal
// custom ID.
type componentAction int

const (
	actionUnknown componentAction = iota

	// actionCategorySelect is the category dropdown on the entry message.
	actionCategorySelect

	// actionCloseTicket is the close control inside a ticket channel.
	actionCloseTicket

	// actionFreezeTicket is the freeze toggle inside a ticket channel.
	actionFreezeTicket

	// actionWizardRole is the role picker of a setup wizard step.
	actionWizardRole

	// actionWizardSkip skips the current setup wizard step.
	actionWizardSkip

	// actionTicketModal is the submitted ticket request form.
	actionTicketModal
)

// parseCustomID decodes a component custom ID into an action and its
// argument. Wizard and modal IDs carry the category name after a colon.
func parseCustomID(id string) (componentAction, string) {
	switch {
	case id == CategorySelectID:
		return actionCategorySelect, ""
	case id == ticket.CloseTicketButtonID:
		return actionCloseTicket, ""
	case id == ticket.FreezeTicketButtonID:
		return actionFreezeTicket, ""
	case strings.HasPrefix(id, WizardRoleSelectPrefix):
		return actionWizardRole, strings.TrimPrefix(id, WizardRoleSelectPrefix)
	case strings.HasPrefix(id, WizardSkipPrefix):
		return actionWizardSkip, strings.TrimPrefix(id, WizardSkipPrefix)
	case strings.HasPrefix(id, TicketModalPrefix):
		return actionTicketModal, strings.TrimPrefix(id, TicketModalPrefix)
	}
	return actionUnknown, ""
}

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run the deferred function after the request has been handled, as the status code will not be available until then.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// adminOnly gates a slash command controller on the administrator
// permission.
func adminOnly(next commandController) commandController {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
			return respondSlashEphemeral(a, i, messages.AdminOnly)
		}
		return next(a, i)
	}
}

// interactionHandler routes every interaction the gateway delivers.
func interactionHandler(a IApp, controllers map[string]commandController) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			slashCommandHandler(a, controllers, i)
		case discordgo.InteractionMessageComponent:
			componentHandler(a, i)
		case discordgo.InteractionModalSubmit:
			modalHandler(a, i)
		}
	}
}

// slashCommandHandler is the handler for slash commands.
func slashCommandHandler(a IApp, controllers map[string]commandController, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	a.Log().Debug("Handling interaction " + name)

	t := time.Now().UTC()
	defer func() {
		monitoring.CommandDuration.WithLabelValues(name).Observe(time.Since(t).Seconds())
	}()

	controller, ok := controllers[name]
	if !ok {
		a.Log().Error("No controller found for command", slog.String("command", name))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	if err := controller(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing command %s", name),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// componentHandler is the handler for message components.
func componentHandler(a IApp, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	t := time.Now().UTC()
	defer func() {
		monitoring.CommandDuration.WithLabelValues(customID).Observe(time.Since(t).Seconds())
	}()

	action, arg := parseCustomID(customID)

	var err error
	switch action {
	case actionCategorySelect:
		err = categorySelectHandler(a, i)
	case actionCloseTicket:
		err = closeTicketHandler(a, i)
	case actionFreezeTicket:
		err = freezeTicketHandler(a, i)
	case actionWizardRole:
		err = wizardRoleHandler(a, i, arg)
	case actionWizardSkip:
		err = wizardSkipHandler(a, i, arg)
	default:
		a.Log().Error("No handler found for component", slog.String("custom_id", customID))
		err = respondSlashError(a, i)
	}

	if err != nil {
		a.Log().Error(fmt.Sprintf("Error processing component %s", customID),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// modalHandler is the handler for modal submissions.
func modalHandler(a IApp, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID

	action, arg := parseCustomID(customID)
	if action != actionTicketModal {
		a.Log().Error("No handler found for modal", slog.String("custom_id", customID))
		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	if err := ticketModalHandler(a, i, arg); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing modal %s", customID),
			slog.String(logging.KeyError, err.Error()))

		if err := respondSlashError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}
