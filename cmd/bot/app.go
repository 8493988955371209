package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/cmd/bot/config"
	"github.com/discosoft/talep/cmd/bot/monitoring"
	"github.com/discosoft/talep/pkg/dataaccess"
	"github.com/discosoft/talep/pkg/logging"
	"github.com/discosoft/talep/pkg/request"
	"github.com/discosoft/talep/pkg/ticket"
	"github.com/discosoft/talep/pkg/wizard"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"
)

// sweepInterval is how often abandoned setup sessions are collected.
const sweepInterval = time.Minute

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Store returns the guild configuration store.
	Store() *dataaccess.ConfigStore

	// Registry returns the ticket registry.
	Registry() *ticket.Registry

	// Lifecycle returns the ticket lifecycle manager.
	Lifecycle() *ticket.Lifecycle

	// Notifier returns the notifier.
	Notifier() *ticket.Notifier

	// Wizard returns the setup wizard manager.
	Wizard() *wizard.Manager
}

type App struct {
	// l is the logger.
	l *slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// store is the guild configuration store.
	store *dataaccess.ConfigStore

	// registry tracks ticket identity.
	registry *ticket.Registry

	// lifecycle drives tickets through creation, freezing and closure.
	lifecycle *ticket.Lifecycle

	// notifier delivers best-effort private messages.
	notifier *ticket.Notifier

	// wizard owns the guided setup sessions.
	wizard *wizard.Manager

	// registeredCommands holds the slash commands created per guild, so
	// they can be removed again on shutdown.
	registeredCommands map[string][]*discordgo.ApplicationCommand
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		l:                  l,
		r:                  r,
		registeredCommands: make(map[string][]*discordgo.ApplicationCommand),
	}
}

func (a *App) Run() error {
	// Load the guild configuration before anything touches Discord. A
	// malformed configuration document is a startup failure.
	if err := a.setupDataAccess(context.Background()); err != nil {
		return fmt.Errorf("error setting up data access: %w", err)
	}

	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.l.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	if err := a.setupDomain(); err != nil {
		return fmt.Errorf("error setting up ticket services: %w", err)
	}

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Collect abandoned setup sessions.
	go a.sweepWizardSessions()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.l.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.l.Info("Received shutdown signal", slog.String(logging.KeySignal, sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.l.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Create event notifier. This is used to runServer events. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

// setupDataAccess selects the configuration backend and verifies the
// document loads. MongoDB is used when a URI was provided, otherwise the
// configuration lives in a local JSON file.
func (a *App) setupDataAccess(ctx context.Context) error {
	var dal dataaccess.ConfigDal
	if config.MongoUri != "" {
		dal = dataaccess.NewMongoConfigDal()
	} else {
		dal = dataaccess.NewFileConfigDal(config.ConfigFile)
	}
	a.store = dataaccess.NewConfigStore(dal)

	if _, err := a.store.Snapshot(ctx); err != nil {
		return fmt.Errorf("error loading guild configuration: %w", err)
	}
	return nil
}

func (a *App) setupDomain() error {
	// The bot's own user ID goes into every ticket channel's permission
	// overwrites. Resolve it over REST so it is known before the gateway
	// is opened.
	me, err := a.s.User("@me")
	if err != nil {
		return fmt.Errorf("error resolving bot user: %w", err)
	}

	a.registry = ticket.NewRegistry(a.store)
	a.notifier = ticket.NewNotifier(a.l, a.s)
	a.lifecycle = ticket.NewLifecycle(a.l, a.s, a.store, a.registry, a.notifier, me.ID)
	a.wizard = wizard.NewManager(a.l, a.store)
	return nil
}

func (a *App) runServer() {
	go func() {
		a.l.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.l.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.l.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.l)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.l)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Plain messages drive the archive ID step of the setup wizard.
	a.s.AddHandler(messageCreateHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandController{
			setupCmd.Name:           adminOnly(setupCmdController),
			staffRoleCmd.Name:       adminOnly(staffRoleCmdController),
			logChannelCmd.Name:      adminOnly(logChannelCmdController),
			archiveCategoryCmd.Name: adminOnly(archiveCategoryCmdController),
			supportTeamCmd.Name:     adminOnly(supportTeamCmdController),
		}))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.l.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) sweepWizardSessions() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()

	for range t.C {
		if n := a.wizard.Sweep(); n > 0 {
			a.l.Info("Swept abandoned setup sessions", slog.Int("count", n))
		}
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		for _, cmd := range slashCommands {
			created, err := a.s.ApplicationCommandCreate(config.ApplicationId, g.ID, cmd)
			if err != nil {
				return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, g.ID, err)
			}
			a.registeredCommands[g.ID] = append(a.registeredCommands[g.ID], created)
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	for guildID, cmds := range a.registeredCommands {
		for _, cmd := range cmds {
			if err := a.s.ApplicationCommandDelete(config.ApplicationId, guildID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting %s command for guild %s: %w", cmd.Name, guildID, err)
			}
		}
	}
	return nil
}

func (a *App) Log() *slog.Logger {
	return a.l
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Store() *dataaccess.ConfigStore {
	return a.store
}

func (a *App) Registry() *ticket.Registry {
	return a.registry
}

func (a *App) Lifecycle() *ticket.Lifecycle {
	return a.lifecycle
}

func (a *App) Notifier() *ticket.Notifier {
	return a.notifier
}

func (a *App) Wizard() *wizard.Manager {
	return a.wizard
}
