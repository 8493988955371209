package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/dataaccess"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/logging"
)

// State is the lifecycle state of a ticket.
type State string

const (
	// StateOpen is the initial state of a created ticket.
	StateOpen State = "OPEN"

	// StateFrozen is an open ticket whose participants lost write access.
	StateFrozen State = "FROZEN"

	// StateClosing is a ticket inside the close grace period.
	StateClosing State = "CLOSING"

	// StateArchived is a closed ticket relocated into the archive category.
	StateArchived State = "ARCHIVED"

	// StateDeleted is a closed ticket whose channel was deleted.
	StateDeleted State = "DELETED"
)

// Lifecycle drives a ticket through creation, freezing and closure.
type Lifecycle struct {
	// l is the logger.
	l *slog.Logger

	// s is the discord session.
	s Session

	// store is the configuration store.
	store *dataaccess.ConfigStore

	// registry tracks ticket identity.
	registry *Registry

	// notifier delivers best-effort DMs.
	notifier *Notifier

	// botID is the bot's own user ID.
	botID string

	// grace is the delay between announcing a closure and executing it.
	grace time.Duration

	// deleteDelay is the pause between announcing a deletion fallback and
	// deleting the channel.
	deleteDelay time.Duration

	// mu guards closing.
	mu sync.Mutex

	// closing holds the channel IDs whose close grace period is running.
	// Freeze and close are rejected for these channels, which keeps the
	// final state deterministic under concurrent invocations.
	closing map[string]struct{}
}

// NewLifecycle creates a ticket lifecycle manager.
func NewLifecycle(l *slog.Logger, s Session, store *dataaccess.ConfigStore, registry *Registry, notifier *Notifier, botID string) *Lifecycle {
	return &Lifecycle{
		l:           l,
		s:           s,
		store:       store,
		registry:    registry,
		notifier:    notifier,
		botID:       botID,
		grace:       5 * time.Second,
		deleteDelay: 3 * time.Second,
		closing:     map[string]struct{}{},
	}
}

// CreateRequest carries the inputs for opening a ticket. The platform layer
// has already validated them.
type CreateRequest struct {
	GuildID   string
	Requester Actor
	Category  entities.Category
	Form      entities.TicketForm
}

// Created describes a freshly opened ticket.
type Created struct {
	ID          int
	ChannelID   string
	ChannelName string
	BoundRoleID string
}

// Create opens a new ticket: allocates an ID, creates the ticket channel with
// its initial permission overwrites, records the owner, posts the intro
// message with the ticket controls, notifies the requester and writes a
// creation record to the log channel if one is configured.
func (lc *Lifecycle) Create(ctx context.Context, req *CreateRequest) (*Created, error) {
	cfg, err := lc.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	id, err := lc.registry.NextID(ctx)
	if err != nil {
		return nil, err
	}

	boundRoleID, _ := cfg.BoundRole(req.Category.Name)

	name := entities.TicketChannelName(id, req.Requester.Username)
	channel, err := lc.s.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Talep %s tarafından oluşturuldu", req.Requester.Username),
		PermissionOverwrites: InitialOverwrites(req.GuildID, req.Requester.ID, lc.botID, cfg.StaffRoleID, boundRoleID),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}

	if err := lc.registry.RecordOwner(ctx, channel.ID, req.Requester.ID); err != nil {
		return nil, err
	}

	if _, err := lc.s.ChannelMessageSendComplex(channel.ID, introMessage(id, req.Category, req.Requester.ID, boundRoleID, req.Form)); err != nil {
		lc.l.Error("Error sending ticket intro message", slog.String(logging.KeyError, err.Error()))
	}

	lc.notifier.NotifyPrivately(ctx, req.Requester.ID,
		fmt.Sprintf("Merhaba %s, talebiniz şu anda açıktır. Destek ekibimiz en kısa sürede size yardımcı olacaktır.", req.Requester.Username))

	lc.postLog(cfg, creationLogEmbed(id, req.Category, req.Requester.ID, boundRoleID, req.Form))

	return &Created{
		ID:          id,
		ChannelID:   channel.ID,
		ChannelName: name,
		BoundRoleID: boundRoleID,
	}, nil
}

// CanModerate reports whether the actor may freeze or otherwise moderate
// tickets: administrators, staff role holders and holders of any support team
// role. A support team member may moderate every ticket, not just those of
// their own category.
func CanModerate(cfg *entities.GuildConfig, actor Actor) bool {
	if actor.IsAdministrator() || actor.HasRole(cfg.StaffRoleID) {
		return true
	}

	for _, roleID := range cfg.CategoryRoles {
		if actor.HasRole(roleID) {
			return true
		}
	}
	return false
}

// ToggleFreeze flips the frozen state of a ticket. Frozen participants keep
// read access but lose write access; the bot, administrators, staff and
// support team members are never muted. It returns the new frozen state.
func (lc *Lifecycle) ToggleFreeze(ctx context.Context, guildID, channelID string, actor Actor) (bool, error) {
	channel, err := lc.s.Channel(channelID)
	if err != nil {
		return false, fmt.Errorf("error getting channel: %w", err)
	}

	if !entities.IsTicketChannelName(channel.Name) {
		return false, ErrNotTicket
	}
	if lc.isClosing(channelID) {
		return false, ErrTicketClosing
	}

	cfg, err := lc.store.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("error loading configuration: %w", err)
	}

	if !CanModerate(cfg, actor) {
		return false, ErrUnauthorized
	}

	frozen := cfg.IsFrozen(channelID)

	exempt, err := lc.exemptMembers(guildID, channel.PermissionOverwrites, cfg)
	if err != nil {
		return frozen, err
	}

	var desired []*discordgo.PermissionOverwrite
	if frozen {
		desired = UnfreezeOverwrites(channel.PermissionOverwrites, lc.botID, exempt)
	} else {
		desired = FreezeOverwrites(channel.PermissionOverwrites, lc.botID, exempt)
	}

	for _, ow := range DiffOverwrites(channel.PermissionOverwrites, desired) {
		if err := lc.s.ChannelPermissionSet(channelID, ow.ID, ow.Type, ow.Allow, ow.Deny); err != nil {
			return frozen, fmt.Errorf("error updating channel permissions: %w", err)
		}
	}

	if err := lc.registry.SetFrozen(ctx, channelID, !frozen); err != nil {
		return frozen, err
	}

	if _, err := lc.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed:      frozenEmbed(actor.ID, !frozen),
		Components: ControlButtons(!frozen),
	}); err != nil {
		lc.l.Error("Error sending freeze status message", slog.String(logging.KeyError, err.Error()))
	}

	if owner, ok := cfg.TicketOwners[channelID]; ok && owner != "" {
		content := "Merhaba, talebiniz şu anda açıktır. Artık mesaj gönderebilirsiniz."
		if !frozen {
			content = "Merhaba, talebiniz şu anda dondurulmuştur. Geçici olarak mesaj gönderemezsiniz."
		}
		lc.notifier.NotifyPrivately(ctx, owner, content)
	}

	lc.postLog(cfg, freezeLogEmbed(channel.Name, actor.ID, !frozen))

	return !frozen, nil
}

// Close closes a ticket. After a grace delay the channel is moved into the
// archive category, renamed with the closed prefix and muted for non-staff
// participants. If the archive category no longer resolves, or relocation
// fails for any reason, the channel is deleted instead; a ticket is never
// left half closed. Either way the ticket is dropped from the owner map and
// the frozen set.
func (lc *Lifecycle) Close(ctx context.Context, guildID, channelID string, actor Actor) (State, error) {
	channel, err := lc.s.Channel(channelID)
	if err != nil {
		return StateOpen, fmt.Errorf("error getting channel: %w", err)
	}

	if !entities.IsTicketChannelName(channel.Name) {
		return StateOpen, ErrNotTicket
	}

	cfg, err := lc.store.Snapshot(ctx)
	if err != nil {
		return StateOpen, fmt.Errorf("error loading configuration: %w", err)
	}

	if cfg.ArchiveCategoryID == "" {
		state := StateOpen
		if cfg.IsFrozen(channelID) {
			state = StateFrozen
		}
		return state, ErrArchiveNotConfigured
	}

	if !lc.beginClosing(channelID) {
		return StateClosing, ErrTicketClosing
	}
	defer lc.endClosing(channelID)

	// Announce imminent closure.
	if _, err := lc.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embed: closingEmbed()}); err != nil {
		lc.l.Error("Error announcing ticket closure", slog.String(logging.KeyError, err.Error()))
	}

	if err := lc.wait(ctx, lc.grace); err != nil {
		return StateClosing, err
	}

	owner, hasOwner := cfg.TicketOwners[channelID]

	state := StateDeleted
	archive, archErr := lc.s.Channel(cfg.ArchiveCategoryID)
	if archErr == nil && archive.Type == discordgo.ChannelTypeGuildCategory {
		if err := lc.archive(guildID, channel, cfg, actor); err != nil {
			lc.l.Error("Error archiving ticket, deleting channel instead",
				slog.String("channel", channelID),
				slog.String(logging.KeyError, err.Error()),
			)
			lc.deleteChannel(channelID)
		} else {
			state = StateArchived
		}
	} else {
		// The configured archive category no longer resolves.
		if _, err := lc.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embed: archiveMissingEmbed()}); err != nil {
			lc.l.Error("Error announcing deletion fallback", slog.String(logging.KeyError, err.Error()))
		}
		if err := lc.wait(ctx, lc.deleteDelay); err != nil {
			return StateClosing, err
		}
		lc.deleteChannel(channelID)
	}

	if err := lc.registry.Forget(ctx, channelID); err != nil {
		return state, err
	}

	lc.postLog(cfg, closeLogEmbed(channel.Name, actor.ID))

	if hasOwner && owner != "" {
		lc.notifier.NotifyPrivately(ctx, owner, "Merhaba, talebiniz kapatılmıştır. Teşekkür ederiz.")
	}

	return state, nil
}

// archive relocates the ticket channel into the archive category, renames it
// with the closed prefix and revokes write access for non-staff principals.
func (lc *Lifecycle) archive(guildID string, channel *discordgo.Channel, cfg *entities.GuildConfig, actor Actor) error {
	if _, err := lc.s.ChannelEditComplex(channel.ID, &discordgo.ChannelEdit{
		Name:     entities.ClosedChannelName(channel.Name),
		ParentID: cfg.ArchiveCategoryID,
	}); err != nil {
		return fmt.Errorf("error moving channel to archive: %w", err)
	}

	exempt, err := lc.exemptMembers(guildID, channel.PermissionOverwrites, cfg)
	if err != nil {
		return err
	}

	desired := FreezeOverwrites(channel.PermissionOverwrites, lc.botID, exempt)
	for _, ow := range DiffOverwrites(channel.PermissionOverwrites, desired) {
		if err := lc.s.ChannelPermissionSet(channel.ID, ow.ID, ow.Type, ow.Allow, ow.Deny); err != nil {
			return fmt.Errorf("error revoking write access: %w", err)
		}
	}

	if _, err := lc.s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{Embed: closedEmbed(actor.ID)}); err != nil {
		lc.l.Error("Error sending closed message", slog.String(logging.KeyError, err.Error()))
	}
	return nil
}

// exemptMembers resolves which individual member overwrites must keep write
// access: administrators, staff role holders and support team members. The
// bot is handled separately by the overwrite functions. A member that cannot
// be resolved is treated as not exempt.
func (lc *Lifecycle) exemptMembers(guildID string, overwrites []*discordgo.PermissionOverwrite, cfg *entities.GuildConfig) (map[string]bool, error) {
	roles, err := lc.s.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild roles: %w", err)
	}

	adminRoles := make(map[string]bool, len(roles))
	for _, role := range roles {
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			adminRoles[role.ID] = true
		}
	}

	teamRoles := make(map[string]bool, len(cfg.CategoryRoles))
	for _, roleID := range cfg.CategoryRoles {
		teamRoles[roleID] = true
	}

	exempt := make(map[string]bool)
	for _, ow := range overwrites {
		if ow.Type != discordgo.PermissionOverwriteTypeMember || ow.ID == lc.botID {
			continue
		}

		member, err := lc.s.GuildMember(guildID, ow.ID)
		if err != nil {
			lc.l.Warn("Error resolving member, treating as not exempt",
				slog.String("member", ow.ID),
				slog.String(logging.KeyError, err.Error()),
			)
			continue
		}

		for _, roleID := range member.Roles {
			if adminRoles[roleID] || teamRoles[roleID] || (cfg.StaffRoleID != "" && roleID == cfg.StaffRoleID) {
				exempt[ow.ID] = true
				break
			}
		}
	}
	return exempt, nil
}

func (lc *Lifecycle) postLog(cfg *entities.GuildConfig, embed *discordgo.MessageEmbed) {
	if cfg.TicketLogChannelID == "" {
		return
	}
	if _, err := lc.s.ChannelMessageSendComplex(cfg.TicketLogChannelID, &discordgo.MessageSend{Embed: embed}); err != nil {
		lc.l.Warn("Error posting ticket log record", slog.String(logging.KeyError, err.Error()))
	}
}

func (lc *Lifecycle) deleteChannel(channelID string) {
	if _, err := lc.s.ChannelDelete(channelID); err != nil {
		lc.l.Error("Error deleting ticket channel",
			slog.String("channel", channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

func (lc *Lifecycle) beginClosing(channelID string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if _, ok := lc.closing[channelID]; ok {
		return false
	}
	lc.closing[channelID] = struct{}{}
	return true
}

func (lc *Lifecycle) endClosing(channelID string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	delete(lc.closing, channelID)
}

func (lc *Lifecycle) isClosing(channelID string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	_, ok := lc.closing[channelID]
	return ok
}

func (lc *Lifecycle) wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SetGracePeriod overrides the close grace delay. Used by tests.
func (lc *Lifecycle) SetGracePeriod(grace, deleteDelay time.Duration) {
	lc.grace = grace
	lc.deleteDelay = deleteDelay
}
