package ticket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/discosoft/talep/pkg/dataaccess"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/stretchr/testify/require"
)

// fakeSession is an in-memory stand-in for the Discord session.
type fakeSession struct {
	mu sync.Mutex

	channels map[string]*discordgo.Channel
	nextID   int

	// sent records every message by channel ID.
	sent map[string][]*discordgo.MessageSend

	// deleted records deleted channel IDs.
	deleted []string

	// removedMessages records deleted message IDs.
	removedMessages []string

	members map[string]*discordgo.Member
	roles   []*discordgo.Role

	// dmFail makes DM channel creation fail.
	dmFail bool

	// sendFail makes message sends to the given channels fail.
	sendFail map[string]bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		channels: map[string]*discordgo.Channel{},
		sent:     map[string][]*discordgo.MessageSend{},
		members:  map[string]*discordgo.Member{},
		sendFail: map[string]bool{},
	}
}

func (f *fakeSession) addChannel(ch *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.ID] = ch
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return ch, nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	ch := &discordgo.Channel{
		ID:                   fmt.Sprintf("chan-%d", f.nextID),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		Topic:                data.Topic,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeSession) ChannelEditComplex(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	if data.Name != "" {
		ch.Name = data.Name
	}
	if data.ParentID != "" {
		ch.ParentID = data.ParentID
	}
	return ch, nil
}

func (f *fakeSession) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return ch, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendFail[channelID] {
		return nil, fmt.Errorf("send refused for %s", channelID)
	}
	f.sent[channelID] = append(f.sent[channelID], data)
	return &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", len(f.sent[channelID])),
		ChannelID: channelID,
	}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removedMessages = append(f.removedMessages, messageID)
	return nil
}

func (f *fakeSession) removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.removedMessages))
	copy(out, f.removedMessages)
	return out
}

func (f *fakeSession) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch, ok := f.channels[channelID]
	if !ok {
		return fmt.Errorf("unknown channel %s", channelID)
	}

	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == targetID && ow.Type == targetType {
			ow.Allow = allow
			ow.Deny = deny
			return nil
		}
	}
	ch.PermissionOverwrites = append(ch.PermissionOverwrites, &discordgo.PermissionOverwrite{
		ID:    targetID,
		Type:  targetType,
		Allow: allow,
		Deny:  deny,
	})
	return nil
}

func (f *fakeSession) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s", userID)
	}
	return m, nil
}

func (f *fakeSession) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles, nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmFail {
		return nil, fmt.Errorf("cannot DM %s", recipientID)
	}
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeSession) sentTo(channelID string) []*discordgo.MessageSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[channelID]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLifecycle(t *testing.T, fs *fakeSession) (*Lifecycle, *dataaccess.ConfigStore) {
	t.Helper()

	store := testStore(t)
	l := testLogger()
	lc := NewLifecycle(l, fs, store, NewRegistry(store), NewNotifier(l, fs), "bot-1")
	lc.SetGracePeriod(time.Millisecond, time.Millisecond)
	return lc, store
}

func TestLifecycleCreate(t *testing.T) {
	fs := newFakeSession()
	lc, store := testLifecycle(t, fs)
	ctx := context.Background()

	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.StaffRoleID = "staff-1"
		cfg.CategoryRoles["Teknik Sorun"] = "team-1"
		return nil
	})
	require.NoError(t, err)

	created, err := lc.Create(ctx, &CreateRequest{
		GuildID:   "guild-1",
		Requester: Actor{ID: "user-1", Username: "wolf"},
		Category:  entities.Category{Name: "Teknik Sorun", Emoji: "🔧"},
		Form:      entities.TicketForm{FirstName: "Jacob", LastName: "Brewer", Email: "j@b.dev", Reason: "help"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, created.ID)
	require.Equal(t, "talep-1-wolf", created.ChannelName)
	require.Equal(t, "team-1", created.BoundRoleID)

	ch, err := fs.Channel(created.ChannelID)
	require.NoError(t, err)
	require.Equal(t, discordgo.ChannelTypeGuildText, ch.Type)

	// Everyone denied, creator, bot, staff and the bound team allowed.
	require.Len(t, ch.PermissionOverwrites, 5)

	// The owner is recorded and the counter advanced.
	cfg, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.TicketCounter)
	require.Equal(t, "user-1", cfg.TicketOwners[created.ChannelID])

	// The intro message landed in the new channel.
	require.NotEmpty(t, fs.sentTo(created.ChannelID))

	// The next ticket gets the next ID.
	second, err := lc.Create(ctx, &CreateRequest{
		GuildID:   "guild-1",
		Requester: Actor{ID: "user-2", Username: "kerem"},
		Category:  entities.Category{Name: "Diğer", Emoji: "📝"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.ID)
	require.Equal(t, "talep-2-kerem", second.ChannelName)
}

func TestCloseWithoutArchiveConfigured(t *testing.T) {
	fs := newFakeSession()
	lc, _ := testLifecycle(t, fs)
	ctx := context.Background()

	fs.addChannel(&discordgo.Channel{ID: "chan-1", GuildID: "guild-1", Name: "talep-1-wolf"})

	state, err := lc.Close(ctx, "guild-1", "chan-1", Actor{ID: "user-1"})
	require.ErrorIs(t, err, ErrArchiveNotConfigured)
	require.Equal(t, StateOpen, state)

	// Nothing was announced and the channel is untouched.
	require.Empty(t, fs.sentTo("chan-1"))
	_, err = fs.Channel("chan-1")
	require.NoError(t, err)
}

func TestCloseWithoutArchiveConfiguredFrozen(t *testing.T) {
	fs := newFakeSession()
	lc, store := testLifecycle(t, fs)
	ctx := context.Background()

	fs.addChannel(&discordgo.Channel{ID: "chan-1", GuildID: "guild-1", Name: "talep-1-wolf"})

	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.SetFrozen("chan-1", true)
		return nil
	})
	require.NoError(t, err)

	// A frozen ticket stays frozen when the close is refused.
	state, err := lc.Close(ctx, "guild-1", "chan-1", Actor{ID: "user-1"})
	require.ErrorIs(t, err, ErrArchiveNotConfigured)
	require.Equal(t, StateFrozen, state)

	require.Empty(t, fs.sentTo("chan-1"))
	_, err = fs.Channel("chan-1")
	require.NoError(t, err)
}

func TestCloseNotATicket(t *testing.T) {
	fs := newFakeSession()
	lc, _ := testLifecycle(t, fs)

	fs.addChannel(&discordgo.Channel{ID: "chan-1", GuildID: "guild-1", Name: "genel-sohbet"})

	_, err := lc.Close(context.Background(), "guild-1", "chan-1", Actor{ID: "user-1"})
	require.ErrorIs(t, err, ErrNotTicket)
}

func TestCloseArchivesTicket(t *testing.T) {
	fs := newFakeSession()
	lc, store := testLifecycle(t, fs)
	ctx := context.Background()

	fs.addChannel(&discordgo.Channel{ID: "cat-1", GuildID: "guild-1", Name: "Arşiv", Type: discordgo.ChannelTypeGuildCategory})
	fs.addChannel(&discordgo.Channel{
		ID:      "chan-1",
		GuildID: "guild-1",
		Name:    "talep-1-wolf",
		Type:    discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "guild-1", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionAll},
			{ID: "user-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: "bot-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionSendMessages},
		},
	})
	fs.members["user-1"] = &discordgo.Member{User: &discordgo.User{ID: "user-1"}}

	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.ArchiveCategoryID = "cat-1"
		cfg.TicketOwners["chan-1"] = "user-1"
		cfg.SetFrozen("chan-1", true)
		return nil
	})
	require.NoError(t, err)

	state, err := lc.Close(ctx, "guild-1", "chan-1", Actor{ID: "admin-1"})
	require.NoError(t, err)
	require.Equal(t, StateArchived, state)

	ch, err := fs.Channel("chan-1")
	require.NoError(t, err)
	require.Equal(t, "kapali-1-wolf", ch.Name)
	require.Equal(t, "cat-1", ch.ParentID)

	// The participant lost write access but kept read access.
	var user *discordgo.PermissionOverwrite
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == "user-1" {
			user = ow
		}
	}
	require.NotNil(t, user)
	require.Zero(t, user.Allow&discordgo.PermissionSendMessages)
	require.NotZero(t, user.Deny&discordgo.PermissionSendMessages)
	require.NotZero(t, user.Allow&discordgo.PermissionViewChannel)

	// The ticket is dropped from the owner map and the frozen set.
	cfg, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.NotContains(t, cfg.TicketOwners, "chan-1")
	require.False(t, cfg.IsFrozen("chan-1"))
}

func TestCloseDeletesWhenArchiveUnresolvable(t *testing.T) {
	fs := newFakeSession()
	lc, store := testLifecycle(t, fs)
	ctx := context.Background()

	fs.addChannel(&discordgo.Channel{ID: "chan-1", GuildID: "guild-1", Name: "talep-1-wolf"})

	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.ArchiveCategoryID = "cat-gone"
		cfg.TicketOwners["chan-1"] = "user-1"
		return nil
	})
	require.NoError(t, err)

	state, err := lc.Close(ctx, "guild-1", "chan-1", Actor{ID: "user-1"})
	require.NoError(t, err)
	require.Equal(t, StateDeleted, state)

	require.Contains(t, fs.deleted, "chan-1")

	cfg, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.NotContains(t, cfg.TicketOwners, "chan-1")
}

func TestCloseRejectsConcurrentOperations(t *testing.T) {
	fs := newFakeSession()
	lc, store := testLifecycle(t, fs)
	lc.SetGracePeriod(200*time.Millisecond, time.Millisecond)
	ctx := context.Background()

	fs.addChannel(&discordgo.Channel{ID: "cat-1", GuildID: "guild-1", Type: discordgo.ChannelTypeGuildCategory})
	fs.addChannel(&discordgo.Channel{ID: "chan-1", GuildID: "guild-1", Name: "talep-1-wolf"})

	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.ArchiveCategoryID = "cat-1"
		return nil
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := lc.Close(ctx, "guild-1", "chan-1", Actor{ID: "user-1"})
		done <- err
	}()

	// Wait for the grace period to start.
	require.Eventually(t, func() bool {
		return lc.isClosing("chan-1")
	}, time.Second, 5*time.Millisecond)

	admin := Actor{ID: "admin-1", Permissions: discordgo.PermissionAdministrator}

	_, err = lc.ToggleFreeze(ctx, "guild-1", "chan-1", admin)
	require.ErrorIs(t, err, ErrTicketClosing)

	state, err := lc.Close(ctx, "guild-1", "chan-1", admin)
	require.ErrorIs(t, err, ErrTicketClosing)
	require.Equal(t, StateClosing, state)

	require.NoError(t, <-done)
}

func TestToggleFreeze(t *testing.T) {
	fs := newFakeSession()
	lc, store := testLifecycle(t, fs)
	ctx := context.Background()

	fs.roles = []*discordgo.Role{
		{ID: "staff-1", Name: "Destek", Permissions: 0},
	}
	fs.members["user-1"] = &discordgo.Member{User: &discordgo.User{ID: "user-1"}}
	fs.members["mod-1"] = &discordgo.Member{User: &discordgo.User{ID: "mod-1"}, Roles: []string{"staff-1"}}

	fs.addChannel(&discordgo.Channel{
		ID:      "chan-1",
		GuildID: "guild-1",
		Name:    "talep-1-wolf",
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "guild-1", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionAll},
			{ID: "user-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: "mod-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: "bot-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionSendMessages},
		},
	})

	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.StaffRoleID = "staff-1"
		cfg.TicketOwners["chan-1"] = "user-1"
		return nil
	})
	require.NoError(t, err)

	admin := Actor{ID: "admin-1", Permissions: discordgo.PermissionAdministrator}

	frozen, err := lc.ToggleFreeze(ctx, "guild-1", "chan-1", admin)
	require.NoError(t, err)
	require.True(t, frozen)

	ch, err := fs.Channel("chan-1")
	require.NoError(t, err)
	for _, ow := range ch.PermissionOverwrites {
		switch ow.ID {
		case "user-1":
			require.Zero(t, ow.Allow&discordgo.PermissionSendMessages)
			require.NotZero(t, ow.Deny&discordgo.PermissionSendMessages)
			require.NotZero(t, ow.Allow&discordgo.PermissionViewChannel)
		case "mod-1", "bot-1":
			// Staff and the bot keep write access.
			require.NotZero(t, ow.Allow&discordgo.PermissionSendMessages)
		}
	}

	cfg, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, cfg.IsFrozen("chan-1"))

	// Toggling again restores write access.
	frozen, err = lc.ToggleFreeze(ctx, "guild-1", "chan-1", admin)
	require.NoError(t, err)
	require.False(t, frozen)

	ch, err = fs.Channel("chan-1")
	require.NoError(t, err)
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == "user-1" {
			require.NotZero(t, ow.Allow&discordgo.PermissionSendMessages)
			require.Zero(t, ow.Deny&discordgo.PermissionSendMessages)
		}
	}

	cfg, err = store.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, cfg.IsFrozen("chan-1"))
}

func TestToggleFreezeUnauthorized(t *testing.T) {
	fs := newFakeSession()
	lc, _ := testLifecycle(t, fs)

	fs.addChannel(&discordgo.Channel{ID: "chan-1", GuildID: "guild-1", Name: "talep-1-wolf"})

	_, err := lc.ToggleFreeze(context.Background(), "guild-1", "chan-1", Actor{ID: "user-1"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCanModerate(t *testing.T) {
	cfg := entities.NewGuildConfig()
	cfg.StaffRoleID = "staff-1"
	cfg.CategoryRoles["Teknik Sorun"] = "team-1"

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{
			name:  "Administrator",
			actor: Actor{ID: "a", Permissions: discordgo.PermissionAdministrator},
			want:  true,
		},
		{
			name:  "StaffRole",
			actor: Actor{ID: "b", Roles: []string{"staff-1"}},
			want:  true,
		},
		{
			name:  "AnySupportTeamRole",
			actor: Actor{ID: "c", Roles: []string{"team-1"}},
			want:  true,
		},
		{
			name:  "PlainMember",
			actor: Actor{ID: "d", Roles: []string{"other"}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CanModerate(cfg, tt.actor))
		})
	}
}
