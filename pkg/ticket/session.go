package ticket

import (
	"github.com/Jacobbrewer1/discordgo"
)

// Session is the slice of the Discord session the ticket system uses.
// *discordgo.Session satisfies it; tests substitute a fake.
type Session interface {
	// Channel returns a channel by ID.
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)

	// GuildChannelCreateComplex creates a channel in a guild.
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)

	// ChannelEditComplex edits an existing channel.
	ChannelEditComplex(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)

	// ChannelDelete deletes a channel.
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)

	// ChannelMessageSendComplex sends a message to a channel.
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)

	// ChannelMessageDelete deletes a message from a channel.
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error

	// ChannelPermissionSet creates or updates a permission overwrite on a
	// channel.
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error

	// GuildMember returns a member of a guild.
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)

	// GuildRoles returns all roles of a guild.
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)

	// UserChannelCreate creates (or returns) the DM channel with a user.
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Actor identifies the user performing an operation, with the role and
// permission information the platform layer resolved for the interaction.
type Actor struct {
	// ID is the user ID.
	ID string

	// Username is the user's name, used for channel naming.
	Username string

	// Roles are the IDs of the roles the user holds in the guild.
	Roles []string

	// Permissions are the user's resolved guild permissions.
	Permissions int64
}

// IsAdministrator reports whether the actor holds the administrator
// permission.
func (a Actor) IsAdministrator() bool {
	return a.Permissions&discordgo.PermissionAdministrator != 0
}

// HasRole reports whether the actor holds the role.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range a.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}
