package entities

// GuildConfig is the persisted configuration document for the guild. Every
// mutation of the ticket system is written back to this document in full.
type GuildConfig struct {
	// Token is the bot token. Kept for compatibility with older documents;
	// the environment variable takes precedence at runtime.
	Token string `json:"token" bson:"token"`

	// GuildID is the ID of the guild the ticket system is installed in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// TicketChannelID is the channel carrying the public ticket-creation
	// entry message.
	TicketChannelID string `json:"ticket_channel_id" bson:"ticket_channel_id"`

	// TicketCounter is the highest ticket ID issued so far. It is
	// monotonically non-decreasing and never reused.
	TicketCounter int `json:"ticket_counter" bson:"ticket_counter"`

	// StaffRoleID is the guild-wide role granted access to every ticket.
	StaffRoleID string `json:"staff_role_id" bson:"staff_role_id"`

	// TicketLogChannelID is the channel ticket lifecycle records are posted
	// to. Empty means logging is not configured.
	TicketLogChannelID string `json:"ticket_log_channel_id" bson:"ticket_log_channel_id"`

	// ArchiveCategoryID is the category closed tickets are moved into.
	ArchiveCategoryID string `json:"archive_category_id" bson:"archive_category_id"`

	// LegacyClosedCategoryID is the pre-rename field for the archive
	// category. It is migrated into ArchiveCategoryID on load.
	LegacyClosedCategoryID string `json:"closed_category_id,omitempty" bson:"-"`

	// CategoryRoles maps a category name to the responsible support team
	// role ID. A missing entry means staff role only.
	CategoryRoles map[string]string `json:"category_roles" bson:"category_roles"`

	// FrozenTickets holds the channel IDs of currently frozen tickets.
	FrozenTickets []string `json:"frozen_tickets" bson:"frozen_tickets"`

	// TicketOwners maps a ticket channel ID to the ID of the user that
	// opened it. Tickets created before owner tracking existed have no
	// entry; operations must tolerate that.
	TicketOwners map[string]string `json:"ticket_owners" bson:"ticket_owners"`
}

// NewGuildConfig returns the default configuration document.
func NewGuildConfig() *GuildConfig {
	return &GuildConfig{
		CategoryRoles: map[string]string{},
		FrozenTickets: []string{},
		TicketOwners:  map[string]string{},
	}
}

// Migrate upgrades a document loaded from an older schema in place. It renames
// the legacy closed-category field and backfills containers that were added in
// later schema versions.
func (c *GuildConfig) Migrate() {
	if c.LegacyClosedCategoryID != "" && c.ArchiveCategoryID == "" {
		c.ArchiveCategoryID = c.LegacyClosedCategoryID
	}
	c.LegacyClosedCategoryID = ""

	if c.CategoryRoles == nil {
		c.CategoryRoles = map[string]string{}
	}
	if c.FrozenTickets == nil {
		c.FrozenTickets = []string{}
	}
	if c.TicketOwners == nil {
		c.TicketOwners = map[string]string{}
	}
}

// IsFrozen reports whether the ticket channel is in the frozen set.
func (c *GuildConfig) IsFrozen(channelID string) bool {
	for _, id := range c.FrozenTickets {
		if id == channelID {
			return true
		}
	}
	return false
}

// SetFrozen adds or removes the ticket channel from the frozen set.
func (c *GuildConfig) SetFrozen(channelID string, frozen bool) {
	if frozen {
		if !c.IsFrozen(channelID) {
			c.FrozenTickets = append(c.FrozenTickets, channelID)
		}
		return
	}

	for i, id := range c.FrozenTickets {
		if id == channelID {
			c.FrozenTickets = append(c.FrozenTickets[:i], c.FrozenTickets[i+1:]...)
			return
		}
	}
}

// BoundRole returns the support team role bound to the category, if any.
func (c *GuildConfig) BoundRole(category string) (string, bool) {
	id, ok := c.CategoryRoles[category]
	return id, ok && id != ""
}
