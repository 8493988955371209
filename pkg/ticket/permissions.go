package ticket

import (
	"github.com/Jacobbrewer1/discordgo"
)

// memberAccess is what the creating user, the staff role and a bound support
// team role are granted on a ticket channel.
const memberAccess = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

// botAccess additionally lets the bot manage the ticket channel and its
// messages.
const botAccess = memberAccess | discordgo.PermissionManageChannels | discordgo.PermissionManageMessages

// InitialOverwrites computes the permission overwrite set for a newly created
// ticket channel: everyone is denied, the creator and the bot are allowed,
// the staff role is allowed if configured and the category's bound role is
// allowed if it is distinct from the staff role.
func InitialOverwrites(guildID, userID, botID, staffRoleID, boundRoleID string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionAll,
		},
		// The creator of the ticket can read and write.
		{
			ID:    userID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAccess,
		},
		// The bot manages the ticket.
		{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: botAccess,
		},
	}

	if staffRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    staffRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberAccess,
		})
	}

	if boundRoleID != "" && boundRoleID != staffRoleID {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    boundRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberAccess,
		})
	}

	return overwrites
}

// FreezeOverwrites computes the desired overwrite set for a frozen ticket.
// Every individual member overwrite that is not the bot and not in the exempt
// set loses send access; read access is never touched, and role overwrites
// are never touched. The individual overwrite is authoritative for a member
// even when a role overwrite would allow more.
func FreezeOverwrites(current []*discordgo.PermissionOverwrite, botID string, exempt map[string]bool) []*discordgo.PermissionOverwrite {
	return patchSend(current, botID, exempt, false)
}

// UnfreezeOverwrites is the inverse of FreezeOverwrites: it restores send
// access for the same class of principals.
func UnfreezeOverwrites(current []*discordgo.PermissionOverwrite, botID string, exempt map[string]bool) []*discordgo.PermissionOverwrite {
	return patchSend(current, botID, exempt, true)
}

func patchSend(current []*discordgo.PermissionOverwrite, botID string, exempt map[string]bool, allowSend bool) []*discordgo.PermissionOverwrite {
	desired := make([]*discordgo.PermissionOverwrite, 0, len(current))
	for _, ow := range current {
		next := *ow
		if ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID != botID && !exempt[ow.ID] {
			if allowSend {
				next.Allow |= discordgo.PermissionSendMessages
				next.Deny &^= discordgo.PermissionSendMessages
			} else {
				next.Allow &^= discordgo.PermissionSendMessages
				next.Deny |= discordgo.PermissionSendMessages
			}
		}
		desired = append(desired, &next)
	}
	return desired
}

// DiffOverwrites returns the overwrites in desired that differ from their
// counterpart in current, so that callers apply a minimal patch instead of
// rewriting every overwrite.
func DiffOverwrites(current, desired []*discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	type key struct {
		id string
		t  discordgo.PermissionOverwriteType
	}

	existing := make(map[key]*discordgo.PermissionOverwrite, len(current))
	for _, ow := range current {
		existing[key{ow.ID, ow.Type}] = ow
	}

	changed := make([]*discordgo.PermissionOverwrite, 0)
	for _, ow := range desired {
		prev, ok := existing[key{ow.ID, ow.Type}]
		if !ok || prev.Allow != ow.Allow || prev.Deny != ow.Deny {
			changed = append(changed, ow)
		}
	}
	return changed
}
