package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGuildConfig(t *testing.T) {
	cfg := NewGuildConfig()
	require.NotNil(t, cfg.CategoryRoles)
	require.NotNil(t, cfg.FrozenTickets)
	require.NotNil(t, cfg.TicketOwners)
	require.Equal(t, 0, cfg.TicketCounter)
}

func TestGuildConfigMigrate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *GuildConfig
		want string
	}{
		{
			name: "LegacyFieldRenamed",
			cfg:  &GuildConfig{LegacyClosedCategoryID: "123"},
			want: "123",
		},
		{
			name: "CurrentFieldWins",
			cfg:  &GuildConfig{LegacyClosedCategoryID: "123", ArchiveCategoryID: "456"},
			want: "456",
		},
		{
			name: "NoLegacyField",
			cfg:  &GuildConfig{ArchiveCategoryID: "789"},
			want: "789",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Migrate()
			require.Equal(t, tt.want, tt.cfg.ArchiveCategoryID)
			require.Empty(t, tt.cfg.LegacyClosedCategoryID)

			// Containers are always backfilled.
			require.NotNil(t, tt.cfg.CategoryRoles)
			require.NotNil(t, tt.cfg.FrozenTickets)
			require.NotNil(t, tt.cfg.TicketOwners)
		})
	}
}

func TestGuildConfigFrozenSet(t *testing.T) {
	cfg := NewGuildConfig()
	require.False(t, cfg.IsFrozen("chan-1"))

	cfg.SetFrozen("chan-1", true)
	require.True(t, cfg.IsFrozen("chan-1"))

	// Freezing twice must not duplicate the entry.
	cfg.SetFrozen("chan-1", true)
	require.Len(t, cfg.FrozenTickets, 1)

	cfg.SetFrozen("chan-1", false)
	require.False(t, cfg.IsFrozen("chan-1"))
	require.Empty(t, cfg.FrozenTickets)

	// Unfreezing an unknown channel is a no-op.
	cfg.SetFrozen("chan-2", false)
	require.Empty(t, cfg.FrozenTickets)
}

func TestGuildConfigBoundRole(t *testing.T) {
	cfg := NewGuildConfig()
	cfg.CategoryRoles["Teknik Sorun"] = "role-1"
	cfg.CategoryRoles["Ödeme"] = ""

	role, ok := cfg.BoundRole("Teknik Sorun")
	require.True(t, ok)
	require.Equal(t, "role-1", role)

	// An empty binding counts as unbound.
	_, ok = cfg.BoundRole("Ödeme")
	require.False(t, ok)

	_, ok = cfg.BoundRole("Genel Destek")
	require.False(t, ok)
}
