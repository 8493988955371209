package dataaccess

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/discosoft/talep/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestFileConfigDalCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	dal := NewFileConfigDal(path)

	cfg, err := dal.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, cfg.TicketCounter)
	require.NotNil(t, cfg.CategoryRoles)

	// The default document is written back immediately.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"ticket_counter": 0`)
}

func TestFileConfigDalMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	dal := NewFileConfigDal(path)
	_, err := dal.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed configuration document")
}

func TestFileConfigDalMigratesLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	// A document written by the previous schema: the archive category
	// under its old name and no owner or frozen tracking.
	legacy := `{
    "token": "",
    "guild_id": "guild-1",
    "ticket_channel_id": "chan-1",
    "ticket_counter": 7,
    "staff_role_id": "role-1",
    "ticket_log_channel_id": "",
    "closed_category_id": "cat-9"
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	dal := NewFileConfigDal(path)
	cfg, err := dal.Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, "cat-9", cfg.ArchiveCategoryID)
	require.Equal(t, 7, cfg.TicketCounter)
	require.NotNil(t, cfg.CategoryRoles)
	require.NotNil(t, cfg.FrozenTickets)
	require.NotNil(t, cfg.TicketOwners)

	// The migrated document is rewritten under the current schema.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "closed_category_id")
	require.Contains(t, string(raw), `"archive_category_id": "cat-9"`)
}

func TestFileConfigDalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	dal := NewFileConfigDal(path)
	ctx := context.Background()

	cfg := entities.NewGuildConfig()
	cfg.GuildID = "guild-1"
	cfg.TicketCounter = 3
	cfg.CategoryRoles["Teknik Sorun"] = "role-7"
	cfg.FrozenTickets = []string{"chan-2"}
	cfg.TicketOwners["chan-2"] = "user-5"

	require.NoError(t, dal.Save(ctx, cfg))

	got, err := dal.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	// Saving the loaded document again is byte stable.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, dal.Save(ctx, got))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)

	// The document on disk is valid indented JSON.
	require.True(t, json.Valid(before))
}
