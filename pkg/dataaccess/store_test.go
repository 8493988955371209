package dataaccess

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/discosoft/talep/pkg/entities"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	return NewConfigStore(NewFileConfigDal(filepath.Join(t.TempDir(), "config.json")))
}

func TestConfigStoreUpdatePersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.StaffRoleID = "role-1"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "role-1", cfg.StaffRoleID)

	got, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "role-1", got.StaffRoleID)
}

func TestConfigStoreUpdateErrorDiscardsChanges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.StaffRoleID = "role-1"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, got.StaffRoleID)
}

func TestConfigStoreConcurrentUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 20

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, func(cfg *entities.GuildConfig) error {
				cfg.TicketCounter++
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	// No increment may be lost to a concurrent read-modify-write.
	got, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, workers, got.TicketCounter)
}
