package ticket

import (
	"context"
	"fmt"

	"github.com/discosoft/talep/pkg/dataaccess"
	"github.com/discosoft/talep/pkg/entities"
)

// Registry derives ticket identity from the configuration document: the
// monotonic ticket counter, the owner map and the frozen set.
type Registry struct {
	store *dataaccess.ConfigStore
}

// NewRegistry creates a registry over the configuration store.
func NewRegistry(store *dataaccess.ConfigStore) *Registry {
	return &Registry{
		store: store,
	}
}

// NextID allocates the next ticket ID. The counter is incremented by exactly
// one and persisted before the ID is returned; overlapping calls never see
// the same value.
func (r *Registry) NextID(ctx context.Context) (int, error) {
	id := 0
	_, err := r.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.TicketCounter++
		id = cfg.TicketCounter
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error allocating ticket id: %w", err)
	}
	return id, nil
}

// OwnerOf returns the recorded owner of the ticket channel. Tickets created
// before owner tracking existed have no record.
func (r *Registry) OwnerOf(ctx context.Context, channelID string) (string, bool, error) {
	cfg, err := r.store.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}

	owner, ok := cfg.TicketOwners[channelID]
	return owner, ok && owner != "", nil
}

// IsFrozen reports whether the ticket channel is in the frozen set.
func (r *Registry) IsFrozen(ctx context.Context, channelID string) (bool, error) {
	cfg, err := r.store.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return cfg.IsFrozen(channelID), nil
}

// RecordOwner records the user that opened the ticket channel.
func (r *Registry) RecordOwner(ctx context.Context, channelID, userID string) error {
	_, err := r.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.TicketOwners[channelID] = userID
		return nil
	})
	return err
}

// SetFrozen adds or removes the ticket channel from the frozen set.
func (r *Registry) SetFrozen(ctx context.Context, channelID string, frozen bool) error {
	_, err := r.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.SetFrozen(channelID, frozen)
		return nil
	})
	return err
}

// Forget drops the ticket channel from the owner map and the frozen set. It
// is called when a ticket reaches a terminal state.
func (r *Registry) Forget(ctx context.Context, channelID string) error {
	_, err := r.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		delete(cfg.TicketOwners, channelID)
		cfg.SetFrozen(channelID, false)
		return nil
	})
	return err
}
