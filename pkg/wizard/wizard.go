// Package wizard implements the guided setup flow that binds each ticket
// category to a responsible support team role and records the archive
// destination.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/discosoft/talep/pkg/dataaccess"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/ticket"
)

// State is the step a wizard session is at.
type State string

const (
	// StateAwaitingArchive means the session is waiting for the
	// administrator to provide the archive category ID as plain text.
	StateAwaitingArchive State = "AWAITING_ARCHIVE_ID"

	// StateSelectingRole means the session is walking the category list,
	// binding or skipping a role for each.
	StateSelectingRole State = "SELECTING_ROLE"
)

// sessionTTL is how long an idle session survives before it is treated as
// abandoned.
const sessionTTL = 5 * time.Minute

// ErrStaleStep is returned when a role is bound or skipped for a category
// that is not the session's current step, which happens when a control on a
// superseded step message is used.
var ErrStaleStep = errors.New("wizard step does not match the current category")

// Session is the transient per-administrator setup state.
type Session struct {
	// AdminID is the administrator driving the setup.
	AdminID string

	// GuildID is the guild being configured.
	GuildID string

	// ChannelID is the channel the setup command was issued in. The ticket
	// entry message is published there, and it is the reply target of last
	// resort.
	ChannelID string

	// ReplyToken is the interaction token of the command that started the
	// setup. Late replies fall back to it when more direct channels fail.
	ReplyToken string

	// State is the current step.
	State State

	// ArchiveCategoryID is the validated archive destination.
	ArchiveCategoryID string

	// Bindings are the category to role bindings collected so far.
	Bindings map[string]string

	// Index is the position in the category list while selecting roles.
	Index int

	// LastActive is bumped on every step and drives the idle timeout.
	LastActive time.Time
}

// Current returns the category the session is selecting a role for.
func (s *Session) Current() (entities.Category, bool) {
	if s.State != StateSelectingRole || s.Index >= len(entities.Categories) {
		return entities.Category{}, false
	}
	return entities.Categories[s.Index], true
}

// Manager owns the wizard session table. Sessions expire after an idle TTL;
// expiry is enforced lazily on lookup and by a periodic sweep, so an
// abandoned session never blocks a later setup attempt.
type Manager struct {
	// l is the logger.
	l *slog.Logger

	// store is the configuration store.
	store *dataaccess.ConfigStore

	// mu guards sessions.
	mu sync.Mutex

	// sessions is keyed by administrator ID.
	sessions map[string]*Session

	// now is the clock. Tests override it.
	now func() time.Time

	// ttl is the idle timeout.
	ttl time.Duration
}

// NewManager creates a wizard session manager.
func NewManager(l *slog.Logger, store *dataaccess.ConfigStore) *Manager {
	return &Manager{
		l:        l,
		store:    store,
		sessions: map[string]*Session{},
		now:      time.Now,
		ttl:      sessionTTL,
	}
}

// Begin starts a setup session for the administrator and records the guild in
// the configuration. An existing session for the same administrator is
// replaced: the new setup run supersedes the abandoned one.
func (m *Manager) Begin(ctx context.Context, adminID, guildID, channelID, replyToken string) (*Session, error) {
	if _, err := m.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.GuildID = guildID
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error recording guild: %w", err)
	}

	s := &Session{
		AdminID:    adminID,
		GuildID:    guildID,
		ChannelID:  channelID,
		ReplyToken: replyToken,
		State:      StateAwaitingArchive,
		Bindings:   map[string]string{},
		LastActive: m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[adminID]; ok {
		m.l.Info("Replacing open wizard session", slog.String("admin", adminID))
	}
	m.sessions[adminID] = s
	return s, nil
}

// Lookup returns the administrator's open session. A session idle past the
// TTL is discarded and reported as absent.
func (m *Manager) Lookup(adminID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[adminID]
	if !ok {
		return nil, false
	}

	if m.now().Sub(s.LastActive) > m.ttl {
		delete(m.sessions, adminID)
		return nil, false
	}
	return s, true
}

// Abandon discards the administrator's session, if any.
func (m *Manager) Abandon(adminID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, adminID)
}

// Sweep discards every session idle past the TTL and returns how many were
// removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.now().Sub(s.LastActive) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// SubmitArchiveID handles the plain-text archive category step. The input
// must be numeric and must resolve, via the supplied resolver, to an existing
// category channel. The validated ID is persisted immediately and the session
// advances to role selection. On a validation error the step does not
// advance.
func (m *Manager) SubmitArchiveID(ctx context.Context, adminID, input string, resolves func(id string) bool) (*Session, error) {
	s, ok := m.Lookup(adminID)
	if !ok || s.State != StateAwaitingArchive {
		return nil, fmt.Errorf("no wizard session awaiting an archive category for %s", adminID)
	}

	raw := strings.TrimSpace(input)
	if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
		return nil, &ticket.ValidationError{Input: raw, Reason: "archive category ID must be a number"}
	}

	if !resolves(raw) {
		return nil, &ticket.ValidationError{Input: raw, Reason: "archive category does not resolve to a category channel"}
	}

	if _, err := m.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.ArchiveCategoryID = raw
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error saving archive category: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s.ArchiveCategoryID = raw
	s.State = StateSelectingRole
	s.Index = 0
	s.LastActive = m.now()
	return s, nil
}

// Bind assigns the role to the session's current category and advances to the
// next one. The category name must match the session's current step. done is
// true once every category has been visited.
func (m *Manager) Bind(adminID, categoryName, roleID string) (next entities.Category, done bool, err error) {
	return m.advance(adminID, categoryName, roleID)
}

// Skip advances past the current category without binding a role. The
// category name must match the session's current step.
func (m *Manager) Skip(adminID, categoryName string) (next entities.Category, done bool, err error) {
	return m.advance(adminID, categoryName, "")
}

func (m *Manager) advance(adminID, categoryName, roleID string) (entities.Category, bool, error) {
	s, ok := m.Lookup(adminID)
	if !ok || s.State != StateSelectingRole {
		return entities.Category{}, false, fmt.Errorf("no wizard session selecting roles for %s", adminID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A duplicate submit of the final step arrives after the category list
	// is exhausted but before Finalize removed the session.
	if s.Index >= len(entities.Categories) {
		return entities.Category{}, false, fmt.Errorf("no wizard session selecting roles for %s", adminID)
	}

	// A control on a superseded step message answers a category the
	// session has already moved past.
	if entities.Categories[s.Index].Name != categoryName {
		return entities.Category{}, false, ErrStaleStep
	}

	if roleID != "" {
		s.Bindings[entities.Categories[s.Index].Name] = roleID
	}
	s.Index++
	s.LastActive = m.now()

	if s.Index >= len(entities.Categories) {
		return entities.Category{}, true, nil
	}
	return entities.Categories[s.Index], false, nil
}

// Completion is the outcome of a finalized wizard run.
type Completion struct {
	// ArchiveCategoryID is the configured archive destination.
	ArchiveCategoryID string

	// Bindings are the persisted category to role bindings.
	Bindings map[string]string
}

// Finalize persists the collected bindings and the entry channel, then
// deletes the session. The session is removed regardless of how the caller's
// follow-up notification fares.
func (m *Manager) Finalize(ctx context.Context, adminID, entryChannelID string) (*Completion, error) {
	s, ok := m.Lookup(adminID)
	if !ok {
		return nil, fmt.Errorf("no wizard session to finalize for %s", adminID)
	}

	defer m.Abandon(adminID)

	if _, err := m.store.Update(ctx, func(cfg *entities.GuildConfig) error {
		cfg.CategoryRoles = s.Bindings
		cfg.TicketChannelID = entryChannelID
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error saving wizard results: %w", err)
	}

	return &Completion{
		ArchiveCategoryID: s.ArchiveCategoryID,
		Bindings:          s.Bindings,
	}, nil
}

// Summary renders the completion message: the archive destination and, for
// every category in order, either the bound role mention or an unassigned
// marker.
func Summary(archiveCategoryID string, bindings map[string]string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Talep sistemi bu kanalda kuruldu! Kapatılan talepler <#%s> kategorisine taşınacak.\n\n", archiveCategoryID))
	sb.WriteString("**Destek Ekipleri:**\n")

	for _, c := range entities.Categories {
		if roleID, ok := bindings[c.Name]; ok && roleID != "" {
			sb.WriteString(fmt.Sprintf("%s %s: <@&%s>\n", c.Emoji, c.Name, roleID))
		} else {
			sb.WriteString(fmt.Sprintf("%s %s: Atanmamış\n", c.Emoji, c.Name))
		}
	}

	sb.WriteString("\n**Önemli:** Lütfen `/logkanal` komutunu kullanarak log kanalını ayarlayınız!")
	return sb.String()
}
