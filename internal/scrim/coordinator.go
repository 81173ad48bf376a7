package scrim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// Coordinator owns all queue and team mutations. Mutations touching one
// session's queue/participant set are serialized through a per-session
// lock so a capacity check and its dependent write execute as one unit.
type Coordinator struct {
	store    Store
	notifier Notifier
	now      func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a Coordinator. notifier may be nil, in which case display
// refreshes are skipped.
func New(store Store, notifier Notifier) *Coordinator {
	return &Coordinator{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// SetNotifier installs the display refresher after construction; the
// notifier itself needs the coordinator for snapshots.
func (c *Coordinator) SetNotifier(n Notifier) {
	c.notifier = n
}

// lockSession returns the mutex serializing one session's mutations.
func (c *Coordinator) lockSession(sessionID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionID] = lock
	}
	return lock
}

// releaseLock drops a session's lock entry. Called once the session has
// reached CANCELLED, after which no serialized mutation can succeed; a
// straggling display refresh may briefly recreate the entry and prunes
// it again on its way out.
func (c *Coordinator) releaseLock(sessionID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, sessionID)
}

// resync kicks off a detached, best-effort display refresh. The mutation
// that triggered it has already committed, so this never reports back.
func (c *Coordinator) resync(sessionID int64) {
	if c.notifier == nil {
		return
	}
	go c.notifier.Resync(sessionID)
}

// CreateSessionParams carries everything needed to open a session.
type CreateSessionParams struct {
	CreatorID   string
	GuildID     string
	ChannelID   string
	GameMode    string
	ScheduledAt time.Time // UTC
	Timezone    string
	Description string
	MaxRankDiff int
}

// CreateSession opens a new session in status OPEN.
func (c *Coordinator) CreateSession(params CreateSessionParams) (*storage.Session, error) {
	if _, err := gamemode.Get(params.GameMode); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameMode, params.GameMode)
	}

	session := &storage.Session{
		CreatorID:   params.CreatorID,
		GuildID:     params.GuildID,
		ChannelID:   params.ChannelID,
		GameMode:    params.GameMode,
		ScheduledAt: params.ScheduledAt,
		Timezone:    params.Timezone,
		Description: params.Description,
		MaxRankDiff: params.MaxRankDiff,
		Status:      storage.StatusOpen,
	}
	if err := c.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("Session created", "session", session.ID, "mode", session.GameMode, "creator", session.CreatorID)
	return session, nil
}

// BindMessage records the Discord message that displays this session.
func (c *Coordinator) BindMessage(sessionID int64, messageID string) error {
	if err := c.store.BindSessionMessage(sessionID, messageID); err != nil {
		return fmt.Errorf("failed to bind session message: %w", err)
	}
	return nil
}

// getSession loads a session, mapping missing records onto the domain error.
func (c *Coordinator) getSession(sessionID int64) (*storage.Session, error) {
	session, err := c.store.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// ActiveSessions lists a guild's OPEN and FULL sessions, soonest first.
func (c *Coordinator) ActiveSessions(guildID string) ([]*storage.Session, error) {
	return c.store.ListActiveSessions(guildID)
}

// SessionsByCreator lists a creator's OPEN and FULL sessions.
func (c *Coordinator) SessionsByCreator(creatorID string) ([]*storage.Session, error) {
	return c.store.ListSessionsByCreator(creatorID)
}
