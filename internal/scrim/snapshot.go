package scrim

import (
	"errors"
	"fmt"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// TeamSlot pairs a participant with the account filling the slot.
type TeamSlot struct {
	Participant *storage.Participant
	Account     *storage.Account
}

// Snapshot is a read-only view of one session's externally visible state,
// assembled strictly from current records.
type Snapshot struct {
	Session      *storage.Session
	Mode         gamemode.Mode
	Team         []TeamSlot
	Queue        []Candidate
	RoleCounts   map[gamemode.Role]int
	QueueSize    int
	StreamerSize int
}

// Snapshot assembles the current view of a session for rendering. It is
// taken under the session lock so the team and queue are consistent with
// each other.
func (c *Coordinator) Snapshot(sessionID int64) (*Snapshot, error) {
	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == storage.StatusCancelled {
		defer c.releaseLock(sessionID)
	}
	mode, err := session.Mode()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameMode, session.GameMode)
	}

	participants, err := c.store.ListParticipants(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	snap := &Snapshot{
		Session:    session,
		Mode:       mode,
		RoleCounts: make(map[gamemode.Role]int),
	}

	for _, p := range participants {
		slot := TeamSlot{Participant: p}
		account, err := c.store.GetAccount(p.AccountID)
		if err == nil {
			slot.Account = account
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		snap.Team = append(snap.Team, slot)
		snap.RoleCounts[p.Role]++
		if p.Streaming {
			snap.StreamerSize++
		}
	}

	entries, err := c.store.ListQueue(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	for _, entry := range entries {
		cand := Candidate{Entry: entry}
		account, err := c.store.GetAccount(entry.AccountID)
		if err == nil {
			cand.Account = account
			cand.Rank, cand.Ranked = account.BestRank()
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		snap.Queue = append(snap.Queue, cand)
		if entry.Streaming {
			snap.StreamerSize++
		}
	}
	snap.QueueSize = len(entries)

	return snap, nil
}
