package scrim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/rank"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// Enqueue admits a user into a session's waiting line, or merges the new
// role preferences into an existing entry. Joining twice with identical
// roles and account returns ErrAlreadyQueued and changes nothing.
func (c *Coordinator) Enqueue(sessionID int64, userID string, accountID int64, roles gamemode.RoleSet) (*storage.QueueEntry, error) {
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}

	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != storage.StatusOpen {
		return nil, ErrSessionClosed
	}

	mode, err := session.Mode()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameMode, session.GameMode)
	}
	for role := range roles {
		// The catch-all is always an acceptable preference; it matches
		// every slot.
		if role != gamemode.RoleAny && !mode.HasRole(role) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
		}
	}

	account, err := c.store.GetAccount(accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.OwnerID != userID {
		return nil, ErrNoAccount
	}

	existing, err := c.store.GetQueueEntry(sessionID, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load queue entry: %w", err)
	}

	if existing != nil {
		merged := existing.Roles.Union(roles)
		if merged.Equal(existing.Roles) && existing.AccountID == accountID {
			return existing, ErrAlreadyQueued
		}
		existing.Roles = merged
		existing.AccountID = accountID
		if err := c.store.UpdateQueueEntry(existing); err != nil {
			return nil, fmt.Errorf("failed to merge queue entry: %w", err)
		}
		c.resync(sessionID)
		return existing, nil
	}

	entry := &storage.QueueEntry{
		SessionID: sessionID,
		UserID:    userID,
		AccountID: accountID,
		Roles:     roles,
		JoinedAt:  c.now(),
	}
	if err := c.store.CreateQueueEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to create queue entry: %w", err)
	}

	c.resync(sessionID)
	return entry, nil
}

// Dequeue removes a user's live queue entry. Participants are untouched.
func (c *Coordinator) Dequeue(sessionID int64, userID string) error {
	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.getSession(sessionID); err != nil {
		return err
	}

	existed, err := c.store.DeleteQueueEntry(sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	if !existed {
		return ErrNotInQueue
	}

	c.resync(sessionID)
	return nil
}

// Candidate pairs a queue entry with its account and displayed rank.
type Candidate struct {
	Entry   *storage.QueueEntry
	Account *storage.Account
	Rank    rank.Rank
	Ranked  bool
}

// ListEligible returns the queue entries that could fill the given role:
// entries preferring the role, entries preferring the catch-all, or every
// entry when the role itself is the catch-all. Order is join time
// ascending with ties broken by rank descending. The ordering is for
// display only; it never admits anyone automatically.
func (c *Coordinator) ListEligible(sessionID int64, role gamemode.Role) ([]Candidate, error) {
	entries, err := c.store.ListQueue(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if role != gamemode.RoleAny && !entry.Roles.Has(role) && !entry.Roles.Has(gamemode.RoleAny) {
			continue
		}
		cand := Candidate{Entry: entry}
		account, err := c.store.GetAccount(entry.AccountID)
		if err == nil {
			cand.Account = account
			cand.Rank, cand.Ranked = account.RankFor(role)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.Entry.JoinedAt.Equal(b.Entry.JoinedAt) {
			return a.Entry.JoinedAt.Before(b.Entry.JoinedAt)
		}
		return rankValue(a) > rankValue(b)
	})

	return candidates, nil
}

func rankValue(c Candidate) int {
	if !c.Ranked {
		return -1
	}
	return c.Rank.Value()
}
