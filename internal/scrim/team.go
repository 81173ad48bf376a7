package scrim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// AcceptPlayer converts a queue entry into a committed team slot for the
// given role. The capacity check and the entry-delete/participant-insert
// pair run under the session lock, so two concurrent accepts can never
// overfill a role. Only the session creator may accept.
func (c *Coordinator) AcceptPlayer(sessionID int64, actorID, userID string, role gamemode.Role) (*storage.Participant, error) {
	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.CreatorID != actorID {
		return nil, ErrNotCreator
	}
	if session.Status != storage.StatusOpen {
		return nil, ErrSessionClosed
	}

	mode, err := session.Mode()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameMode, session.GameMode)
	}
	if !mode.HasRole(role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	entry, err := c.store.GetQueueEntry(sessionID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrQueueEntryGone
		}
		return nil, fmt.Errorf("failed to load queue entry: %w", err)
	}

	counts, err := c.store.CountParticipantsByRole(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	if counts[role] >= mode.Slots[role] {
		return nil, ErrRoleFull
	}

	// The entry may have been removed between our read and now by a
	// concurrent leave outside this lock path; the delete result is the
	// authoritative check.
	existed, err := c.store.DeleteQueueEntry(sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete queue entry: %w", err)
	}
	if !existed {
		return nil, ErrQueueEntryGone
	}

	participant := &storage.Participant{
		SessionID:  sessionID,
		UserID:     userID,
		AccountID:  entry.AccountID,
		Role:       role,
		Streaming:  entry.Streaming,
		SelectedBy: actorID,
		SelectedAt: c.now(),
	}
	if err := c.store.CreateParticipant(participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	counts[role]++

	if teamFull(mode, counts) {
		if err := c.store.UpdateSessionStatus(sessionID, storage.StatusFull); err != nil {
			return nil, fmt.Errorf("failed to update session status: %w", err)
		}
		slog.Info("Session full", "session", sessionID)
	}

	c.resync(sessionID)
	return participant, nil
}

// teamFull reports whether every role's slot count is saturated.
func teamFull(mode gamemode.Mode, counts map[gamemode.Role]int) bool {
	for role, slots := range mode.Slots {
		if counts[role] < slots {
			return false
		}
	}
	return true
}

// RejectPlayer removes a queue entry without creating a participant.
// Only the session creator may reject.
func (c *Coordinator) RejectPlayer(sessionID int64, actorID, userID string) error {
	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.getSession(sessionID)
	if err != nil {
		return err
	}
	if session.CreatorID != actorID {
		return ErrNotCreator
	}

	existed, err := c.store.DeleteQueueEntry(sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	if !existed {
		return ErrQueueEntryGone
	}

	c.resync(sessionID)
	return nil
}

// ToggleStreaming flips the streaming flag on whichever of queue entry or
// participant currently represents the user. Returns the new value.
func (c *Coordinator) ToggleStreaming(sessionID int64, userID string) (bool, error) {
	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.getSession(sessionID); err != nil {
		return false, err
	}

	entry, err := c.store.GetQueueEntry(sessionID, userID)
	if err == nil {
		streaming := !entry.Streaming
		if err := c.store.SetQueueStreaming(sessionID, userID, streaming); err != nil {
			return false, fmt.Errorf("failed to update queue entry: %w", err)
		}
		c.resync(sessionID)
		return streaming, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("failed to load queue entry: %w", err)
	}

	participant, err := c.store.GetParticipant(sessionID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, ErrNotInSession
		}
		return false, fmt.Errorf("failed to load participant: %w", err)
	}

	streaming := !participant.Streaming
	if err := c.store.SetParticipantStreaming(sessionID, userID, streaming); err != nil {
		return false, fmt.Errorf("failed to update participant: %w", err)
	}

	c.resync(sessionID)
	return streaming, nil
}

// CancelSession flips the session to CANCELLED. Cancelling twice is a
// no-op success. Queue entries and participants are retained for audit
// but are no longer actionable.
func (c *Coordinator) CancelSession(sessionID int64, actorID string) error {
	lock := c.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.getSession(sessionID)
	if err != nil {
		return err
	}
	if session.CreatorID != actorID {
		return ErrNotCreator
	}
	if session.Status == storage.StatusCancelled {
		c.releaseLock(sessionID)
		return nil
	}

	if err := c.store.UpdateSessionStatus(sessionID, storage.StatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel session: %w", err)
	}

	slog.Info("Session cancelled", "session", sessionID, "creator", actorID)
	c.releaseLock(sessionID)
	c.resync(sessionID)
	return nil
}
