package scrim

import (
	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// Store is the persistence surface the coordinator needs. It carries no
// business rules; *storage.Repository implements it. Lookups return
// storage.ErrNotFound when no record exists.
type Store interface {
	CreateSession(s *storage.Session) error
	GetSession(id int64) (*storage.Session, error)
	UpdateSessionStatus(id int64, status storage.SessionStatus) error
	BindSessionMessage(id int64, messageID string) error
	ListActiveSessions(guildID string) ([]*storage.Session, error)
	ListSessionsByCreator(creatorID string) ([]*storage.Session, error)

	GetAccount(id int64) (*storage.Account, error)

	CreateQueueEntry(e *storage.QueueEntry) error
	GetQueueEntry(sessionID int64, userID string) (*storage.QueueEntry, error)
	UpdateQueueEntry(e *storage.QueueEntry) error
	SetQueueStreaming(sessionID int64, userID string, streaming bool) error
	DeleteQueueEntry(sessionID int64, userID string) (bool, error)
	ListQueue(sessionID int64) ([]*storage.QueueEntry, error)

	CreateParticipant(p *storage.Participant) error
	GetParticipant(sessionID int64, userID string) (*storage.Participant, error)
	SetParticipantStreaming(sessionID int64, userID string, streaming bool) error
	ListParticipants(sessionID int64) ([]*storage.Participant, error)
	CountParticipantsByRole(sessionID int64) (map[gamemode.Role]int, error)
}

// Notifier refreshes the externally visible representation of a session
// after a mutation. Implementations must never fail the mutation.
type Notifier interface {
	Resync(sessionID int64)
}
