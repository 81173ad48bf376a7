package scrim

import (
	"sort"
	"sync"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// memStore is a thread-safe in-memory Store for coordinator tests.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	sessions     map[int64]*storage.Session
	accounts     map[int64]*storage.Account
	queue        map[int64]map[string]*storage.QueueEntry
	participants map[int64]map[string]*storage.Participant
}

func newMemStore() *memStore {
	return &memStore{
		sessions:     make(map[int64]*storage.Session),
		accounts:     make(map[int64]*storage.Account),
		queue:        make(map[int64]map[string]*storage.QueueEntry),
		participants: make(map[int64]map[string]*storage.Participant),
	}
}

func (m *memStore) CreateSession(s *storage.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memStore) GetSession(id int64) (*storage.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) UpdateSessionStatus(id int64, status storage.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

func (m *memStore) BindSessionMessage(id int64, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.MessageID = messageID
	}
	return nil
}

func (m *memStore) ListActiveSessions(guildID string) ([]*storage.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*storage.Session
	for _, s := range m.sessions {
		if s.GuildID == guildID && s.Status != storage.StatusCancelled {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (m *memStore) ListSessionsByCreator(creatorID string) ([]*storage.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*storage.Session
	for _, s := range m.sessions {
		if s.CreatorID == creatorID && s.Status != storage.StatusCancelled {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (m *memStore) addAccount(a *storage.Account) *storage.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) GetAccount(id int64) (*storage.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memStore) CreateQueueEntry(e *storage.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue[e.SessionID] == nil {
		m.queue[e.SessionID] = make(map[string]*storage.QueueEntry)
	}
	copied := *e
	m.queue[e.SessionID][e.UserID] = &copied
	return nil
}

func (m *memStore) GetQueueEntry(sessionID int64, userID string) (*storage.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.queue[sessionID][userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *memStore) UpdateQueueEntry(e *storage.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.queue[e.SessionID][e.UserID]; ok {
		existing.Roles = e.Roles
		existing.AccountID = e.AccountID
	}
	return nil
}

func (m *memStore) SetQueueStreaming(sessionID int64, userID string, streaming bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.queue[sessionID][userID]; ok {
		e.Streaming = streaming
	}
	return nil
}

func (m *memStore) DeleteQueueEntry(sessionID int64, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.queue[sessionID][userID]; !ok {
		return false, nil
	}
	delete(m.queue[sessionID], userID)
	return true, nil
}

func (m *memStore) ListQueue(sessionID int64) ([]*storage.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*storage.QueueEntry
	for _, e := range m.queue[sessionID] {
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *memStore) CreateParticipant(p *storage.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.participants[p.SessionID] == nil {
		m.participants[p.SessionID] = make(map[string]*storage.Participant)
	}
	copied := *p
	m.participants[p.SessionID][p.UserID] = &copied
	return nil
}

func (m *memStore) GetParticipant(sessionID int64, userID string) (*storage.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[sessionID][userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memStore) SetParticipantStreaming(sessionID int64, userID string, streaming bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.participants[sessionID][userID]; ok {
		p.Streaming = streaming
	}
	return nil
}

func (m *memStore) ListParticipants(sessionID int64) ([]*storage.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*storage.Participant
	for _, p := range m.participants[sessionID] {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SelectedAt.Before(out[j].SelectedAt) })
	return out, nil
}

func (m *memStore) CountParticipantsByRole(sessionID int64) (map[gamemode.Role]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[gamemode.Role]int)
	for _, p := range m.participants[sessionID] {
		counts[p.Role]++
	}
	return counts, nil
}
