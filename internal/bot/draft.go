package bot

import (
	"sync"
	"time"
)

// sessionDraft is the owner-keyed context for a session being created
// step by step. Drafts are time-bounded; an expired draft behaves as if
// it never existed.
type sessionDraft struct {
	GuildID   string
	ChannelID string
	GameMode  string
	createdAt time.Time
}

type draftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]*sessionDraft // keyed by owner user ID
	now    func() time.Time
}

func newDraftStore(ttl time.Duration) *draftStore {
	return &draftStore{
		ttl:    ttl,
		drafts: make(map[string]*sessionDraft),
		now:    time.Now,
	}
}

// Put stores a draft for the owner, replacing any previous one.
func (d *draftStore) Put(ownerID string, draft *sessionDraft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft.createdAt = d.now()
	d.drafts[ownerID] = draft
}

// Get returns the owner's live draft. Expired drafts are dropped.
func (d *draftStore) Get(ownerID string) (*sessionDraft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft, ok := d.drafts[ownerID]
	if !ok {
		return nil, false
	}
	if d.now().Sub(draft.createdAt) > d.ttl {
		delete(d.drafts, ownerID)
		return nil, false
	}
	return draft, true
}

// Delete discards the owner's draft.
func (d *draftStore) Delete(ownerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, ownerID)
}
