package bot

import (
	"testing"
	"time"
)

func TestDraftStorePutGet(t *testing.T) {
	store := newDraftStore(5 * time.Minute)

	if _, ok := store.Get("u1"); ok {
		t.Fatal("empty store should miss")
	}

	store.Put("u1", &sessionDraft{GuildID: "g", ChannelID: "c", GameMode: "5v5"})
	draft, ok := store.Get("u1")
	if !ok {
		t.Fatal("draft should be live")
	}
	if draft.GameMode != "5v5" {
		t.Errorf("draft = %+v", draft)
	}

	// A new draft replaces the old one.
	store.Put("u1", &sessionDraft{GameMode: "6v6"})
	draft, _ = store.Get("u1")
	if draft.GameMode != "6v6" {
		t.Errorf("draft = %+v, want replaced", draft)
	}

	store.Delete("u1")
	if _, ok := store.Get("u1"); ok {
		t.Fatal("deleted draft should miss")
	}
}

func TestDraftStoreExpiry(t *testing.T) {
	store := newDraftStore(5 * time.Minute)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Put("u1", &sessionDraft{GameMode: "5v5"})

	clock = clock.Add(5 * time.Minute)
	if _, ok := store.Get("u1"); !ok {
		t.Fatal("draft at exactly the TTL is still live")
	}

	clock = clock.Add(time.Second)
	if _, ok := store.Get("u1"); ok {
		t.Fatal("expired draft should miss")
	}
	// The expired draft was dropped, not just hidden.
	store.mu.Lock()
	_, present := store.drafts["u1"]
	store.mu.Unlock()
	if present {
		t.Fatal("expired draft should be deleted on access")
	}
}
