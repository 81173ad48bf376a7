package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/rank"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "scrimbot.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, discordID string) {
	t.Helper()
	err := repo.UpsertUser(&User{
		DiscordID:      discordID,
		Username:       discordID,
		PreferredRoles: gamemode.NewRoleSet(gamemode.RoleTank),
		Timezone:       "UTC",
	})
	if err != nil {
		t.Fatalf("UpsertUser(%s): %v", discordID, err)
	}
}

func seedSession(t *testing.T, repo *Repository) *Session {
	t.Helper()
	s := &Session{
		CreatorID:   "creator",
		GuildID:     "guild-1",
		ChannelID:   "chan-1",
		GameMode:    "5v5",
		ScheduledAt: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		Timezone:    "UTC",
		Status:      StatusOpen,
	}
	if err := repo.CreateSession(s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return s
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.UpsertUser(&User{
		DiscordID:      "u1",
		Username:       "alice",
		PreferredRoles: gamemode.NewRoleSet(gamemode.RoleTank, gamemode.RoleSupport),
		Timezone:       "America/New_York",
	})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	got, err := repo.GetUser("u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" || got.Timezone != "America/New_York" {
		t.Errorf("got %+v", got)
	}
	if !got.PreferredRoles.Equal(gamemode.NewRoleSet(gamemode.RoleTank, gamemode.RoleSupport)) {
		t.Errorf("roles = %v", got.PreferredRoles)
	}

	// Upsert replaces, it never duplicates.
	err = repo.UpsertUser(&User{
		DiscordID:      "u1",
		Username:       "alice2",
		PreferredRoles: gamemode.NewRoleSet(gamemode.RoleDPS),
		Timezone:       "UTC",
	})
	if err != nil {
		t.Fatalf("second UpsertUser: %v", err)
	}
	got, _ = repo.GetUser("u1")
	if got.Username != "alice2" || !got.PreferredRoles.Equal(gamemode.NewRoleSet(gamemode.RoleDPS)) {
		t.Errorf("after upsert: %+v", got)
	}

	if _, err := repo.GetUser("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(ghost) = %v, want ErrNotFound", err)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1")

	account := &Account{
		OwnerID:   "u1",
		Name:      "Alice#1234",
		IsPrimary: true,
		Ranks: map[gamemode.Role]rank.Rank{
			gamemode.RoleTank: {Tier: rank.TierGold, Division: 3},
			gamemode.RoleDPS:  {Tier: rank.TierPlatinum, Division: 1},
		},
	}
	if err := repo.CreateAccount(account); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if account.ID == 0 {
		t.Fatal("CreateAccount should assign an ID")
	}

	got, err := repo.GetAccount(account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Name != "Alice#1234" || !got.IsPrimary {
		t.Errorf("got %+v", got)
	}
	if got.Ranks[gamemode.RoleTank] != (rank.Rank{Tier: rank.TierGold, Division: 3}) {
		t.Errorf("tank rank = %v", got.Ranks[gamemode.RoleTank])
	}
	// Support was never ranked; the column pair is NULL and the map has
	// no entry.
	if _, ok := got.Ranks[gamemode.RoleSupport]; ok {
		t.Errorf("support rank should be absent, got %v", got.Ranks[gamemode.RoleSupport])
	}
}

func TestUpdateAccountRanks(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1")

	account := &Account{
		OwnerID: "u1",
		Name:    "Alice#1234",
		Ranks: map[gamemode.Role]rank.Rank{
			gamemode.RoleTank: {Tier: rank.TierGold, Division: 3},
		},
	}
	if err := repo.CreateAccount(account); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	account.Ranks[gamemode.RoleTank] = rank.Rank{Tier: rank.TierPlatinum, Division: 5}
	account.Ranks[gamemode.RoleDPS] = rank.Rank{Tier: rank.TierSilver, Division: 2}
	if err := repo.UpdateAccountRanks(account); err != nil {
		t.Fatalf("UpdateAccountRanks: %v", err)
	}

	got, err := repo.GetAccount(account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Ranks[gamemode.RoleTank] != (rank.Rank{Tier: rank.TierPlatinum, Division: 5}) {
		t.Errorf("tank rank = %v", got.Ranks[gamemode.RoleTank])
	}
	if got.Ranks[gamemode.RoleDPS] != (rank.Rank{Tier: rank.TierSilver, Division: 2}) {
		t.Errorf("dps rank = %v", got.Ranks[gamemode.RoleDPS])
	}
	if _, ok := got.Ranks[gamemode.RoleSupport]; ok {
		t.Error("support should stay unranked")
	}

	missing := &Account{ID: 9999}
	if err := repo.UpdateAccountRanks(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateAccountRanks(missing) = %v, want ErrNotFound", err)
	}
}

func TestPrimaryAccountIsExclusive(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1")

	first := &Account{OwnerID: "u1", Name: "Main#1", IsPrimary: true}
	second := &Account{OwnerID: "u1", Name: "Alt#2", IsPrimary: true}
	if err := repo.CreateAccount(first); err != nil {
		t.Fatalf("CreateAccount(first): %v", err)
	}
	if err := repo.CreateAccount(second); err != nil {
		t.Fatalf("CreateAccount(second): %v", err)
	}

	accounts, err := repo.GetAccountsByOwner("u1")
	if err != nil {
		t.Fatalf("GetAccountsByOwner: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	// Primary sorts first, and only one account holds the flag.
	if !accounts[0].IsPrimary || accounts[0].Name != "Alt#2" {
		t.Errorf("first listed = %+v, want primary Alt#2", accounts[0])
	}
	if accounts[1].IsPrimary {
		t.Error("two accounts marked primary")
	}

	if err := repo.SetPrimaryAccount("u1", first.ID); err != nil {
		t.Fatalf("SetPrimaryAccount: %v", err)
	}
	accounts, _ = repo.GetAccountsByOwner("u1")
	if !accounts[0].IsPrimary || accounts[0].Name != "Main#1" {
		t.Errorf("after flip, first listed = %+v", accounts[0])
	}

	if err := repo.SetPrimaryAccount("u1", 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPrimaryAccount(bad id) = %v, want ErrNotFound", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	session := seedSession(t, repo)

	got, err := repo.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.GameMode != "5v5" || got.Status != StatusOpen {
		t.Errorf("got %+v", got)
	}
	if !got.ScheduledAt.Equal(session.ScheduledAt) {
		t.Errorf("scheduled_at = %v, want %v", got.ScheduledAt, session.ScheduledAt)
	}

	if err := repo.UpdateSessionStatus(session.ID, StatusFull); err != nil {
		t.Fatalf("UpdateSessionStatus: %v", err)
	}
	if err := repo.BindSessionMessage(session.ID, "msg-1"); err != nil {
		t.Fatalf("BindSessionMessage: %v", err)
	}

	got, _ = repo.GetSession(session.ID)
	if got.Status != StatusFull || got.MessageID != "msg-1" {
		t.Errorf("after updates: %+v", got)
	}

	if _, err := repo.GetSession(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession(9999) = %v, want ErrNotFound", err)
	}
}

func TestSessionListings(t *testing.T) {
	repo := newTestRepo(t)

	open := seedSession(t, repo)
	cancelled := seedSession(t, repo)
	if err := repo.UpdateSessionStatus(cancelled.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateSessionStatus: %v", err)
	}

	active, err := repo.ListActiveSessions("guild-1")
	if err != nil {
		t.Fatalf("ListActiveSessions: %v", err)
	}
	if len(active) != 1 || active[0].ID != open.ID {
		t.Errorf("active = %v", active)
	}

	byCreator, err := repo.ListSessionsByCreator("creator")
	if err != nil {
		t.Fatalf("ListSessionsByCreator: %v", err)
	}
	if len(byCreator) != 1 || byCreator[0].ID != open.ID {
		t.Errorf("byCreator = %v", byCreator)
	}

	// Nothing is bound yet.
	bound, err := repo.ListBoundSessions()
	if err != nil {
		t.Fatalf("ListBoundSessions: %v", err)
	}
	if len(bound) != 0 {
		t.Errorf("bound = %v, want none", bound)
	}

	if err := repo.BindSessionMessage(open.ID, "msg-1"); err != nil {
		t.Fatalf("BindSessionMessage: %v", err)
	}
	bound, _ = repo.ListBoundSessions()
	if len(bound) != 1 || bound[0].MessageID != "msg-1" {
		t.Errorf("bound = %v", bound)
	}
}

func TestQueueEntryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	session := seedSession(t, repo)

	entry := &QueueEntry{
		SessionID: session.ID,
		UserID:    "u1",
		AccountID: 1,
		Roles:     gamemode.NewRoleSet(gamemode.RoleTank),
		JoinedAt:  time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateQueueEntry(entry); err != nil {
		t.Fatalf("CreateQueueEntry: %v", err)
	}

	got, err := repo.GetQueueEntry(session.ID, "u1")
	if err != nil {
		t.Fatalf("GetQueueEntry: %v", err)
	}
	if !got.Roles.Equal(entry.Roles) || !got.JoinedAt.Equal(entry.JoinedAt) {
		t.Errorf("got %+v", got)
	}

	got.Roles = got.Roles.Union(gamemode.NewRoleSet(gamemode.RoleDPS))
	got.AccountID = 2
	if err := repo.UpdateQueueEntry(got); err != nil {
		t.Fatalf("UpdateQueueEntry: %v", err)
	}
	if err := repo.SetQueueStreaming(session.ID, "u1", true); err != nil {
		t.Fatalf("SetQueueStreaming: %v", err)
	}

	got, _ = repo.GetQueueEntry(session.ID, "u1")
	if got.AccountID != 2 || !got.Streaming {
		t.Errorf("after updates: %+v", got)
	}
	if !got.Roles.Has(gamemode.RoleDPS) {
		t.Errorf("roles = %v, want dps merged in", got.Roles)
	}

	existed, err := repo.DeleteQueueEntry(session.ID, "u1")
	if err != nil || !existed {
		t.Fatalf("DeleteQueueEntry = %v, %v", existed, err)
	}
	existed, err = repo.DeleteQueueEntry(session.ID, "u1")
	if err != nil || existed {
		t.Fatalf("second delete = %v, %v, want false", existed, err)
	}
	if _, err := repo.GetQueueEntry(session.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQueueEntry after delete = %v, want ErrNotFound", err)
	}
}

func TestListQueueJoinOrder(t *testing.T) {
	repo := newTestRepo(t)
	session := seedSession(t, repo)

	base := time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)
	for i, user := range []string{"late", "early", "middle"} {
		offset := []time.Duration{2 * time.Minute, 0, time.Minute}[i]
		err := repo.CreateQueueEntry(&QueueEntry{
			SessionID: session.ID,
			UserID:    user,
			AccountID: 1,
			Roles:     gamemode.NewRoleSet(gamemode.RoleAny),
			JoinedAt:  base.Add(offset),
		})
		if err != nil {
			t.Fatalf("CreateQueueEntry(%s): %v", user, err)
		}
	}

	queue, err := repo.ListQueue(session.ID)
	if err != nil {
		t.Fatalf("ListQueue: %v", err)
	}
	want := []string{"early", "middle", "late"}
	if len(queue) != len(want) {
		t.Fatalf("queue = %v", queue)
	}
	for i := range want {
		if queue[i].UserID != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, queue[i].UserID, want[i])
		}
	}
}

func TestParticipantRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	session := seedSession(t, repo)

	at := time.Date(2025, 6, 1, 17, 30, 0, 0, time.UTC)
	participants := []*Participant{
		{SessionID: session.ID, UserID: "u1", AccountID: 1, Role: gamemode.RoleTank, SelectedBy: "creator", SelectedAt: at},
		{SessionID: session.ID, UserID: "u2", AccountID: 2, Role: gamemode.RoleDPS, Streaming: true, SelectedBy: "creator", SelectedAt: at.Add(time.Minute)},
		{SessionID: session.ID, UserID: "u3", AccountID: 3, Role: gamemode.RoleDPS, SelectedBy: "creator", SelectedAt: at.Add(2 * time.Minute)},
	}
	for _, p := range participants {
		if err := repo.CreateParticipant(p); err != nil {
			t.Fatalf("CreateParticipant(%s): %v", p.UserID, err)
		}
	}

	got, err := repo.GetParticipant(session.ID, "u2")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if got.Role != gamemode.RoleDPS || !got.Streaming {
		t.Errorf("got %+v", got)
	}

	if err := repo.SetParticipantStreaming(session.ID, "u2", false); err != nil {
		t.Fatalf("SetParticipantStreaming: %v", err)
	}
	got, _ = repo.GetParticipant(session.ID, "u2")
	if got.Streaming {
		t.Error("streaming flag should be cleared")
	}

	listed, err := repo.ListParticipants(session.ID)
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	if len(listed) != 3 || listed[0].UserID != "u1" || listed[2].UserID != "u3" {
		t.Errorf("listed = %v", listed)
	}

	counts, err := repo.CountParticipantsByRole(session.ID)
	if err != nil {
		t.Fatalf("CountParticipantsByRole: %v", err)
	}
	if counts[gamemode.RoleTank] != 1 || counts[gamemode.RoleDPS] != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestQueueEntryUniquePerSessionUser(t *testing.T) {
	repo := newTestRepo(t)
	session := seedSession(t, repo)

	entry := &QueueEntry{
		SessionID: session.ID,
		UserID:    "u1",
		AccountID: 1,
		Roles:     gamemode.NewRoleSet(gamemode.RoleTank),
		JoinedAt:  time.Now().UTC(),
	}
	if err := repo.CreateQueueEntry(entry); err != nil {
		t.Fatalf("CreateQueueEntry: %v", err)
	}
	if err := repo.CreateQueueEntry(entry); err == nil {
		t.Fatal("duplicate (session, user) insert should fail")
	}
}
