package storage

import (
	"time"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/rank"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusOpen      SessionStatus = "OPEN"
	StatusFull      SessionStatus = "FULL"
	StatusCancelled SessionStatus = "CANCELLED"
)

// User is a Discord user's profile.
type User struct {
	DiscordID      string
	Username       string
	PreferredRoles gamemode.RoleSet
	Timezone       string
	CreatedAt      time.Time
}

// Account is one Battle.net account belonging to a user, with per-role
// ranks. At most one account per user is primary.
type Account struct {
	ID        int64
	OwnerID   string // Discord user ID
	Name      string
	IsPrimary bool
	Ranks     map[gamemode.Role]rank.Rank
	CreatedAt time.Time
}

// BestRank returns the strongest of the account's role ranks.
func (a *Account) BestRank() (rank.Rank, bool) {
	ranks := make([]rank.Rank, 0, len(a.Ranks))
	for _, r := range a.Ranks {
		ranks = append(ranks, r)
	}
	return rank.Best(ranks)
}

// RankFor returns the account's rank for a role. For the catch-all role
// the strongest rank across all roles is used.
func (a *Account) RankFor(role gamemode.Role) (rank.Rank, bool) {
	if role == gamemode.RoleAny {
		return a.BestRank()
	}
	r, ok := a.Ranks[role]
	return r, ok
}

// Session is a scheduled scrim with role-capacity requirements.
type Session struct {
	ID          int64
	CreatorID   string
	GuildID     string
	ChannelID   string
	GameMode    string
	ScheduledAt time.Time // UTC
	Timezone    string    // original IANA zone for display
	Description string
	MaxRankDiff int // 0 = no limit; informational only
	Status      SessionStatus
	MessageID   string // bound Discord message, empty until first posted
	CreatedAt   time.Time
}

// Mode resolves the session's game mode configuration.
func (s *Session) Mode() (gamemode.Mode, error) {
	return gamemode.Get(s.GameMode)
}

// QueueEntry is a candidate waiting to be selected into a session.
// One live entry per (session, user).
type QueueEntry struct {
	SessionID int64
	UserID    string
	AccountID int64
	Roles     gamemode.RoleSet
	Streaming bool
	JoinedAt  time.Time
}

// Participant is a committed team slot. One per (session, user).
type Participant struct {
	SessionID  int64
	UserID     string
	AccountID  int64
	Role       gamemode.Role
	Streaming  bool
	SelectedBy string
	SelectedAt time.Time
}
