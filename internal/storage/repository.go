package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/rank"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Repository handles all database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// WAL mode for concurrent readers, enforced foreign keys
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			discord_id VARCHAR(20) PRIMARY KEY,
			username TEXT NOT NULL,
			preferred_roles TEXT,
			timezone TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id VARCHAR(20) NOT NULL,
			name TEXT NOT NULL,
			is_primary BOOLEAN DEFAULT 0,
			tank_tier TEXT,
			tank_division INTEGER,
			dps_tier TEXT,
			dps_division INTEGER,
			support_tier TEXT,
			support_division INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (owner_id) REFERENCES users(discord_id) ON DELETE CASCADE,
			UNIQUE(owner_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			creator_id VARCHAR(20) NOT NULL,
			guild_id VARCHAR(20) NOT NULL,
			channel_id VARCHAR(20) NOT NULL,
			game_mode TEXT NOT NULL,
			scheduled_at TIMESTAMP NOT NULL,
			timezone TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			max_rank_diff INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'OPEN',
			message_id VARCHAR(20) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS queue_entries (
			session_id INTEGER NOT NULL,
			user_id VARCHAR(20) NOT NULL,
			account_id INTEGER NOT NULL,
			roles TEXT NOT NULL,
			streaming BOOLEAN DEFAULT 0,
			joined_at TIMESTAMP NOT NULL,
			PRIMARY KEY (session_id, user_id),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			session_id INTEGER NOT NULL,
			user_id VARCHAR(20) NOT NULL,
			account_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			streaming BOOLEAN DEFAULT 0,
			selected_by VARCHAR(20) NOT NULL,
			selected_at TIMESTAMP NOT NULL,
			PRIMARY KEY (session_id, user_id),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_guild ON sessions(guild_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts(owner_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// notFound maps the driver's no-rows error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Role set serialization stays inside this package; callers only see
// gamemode.RoleSet.

func marshalRoles(set gamemode.RoleSet) (string, error) {
	names := make([]string, 0, len(set))
	for _, role := range set.Roles() {
		names = append(names, string(role))
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("failed to encode roles: %w", err)
	}
	return string(raw), nil
}

func unmarshalRoles(raw string) (gamemode.RoleSet, error) {
	if raw == "" {
		return gamemode.RoleSet{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}
	set := make(gamemode.RoleSet, len(names))
	for _, name := range names {
		set[gamemode.Role(name)] = struct{}{}
	}
	return set, nil
}

// User operations

// UpsertUser creates or updates a user profile
func (r *Repository) UpsertUser(u *User) error {
	roles, err := marshalRoles(u.PreferredRoles)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		`INSERT INTO users (discord_id, username, preferred_roles, timezone) VALUES (?, ?, ?, ?)
		 ON CONFLICT(discord_id) DO UPDATE SET username = excluded.username,
			preferred_roles = excluded.preferred_roles, timezone = excluded.timezone`,
		u.DiscordID, u.Username, roles, u.Timezone,
	)
	return err
}

// GetUser finds a user profile by Discord ID
func (r *Repository) GetUser(discordID string) (*User, error) {
	u := &User{}
	var roles string
	err := r.db.QueryRow(
		`SELECT discord_id, username, preferred_roles, timezone, created_at FROM users WHERE discord_id = ?`,
		discordID,
	).Scan(&u.DiscordID, &u.Username, &roles, &u.Timezone, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if u.PreferredRoles, err = unmarshalRoles(roles); err != nil {
		return nil, err
	}
	return u, nil
}

// Account operations

// rankColumns maps role ranks onto their nullable column pairs.
var rankedRoles = []gamemode.Role{gamemode.RoleTank, gamemode.RoleDPS, gamemode.RoleSupport}

func rankArgs(a *Account) []any {
	args := make([]any, 0, 6)
	for _, role := range rankedRoles {
		if rk, ok := a.Ranks[role]; ok {
			args = append(args, string(rk.Tier), rk.Division)
		} else {
			args = append(args, nil, nil)
		}
	}
	return args
}

func scanAccount(scan func(dest ...any) error) (*Account, error) {
	a := &Account{}
	var tiers [3]sql.NullString
	var divisions [3]sql.NullInt64
	err := scan(
		&a.ID, &a.OwnerID, &a.Name, &a.IsPrimary,
		&tiers[0], &divisions[0], &tiers[1], &divisions[1], &tiers[2], &divisions[2],
		&a.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	a.Ranks = make(map[gamemode.Role]rank.Rank)
	for i, role := range rankedRoles {
		if tiers[i].Valid && divisions[i].Valid {
			a.Ranks[role] = rank.Rank{Tier: rank.Tier(tiers[i].String), Division: int(divisions[i].Int64)}
		}
	}
	return a, nil
}

const accountColumns = `id, owner_id, name, is_primary,
	tank_tier, tank_division, dps_tier, dps_division, support_tier, support_division, created_at`

// CreateAccount inserts a new account. A primary account clears the
// primary flag on the owner's other accounts first.
func (r *Repository) CreateAccount(a *Account) error {
	if a.IsPrimary {
		if err := r.clearPrimary(a.OwnerID); err != nil {
			return err
		}
	}
	args := append([]any{a.OwnerID, a.Name, a.IsPrimary}, rankArgs(a)...)
	result, err := r.db.Exec(
		`INSERT INTO accounts (owner_id, name, is_primary,
			tank_tier, tank_division, dps_tier, dps_division, support_tier, support_division)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// UpdateAccountRanks replaces an account's stored role ranks.
func (r *Repository) UpdateAccountRanks(a *Account) error {
	args := append(rankArgs(a), a.ID)
	result, err := r.db.Exec(
		`UPDATE accounts SET tank_tier = ?, tank_division = ?, dps_tier = ?, dps_division = ?,
			support_tier = ?, support_division = ? WHERE id = ?`,
		args...,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) clearPrimary(ownerID string) error {
	_, err := r.db.Exec(`UPDATE accounts SET is_primary = 0 WHERE owner_id = ?`, ownerID)
	return err
}

// SetPrimaryAccount marks one account primary and clears all others.
func (r *Repository) SetPrimaryAccount(ownerID string, accountID int64) error {
	if err := r.clearPrimary(ownerID); err != nil {
		return err
	}
	result, err := r.db.Exec(
		`UPDATE accounts SET is_primary = 1 WHERE id = ? AND owner_id = ?`,
		accountID, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAccount finds an account by ID
func (r *Repository) GetAccount(id int64) (*Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row.Scan)
}

// GetAccountsByOwner returns a user's accounts, primary first
func (r *Repository) GetAccountsByOwner(ownerID string) ([]*Account, error) {
	rows, err := r.db.Query(
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY is_primary DESC, name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// Session operations

const sessionColumns = `id, creator_id, guild_id, channel_id, game_mode, scheduled_at,
	timezone, description, max_rank_diff, status, message_id, created_at`

func scanSession(scan func(dest ...any) error) (*Session, error) {
	s := &Session{}
	err := scan(
		&s.ID, &s.CreatorID, &s.GuildID, &s.ChannelID, &s.GameMode, &s.ScheduledAt,
		&s.Timezone, &s.Description, &s.MaxRankDiff, &s.Status, &s.MessageID, &s.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// CreateSession inserts a new session
func (r *Repository) CreateSession(s *Session) error {
	result, err := r.db.Exec(
		`INSERT INTO sessions (creator_id, guild_id, channel_id, game_mode, scheduled_at,
			timezone, description, max_rank_diff, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CreatorID, s.GuildID, s.ChannelID, s.GameMode, s.ScheduledAt.UTC(),
		s.Timezone, s.Description, s.MaxRankDiff, s.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// GetSession finds a session by ID
func (r *Repository) GetSession(id int64) (*Session, error) {
	row := r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row.Scan)
}

// UpdateSessionStatus sets a session's lifecycle status
func (r *Repository) UpdateSessionStatus(id int64, status SessionStatus) error {
	_, err := r.db.Exec(`UPDATE sessions SET status = ? WHERE id = ?`, status, id)
	return err
}

// BindSessionMessage records the Discord message displaying this session
func (r *Repository) BindSessionMessage(id int64, messageID string) error {
	_, err := r.db.Exec(`UPDATE sessions SET message_id = ? WHERE id = ?`, messageID, id)
	return err
}

// ListActiveSessions returns a guild's OPEN and FULL sessions, soonest first
func (r *Repository) ListActiveSessions(guildID string) ([]*Session, error) {
	return r.querySessions(
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE guild_id = ? AND status IN ('OPEN', 'FULL')
		 ORDER BY scheduled_at ASC`,
		guildID,
	)
}

// ListSessionsByCreator returns a creator's OPEN and FULL sessions
func (r *Repository) ListSessionsByCreator(creatorID string) ([]*Session, error) {
	return r.querySessions(
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE creator_id = ? AND status IN ('OPEN', 'FULL')
		 ORDER BY scheduled_at ASC`,
		creatorID,
	)
}

// ListBoundSessions returns non-cancelled sessions with a bound message,
// used to refresh displays after a restart
func (r *Repository) ListBoundSessions() ([]*Session, error) {
	return r.querySessions(
		`SELECT ` + sessionColumns + ` FROM sessions
		 WHERE status IN ('OPEN', 'FULL') AND message_id != ''`,
	)
}

func (r *Repository) querySessions(query string, args ...any) ([]*Session, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Queue operations

// CreateQueueEntry adds a user to a session's queue
func (r *Repository) CreateQueueEntry(e *QueueEntry) error {
	roles, err := marshalRoles(e.Roles)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		`INSERT INTO queue_entries (session_id, user_id, account_id, roles, streaming, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.UserID, e.AccountID, roles, e.Streaming, e.JoinedAt.UTC(),
	)
	return err
}

// GetQueueEntry finds a user's live queue entry for a session
func (r *Repository) GetQueueEntry(sessionID int64, userID string) (*QueueEntry, error) {
	e := &QueueEntry{}
	var roles string
	err := r.db.QueryRow(
		`SELECT session_id, user_id, account_id, roles, streaming, joined_at
		 FROM queue_entries WHERE session_id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&e.SessionID, &e.UserID, &e.AccountID, &roles, &e.Streaming, &e.JoinedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if e.Roles, err = unmarshalRoles(roles); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateQueueEntry replaces an entry's role preferences and account
func (r *Repository) UpdateQueueEntry(e *QueueEntry) error {
	roles, err := marshalRoles(e.Roles)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		`UPDATE queue_entries SET account_id = ?, roles = ? WHERE session_id = ? AND user_id = ?`,
		e.AccountID, roles, e.SessionID, e.UserID,
	)
	return err
}

// SetQueueStreaming flips the streaming flag on a queue entry
func (r *Repository) SetQueueStreaming(sessionID int64, userID string, streaming bool) error {
	_, err := r.db.Exec(
		`UPDATE queue_entries SET streaming = ? WHERE session_id = ? AND user_id = ?`,
		streaming, sessionID, userID,
	)
	return err
}

// DeleteQueueEntry removes a user's queue entry, reporting whether one existed
func (r *Repository) DeleteQueueEntry(sessionID int64, userID string) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM queue_entries WHERE session_id = ? AND user_id = ?`,
		sessionID, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListQueue returns a session's queue in join order
func (r *Repository) ListQueue(sessionID int64) ([]*QueueEntry, error) {
	rows, err := r.db.Query(
		`SELECT session_id, user_id, account_id, roles, streaming, joined_at
		 FROM queue_entries WHERE session_id = ? ORDER BY joined_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*QueueEntry
	for rows.Next() {
		e := &QueueEntry{}
		var roles string
		if err := rows.Scan(&e.SessionID, &e.UserID, &e.AccountID, &roles, &e.Streaming, &e.JoinedAt); err != nil {
			return nil, err
		}
		if e.Roles, err = unmarshalRoles(roles); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Participant operations

// CreateParticipant commits a user to a team slot
func (r *Repository) CreateParticipant(p *Participant) error {
	_, err := r.db.Exec(
		`INSERT INTO participants (session_id, user_id, account_id, role, streaming, selected_by, selected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.SessionID, p.UserID, p.AccountID, p.Role, p.Streaming, p.SelectedBy, p.SelectedAt.UTC(),
	)
	return err
}

// GetParticipant finds a user's committed slot in a session
func (r *Repository) GetParticipant(sessionID int64, userID string) (*Participant, error) {
	p := &Participant{}
	err := r.db.QueryRow(
		`SELECT session_id, user_id, account_id, role, streaming, selected_by, selected_at
		 FROM participants WHERE session_id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&p.SessionID, &p.UserID, &p.AccountID, &p.Role, &p.Streaming, &p.SelectedBy, &p.SelectedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// SetParticipantStreaming flips the streaming flag on a participant
func (r *Repository) SetParticipantStreaming(sessionID int64, userID string, streaming bool) error {
	_, err := r.db.Exec(
		`UPDATE participants SET streaming = ? WHERE session_id = ? AND user_id = ?`,
		streaming, sessionID, userID,
	)
	return err
}

// ListParticipants returns a session's committed team in selection order
func (r *Repository) ListParticipants(sessionID int64) ([]*Participant, error) {
	rows, err := r.db.Query(
		`SELECT session_id, user_id, account_id, role, streaming, selected_by, selected_at
		 FROM participants WHERE session_id = ? ORDER BY selected_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.AccountID, &p.Role, &p.Streaming, &p.SelectedBy, &p.SelectedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// CountParticipantsByRole returns the committed slot count per role
func (r *Repository) CountParticipantsByRole(sessionID int64) (map[gamemode.Role]int, error) {
	rows, err := r.db.Query(
		`SELECT role, COUNT(*) FROM participants WHERE session_id = ? GROUP BY role`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[gamemode.Role]int)
	for rows.Next() {
		var role gamemode.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}

	return counts, rows.Err()
}
