package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/notify"
	"github.com/lvlhead/scrimbot/internal/rank"
	"github.com/lvlhead/scrimbot/internal/scrim"
	"github.com/lvlhead/scrimbot/internal/storage"
	"github.com/lvlhead/scrimbot/internal/timeutil"
)

// buildModeChoices creates the game mode choices for slash commands
func buildModeChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := gamemode.Names()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for i, name := range names {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name}
	}
	return choices
}

// buildRoleChoices creates the role choices for slash commands
func buildRoleChoices() []*discordgo.ApplicationCommandOptionChoice {
	roles := []gamemode.Role{gamemode.RoleTank, gamemode.RoleDPS, gamemode.RoleSupport, gamemode.RoleAny}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(roles))
	for i, role := range roles {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: string(role), Value: string(role)}
	}
	return choices
}

// buildTierChoices creates the rank tier choices for slash commands
func buildTierChoices() []*discordgo.ApplicationCommandOptionChoice {
	tiers := rank.Tiers()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(tiers))
	for i, tier := range tiers {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: string(tier), Value: string(tier)}
	}
	return choices
}

func rankOptions(role string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        role + "_tier",
			Description: "Your " + role + " rank tier",
			Choices:     buildTierChoices(),
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        role + "_division",
			Description: "Your " + role + " division (1-5, 1 is strongest)",
			MinValue:    ptr(float64(rank.MinDivision)),
			MaxValue:    float64(rank.MaxDivision),
		},
	}
}

func ptr[T any](v T) *T { return &v }

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	sessionIDOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "session_id",
		Description: "The session ID",
		Required:    true,
	}
	playerOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "player",
		Description: "The queued player",
		Required:    true,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "setup-profile",
			Description: "Set up your profile with timezone and preferred roles",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timezone",
					Description: "Your IANA timezone (e.g., America/New_York)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "roles",
					Description: "Comma-separated preferred roles (e.g., tank,support)",
					Required:    true,
				},
			},
		},
		{
			Name:        "add-account",
			Description: "Add a Battle.net account with its ranks",
			Options: append([]*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "The account name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "primary",
					Description: "Make this your primary account",
					Required:    true,
				},
			}, append(rankOptions("tank"), append(rankOptions("dps"), rankOptions("support")...)...)...),
		},
		{
			Name:        "edit-account",
			Description: "Update ranks on an existing account",
			Options: append([]*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "The account name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "primary",
					Description: "Make this your primary account",
				},
			}, append(rankOptions("tank"), append(rankOptions("dps"), rankOptions("support")...)...)...),
		},
		{
			Name:        "my-profile",
			Description: "Show your profile and accounts",
		},
		{
			Name:        "create-session",
			Description: "Create a new scrim session",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "game_mode",
					Description: "Game mode to play",
					Required:    true,
					Choices:     buildModeChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Session time as YYYY-MM-DDTHH:MM (e.g., 2025-12-25T19:30)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timezone",
					Description: "IANA timezone; defaults to your profile timezone",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "Optional session description",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max_rank_diff",
					Description: "Advisory maximum rank difference (0 = no limit)",
					MinValue:    ptr(0.0),
				},
			},
		},
		{
			Name:        "plan-session",
			Description: "Start creating a session step by step",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "game_mode",
					Description: "Game mode to play",
					Required:    true,
					Choices:     buildModeChoices(),
				},
			},
		},
		{
			Name:        "confirm-session",
			Description: "Finish a planned session with its schedule",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "Session time as YYYY-MM-DDTHH:MM",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timezone",
					Description: "IANA timezone; defaults to your profile timezone",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "Optional session description",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max_rank_diff",
					Description: "Advisory maximum rank difference (0 = no limit)",
					MinValue:    ptr(0.0),
				},
			},
		},
		{
			Name:        "view-sessions",
			Description: "List active sessions in this server",
		},
		{
			Name:        "cancel-session",
			Description: "Cancel a session you created",
			Options:     []*discordgo.ApplicationCommandOption{sessionIDOption},
		},
		{
			Name:        "manage-session",
			Description: "Show the queue for a session you created",
			Options: []*discordgo.ApplicationCommandOption{
				sessionIDOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "role",
					Description: "Only show candidates eligible for this role",
					Choices:     buildRoleChoices(),
				},
			},
		},
		{
			Name:        "join-session",
			Description: "Join a session queue",
			Options: []*discordgo.ApplicationCommandOption{
				sessionIDOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "roles",
					Description: "Comma-separated roles to queue for; defaults to your profile roles",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "account",
					Description: "Account name to queue with; defaults to your primary account",
				},
			},
		},
		{
			Name:        "leave-session",
			Description: "Leave a session queue",
			Options:     []*discordgo.ApplicationCommandOption{sessionIDOption},
		},
		{
			Name:        "accept-player",
			Description: "Accept a queued player into a role slot",
			Options: []*discordgo.ApplicationCommandOption{
				sessionIDOption,
				playerOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "role",
					Description: "The role slot to fill",
					Required:    true,
					Choices:     buildRoleChoices(),
				},
			},
		},
		{
			Name:        "reject-player",
			Description: "Remove a queued player without selecting them",
			Options: []*discordgo.ApplicationCommandOption{
				sessionIDOption,
				playerOption,
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// Option and reply helpers

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if opt, ok := opts[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// deferEphemeral acknowledges the interaction within its response window
// so slow work (channel posts, message binds) can finish afterwards.
func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// editResponse replaces a deferred acknowledgment with the final content.
func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
}

// replyDomainError sends a privately-scoped, human-readable failure.
// Internal errors are logged and reported generically.
func replyDomainError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if scrim.KindOf(err) == scrim.KindInternal {
		slog.Error("Command failed", "command", i.ApplicationCommandData().Name, "error", err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	respondEphemeral(s, i, capitalized(err.Error())+".")
}

// editDomainError mirrors replyDomainError for handlers that already
// deferred their acknowledgment.
func (b *Bot) editDomainError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if scrim.KindOf(err) == scrim.KindInternal {
		slog.Error("Command failed", "command", i.ApplicationCommandData().Name, "error", err)
		b.editResponse(s, i, "Something went wrong. Please try again.")
		return
	}
	b.editResponse(s, i, capitalized(err.Error())+".")
}

func capitalized(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseRolesCSV parses a comma-separated role list.
func parseRolesCSV(raw string) (gamemode.RoleSet, error) {
	set := gamemode.RoleSet{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, err := gamemode.ParseRole(part)
		if err != nil {
			return nil, err
		}
		set[role] = struct{}{}
	}
	return set, nil
}

// Profile commands

// handleSetupProfile handles the /setup-profile command
func (b *Bot) handleSetupProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	tz := stringOption(opts, "timezone")
	rolesRaw := stringOption(opts, "roles")

	if !timeutil.ValidateTimezone(tz) {
		respondEphemeral(s, i, fmt.Sprintf("`%s` is not a valid timezone. Use an IANA name like `America/New_York`.", tz))
		return
	}

	roles, err := parseRolesCSV(rolesRaw)
	if err != nil || len(roles) == 0 {
		respondEphemeral(s, i, "Roles must be a comma-separated list of tank, dps, support, or any.")
		return
	}

	username := ""
	if i.Member != nil && i.Member.User != nil {
		username = i.Member.User.Username
	}
	user := &storage.User{
		DiscordID:      invokerID(i),
		Username:       username,
		PreferredRoles: roles,
		Timezone:       tz,
	}
	if err := b.repo.UpsertUser(user); err != nil {
		slog.Error("Failed to save profile", "error", err)
		respondEphemeral(s, i, "Failed to save your profile. Please try again.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Profile saved. Timezone: `%s`, roles: %s.\nNext, add an account with `/add-account`.", tz, roles))
}

// handleAddAccount handles the /add-account command
func (b *Bot) handleAddAccount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	account := &storage.Account{
		OwnerID:   invokerID(i),
		Name:      stringOption(opts, "name"),
		IsPrimary: false,
		Ranks:     map[gamemode.Role]rank.Rank{},
	}
	if opt, ok := opts["primary"]; ok {
		account.IsPrimary = opt.BoolValue()
	}

	if _, err := applyRankOptions(opts, account); err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}

	if err := b.repo.CreateAccount(account); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondEphemeral(s, i, fmt.Sprintf("You already have an account named `%s`.", account.Name))
			return
		}
		slog.Error("Failed to save account", "error", err)
		respondEphemeral(s, i, "Failed to save the account. Please try again.")
		return
	}

	msg := fmt.Sprintf("Account `%s` added", account.Name)
	if account.IsPrimary {
		msg += " (set as primary)"
	}
	respondEphemeral(s, i, msg+".")
}

// applyRankOptions folds any provided per-role tier/division pairs into
// the account's rank map. Reports whether any rank changed.
func applyRankOptions(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, account *storage.Account) (bool, error) {
	changed := false
	for _, role := range []gamemode.Role{gamemode.RoleTank, gamemode.RoleDPS, gamemode.RoleSupport} {
		tierRaw := stringOption(opts, string(role)+"_tier")
		division := intOption(opts, string(role)+"_division")
		if tierRaw == "" && division == 0 {
			continue
		}
		tier, err := rank.ParseTier(tierRaw)
		if err != nil {
			return false, fmt.Errorf("invalid %s tier: %s", role, tierRaw)
		}
		rk := rank.Rank{Tier: tier, Division: int(division)}
		if !rk.Valid() {
			return false, fmt.Errorf("both tier and a division between %d and %d are required for %s", rank.MinDivision, rank.MaxDivision, role)
		}
		account.Ranks[role] = rk
		changed = true
	}
	return changed, nil
}

// handleEditAccount handles the /edit-account command. Only the options
// actually provided are applied; omitted roles keep their ranks.
func (b *Bot) handleEditAccount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	userID := invokerID(i)
	name := stringOption(opts, "name")

	account, err := b.resolveAccount(userID, name)
	if err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}

	ranksChanged, err := applyRankOptions(opts, account)
	if err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}

	madePrimary := false
	if opt, ok := opts["primary"]; ok && opt.BoolValue() && !account.IsPrimary {
		if err := b.repo.SetPrimaryAccount(userID, account.ID); err != nil {
			slog.Error("Failed to set primary account", "account", account.ID, "error", err)
			respondEphemeral(s, i, "Failed to update the account. Please try again.")
			return
		}
		madePrimary = true
	}

	if !ranksChanged && !madePrimary {
		respondEphemeral(s, i, "Nothing to update. Provide a rank pair or `primary`.")
		return
	}

	if ranksChanged {
		if err := b.repo.UpdateAccountRanks(account); err != nil {
			slog.Error("Failed to update account ranks", "account", account.ID, "error", err)
			respondEphemeral(s, i, "Failed to update the account. Please try again.")
			return
		}
	}

	msg := fmt.Sprintf("Account `%s` updated", account.Name)
	if madePrimary {
		msg += " (set as primary)"
	}
	respondEphemeral(s, i, msg+".")
}

// handleMyProfile handles the /my-profile command
func (b *Bot) handleMyProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := invokerID(i)
	user, err := b.repo.GetUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondEphemeral(s, i, "You have no profile yet. Use `/setup-profile` first.")
			return
		}
		slog.Error("Failed to load profile", "error", err)
		respondEphemeral(s, i, "Failed to load your profile. Please try again.")
		return
	}

	accounts, err := b.repo.GetAccountsByOwner(userID)
	if err != nil {
		slog.Error("Failed to load accounts", "error", err)
		respondEphemeral(s, i, "Failed to load your accounts. Please try again.")
		return
	}

	respondEphemeralEmbed(s, i, notify.ProfileEmbed(user, accounts))
}

// Session commands

// handleCreateSession handles the /create-session command
func (b *Bot) handleCreateSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	b.createSession(s, i, createInput{
		GameMode:    stringOption(opts, "game_mode"),
		Time:        stringOption(opts, "time"),
		Timezone:    stringOption(opts, "timezone"),
		Description: stringOption(opts, "description"),
		MaxRankDiff: int(intOption(opts, "max_rank_diff")),
	})
}

type createInput struct {
	GameMode    string
	Time        string
	Timezone    string
	Description string
	MaxRankDiff int
}

// createSession validates schedule input, opens the session, posts its
// embed with the queue buttons, and binds the posted message. The
// acknowledgment is deferred first: posting the session message is an
// external call that can outlast the interaction response window.
// Reports whether the session record was created.
func (b *Bot) createSession(s *discordgo.Session, i *discordgo.InteractionCreate, in createInput) bool {
	deferEphemeral(s, i)

	userID := invokerID(i)

	tz := in.Timezone
	if tz == "" {
		user, err := b.repo.GetUser(userID)
		if err != nil {
			b.editResponse(s, i, "No timezone given and no profile found. Use `/setup-profile` or pass a timezone.")
			return false
		}
		tz = user.Timezone
	}
	if !timeutil.ValidateTimezone(tz) {
		b.editResponse(s, i, fmt.Sprintf("`%s` is not a valid timezone.", tz))
		return false
	}

	scheduledAt, err := timeutil.ParseLocal(in.Time, tz)
	if err != nil {
		b.editResponse(s, i, fmt.Sprintf("Invalid time `%s`, expected `YYYY-MM-DDTHH:MM`.", in.Time))
		return false
	}
	if scheduledAt.Before(time.Now()) {
		b.editResponse(s, i, "You cannot create a session in the past.")
		return false
	}

	session, err := b.coord.CreateSession(scrim.CreateSessionParams{
		CreatorID:   userID,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		GameMode:    in.GameMode,
		ScheduledAt: scheduledAt,
		Timezone:    tz,
		Description: in.Description,
		MaxRankDiff: in.MaxRankDiff,
	})
	if err != nil {
		b.editDomainError(s, i, err)
		return false
	}

	if err := b.postSessionMessage(s, session); err != nil {
		slog.Error("Failed to post session message", "session", session.ID, "error", err)
		b.editResponse(s, i, fmt.Sprintf("Session #%d created, but its message could not be posted.", session.ID))
		return true
	}

	b.editResponse(s, i, fmt.Sprintf("Session #%d created. Players can join with the buttons above.", session.ID))
	return true
}

// postSessionMessage sends the session embed with its queue buttons and
// binds the resulting message to the session.
func (b *Bot) postSessionMessage(s *discordgo.Session, session *storage.Session) error {
	snap, err := b.coord.Snapshot(session.ID)
	if err != nil {
		return err
	}

	message, err := s.ChannelMessageSendComplex(session.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{notify.SessionEmbed(snap)},
		Components: sessionButtons(session.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to send session message: %w", err)
	}

	return b.coord.BindMessage(session.ID, message.ID)
}

// handlePlanSession starts the two-step creation flow
func (b *Bot) handlePlanSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	mode := stringOption(opts, "game_mode")
	if _, err := gamemode.Get(mode); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Unknown game mode `%s`.", mode))
		return
	}

	b.drafts.Put(invokerID(i), &sessionDraft{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		GameMode:  mode,
	})

	respondEphemeral(s, i, fmt.Sprintf(
		"Planning a %s session. Finish it within %s using `/confirm-session time:YYYY-MM-DDTHH:MM`.",
		mode, b.drafts.ttl))
}

// handleConfirmSession completes a planned session
func (b *Bot) handleConfirmSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	draft, ok := b.drafts.Get(invokerID(i))
	if !ok {
		respondEphemeral(s, i, "No session in progress (drafts expire). Start again with `/plan-session`.")
		return
	}

	opts := optionMap(i)
	created := b.createSession(s, i, createInput{
		GameMode:    draft.GameMode,
		Time:        stringOption(opts, "time"),
		Timezone:    stringOption(opts, "timezone"),
		Description: stringOption(opts, "description"),
		MaxRankDiff: int(intOption(opts, "max_rank_diff")),
	})
	// A failed confirm (bad time, bad timezone) keeps the draft so the
	// user can retry without replanning.
	if created {
		b.drafts.Delete(invokerID(i))
	}
}

// handleViewSessions handles the /view-sessions command
func (b *Bot) handleViewSessions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sessions, err := b.coord.ActiveSessions(i.GuildID)
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		respondEphemeral(s, i, "Failed to retrieve sessions.")
		return
	}

	guildName := ""
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		guildName = guild.Name
	}
	respondEphemeralEmbed(s, i, notify.SessionListEmbed(sessions, guildName))
}

// handleCancelSession handles the /cancel-session command
func (b *Bot) handleCancelSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sessionID := intOption(optionMap(i), "session_id")

	if err := b.coord.CancelSession(sessionID, invokerID(i)); err != nil {
		replyDomainError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Session #%d cancelled.", sessionID))
}

// handleManageSession handles the /manage-session command
func (b *Bot) handleManageSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	sessionID := intOption(opts, "session_id")
	userID := invokerID(i)

	snap, err := b.coord.Snapshot(sessionID)
	if err != nil {
		replyDomainError(s, i, err)
		return
	}
	if snap.Session.CreatorID != userID {
		replyDomainError(s, i, scrim.ErrNotCreator)
		return
	}

	if roleRaw := stringOption(opts, "role"); roleRaw != "" {
		role, err := gamemode.ParseRole(roleRaw)
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Unknown role `%s`.", roleRaw))
			return
		}
		candidates, err := b.coord.ListEligible(sessionID, role)
		if err != nil {
			replyDomainError(s, i, err)
			return
		}
		snap.Queue = candidates
	}

	respondEphemeralEmbed(s, i, notify.QueueEmbed(snap))
}

// handleJoinSession handles the /join-session command
func (b *Bot) handleJoinSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	sessionID := intOption(opts, "session_id")
	userID := invokerID(i)

	roles, err := b.resolveRoles(userID, stringOption(opts, "roles"))
	if err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}

	account, err := b.resolveAccount(userID, stringOption(opts, "account"))
	if err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}

	if _, err := b.coord.Enqueue(sessionID, userID, account.ID, roles); err != nil {
		replyDomainError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("You're queued for session #%d as %s (account `%s`).", sessionID, roles, account.Name))
}

// resolveRoles parses an explicit role list or falls back to the user's
// profile preferences.
func (b *Bot) resolveRoles(userID, raw string) (gamemode.RoleSet, error) {
	if raw != "" {
		roles, err := parseRolesCSV(raw)
		if err != nil {
			return nil, err
		}
		if len(roles) == 0 {
			return nil, scrim.ErrNoRoles
		}
		return roles, nil
	}
	user, err := b.repo.GetUser(userID)
	if err != nil || len(user.PreferredRoles) == 0 {
		return nil, fmt.Errorf("no roles given and no profile preferences found; use `/setup-profile` first")
	}
	return user.PreferredRoles, nil
}

// resolveAccount picks the named account, or the primary-first default.
func (b *Bot) resolveAccount(userID, name string) (*storage.Account, error) {
	accounts, err := b.repo.GetAccountsByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("you need at least one account; use `/add-account` first")
	}
	if name == "" {
		return accounts[0], nil // primary first per store ordering
	}
	for _, account := range accounts {
		if strings.EqualFold(account.Name, name) {
			return account, nil
		}
	}
	return nil, fmt.Errorf("no account named `%s`", name)
}

// handleLeaveSession handles the /leave-session command
func (b *Bot) handleLeaveSession(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sessionID := intOption(optionMap(i), "session_id")

	if err := b.coord.Dequeue(sessionID, invokerID(i)); err != nil {
		replyDomainError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("You've left the queue for session #%d.", sessionID))
}

// handleAcceptPlayer handles the /accept-player command
func (b *Bot) handleAcceptPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	sessionID := intOption(opts, "session_id")
	player := opts["player"].UserValue(s)
	role, err := gamemode.ParseRole(stringOption(opts, "role"))
	if err != nil {
		respondEphemeral(s, i, "Unknown role.")
		return
	}

	participant, err := b.coord.AcceptPlayer(sessionID, invokerID(i), player.ID, role)
	if err != nil {
		replyDomainError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Accepted <@%s> as %s for session #%d.", participant.UserID, participant.Role, sessionID))
}

// handleRejectPlayer handles the /reject-player command
func (b *Bot) handleRejectPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	sessionID := intOption(opts, "session_id")
	player := opts["player"].UserValue(s)

	if err := b.coord.RejectPlayer(sessionID, invokerID(i), player.ID); err != nil {
		replyDomainError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Removed <@%s> from the queue for session #%d.", player.ID, sessionID))
}
