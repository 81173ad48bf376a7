package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/lvlhead/scrimbot/internal/config"
	"github.com/lvlhead/scrimbot/internal/notify"
	"github.com/lvlhead/scrimbot/internal/scrim"
	"github.com/lvlhead/scrimbot/internal/storage"
)

// Bot represents the Discord bot instance
type Bot struct {
	config   *config.Config
	session  *discordgo.Session
	repo     *storage.Repository
	coord    *scrim.Coordinator
	notifier *notify.Notifier
	drafts   *draftStore
	commands []*discordgo.ApplicationCommand
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Wire the coordinator and its display refresher. The notifier reads
	// through the coordinator so its snapshots see serialized state.
	coord := scrim.New(repo, nil)
	notifier := notify.New(coord, &messenger{session: session})
	coord.SetNotifier(notifier)

	b := &Bot{
		config:   cfg,
		session:  session,
		repo:     repo,
		coord:    coord,
		notifier: notifier,
		drafts:   newDraftStore(cfg.DraftTTL),
	}

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and registers commands
func (b *Bot) Start(ctx context.Context) error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	// Refresh every session display that survived a restart
	go b.resyncBoundSessions()

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Close storage
	if b.repo != nil {
		b.repo.Close()
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// resyncBoundSessions pushes a fresh embed to every non-cancelled session
// that has a bound message, so restarts never leave stale displays.
func (b *Bot) resyncBoundSessions() {
	sessions, err := b.repo.ListBoundSessions()
	if err != nil {
		slog.Error("Failed to list bound sessions", "error", err)
		return
	}
	for _, session := range sessions {
		b.notifier.Resync(session.ID)
	}
	slog.Info("Refreshed session displays", "count", len(sessions))
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
	})
}

// handleInteraction routes slash commands and message components
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

// handleCommand dispatches slash command interactions
func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	switch data.Name {
	case "setup-profile":
		b.handleSetupProfile(s, i)
	case "add-account":
		b.handleAddAccount(s, i)
	case "edit-account":
		b.handleEditAccount(s, i)
	case "my-profile":
		b.handleMyProfile(s, i)
	case "create-session":
		b.handleCreateSession(s, i)
	case "plan-session":
		b.handlePlanSession(s, i)
	case "confirm-session":
		b.handleConfirmSession(s, i)
	case "view-sessions":
		b.handleViewSessions(s, i)
	case "cancel-session":
		b.handleCancelSession(s, i)
	case "manage-session":
		b.handleManageSession(s, i)
	case "join-session":
		b.handleJoinSession(s, i)
	case "leave-session":
		b.handleLeaveSession(s, i)
	case "accept-player":
		b.handleAcceptPlayer(s, i)
	case "reject-player":
		b.handleRejectPlayer(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}

// messenger adapts the discordgo session to the notify.Messenger interface.
type messenger struct {
	session *discordgo.Session
}

func (m *messenger) EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error {
	_, err := m.session.ChannelMessageEditEmbed(channelID, messageID, embed)
	return err
}
