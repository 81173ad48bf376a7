package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/lvlhead/scrimbot/internal/scrim"
)

// Component custom IDs carry the session ID so buttons keep working
// across restarts: "scrim:<action>:<sessionID>".
const componentPrefix = "scrim"

func componentID(action string, sessionID int64) string {
	return fmt.Sprintf("%s:%s:%d", componentPrefix, action, sessionID)
}

func parseComponentID(customID string) (action string, sessionID int64, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != componentPrefix {
		return "", 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return parts[1], id, true
}

// sessionButtons builds the row of queue buttons under a session embed.
func sessionButtons(sessionID int64) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.SuccessButton,
					CustomID: componentID("join", sessionID),
				},
				discordgo.Button{
					Label:    "Leave",
					Style:    discordgo.DangerButton,
					CustomID: componentID("leave", sessionID),
				},
				discordgo.Button{
					Label:    "Streaming",
					Style:    discordgo.SecondaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "\U0001F4FA"},
					CustomID: componentID("stream", sessionID),
				},
				discordgo.Button{
					Label:    "Refresh",
					Style:    discordgo.SecondaryButton,
					CustomID: componentID("refresh", sessionID),
				},
			},
		},
	}
}

// handleComponent routes button clicks on session messages.
func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, sessionID, ok := parseComponentID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	slog.Debug("Received component", "action", action, "session", sessionID)

	switch action {
	case "join":
		b.handleJoinButton(s, i, sessionID)
	case "leave":
		b.handleLeaveButton(s, i, sessionID)
	case "stream":
		b.handleStreamButton(s, i, sessionID)
	case "refresh":
		b.handleRefreshButton(s, i, sessionID)
	default:
		slog.Warn("Unknown component action", "action", action)
	}
}

// handleJoinButton queues the clicking user with their profile roles and
// primary account.
func (b *Bot) handleJoinButton(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID int64) {
	userID := invokerID(i)

	roles, err := b.resolveRoles(userID, "")
	if err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}
	account, err := b.resolveAccount(userID, "")
	if err != nil {
		respondEphemeral(s, i, capitalized(err.Error())+".")
		return
	}

	if _, err := b.coord.Enqueue(sessionID, userID, account.ID, roles); err != nil {
		replyComponentError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("You've joined the queue as %s (account `%s`).", roles, account.Name))
}

func (b *Bot) handleLeaveButton(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID int64) {
	if err := b.coord.Dequeue(sessionID, invokerID(i)); err != nil {
		replyComponentError(s, i, err)
		return
	}
	respondEphemeral(s, i, "You've left the session queue.")
}

func (b *Bot) handleStreamButton(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID int64) {
	streaming, err := b.coord.ToggleStreaming(sessionID, invokerID(i))
	if err != nil {
		replyComponentError(s, i, err)
		return
	}
	state := "disabled"
	if streaming {
		state = "enabled"
	}
	respondEphemeral(s, i, fmt.Sprintf("\U0001F4FA Streaming %s.", state))
}

func (b *Bot) handleRefreshButton(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID int64) {
	// Acknowledge within the interaction window; the refresh itself is
	// detached like any other resync.
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	go b.notifier.Resync(sessionID)
}

// replyComponentError mirrors replyDomainError for component
// interactions, which have no command name to log.
func replyComponentError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if scrim.KindOf(err) == scrim.KindInternal {
		slog.Error("Component action failed", "custom_id", i.MessageComponentData().CustomID, "error", err)
		respondEphemeral(s, i, "Something went wrong. Please try again.")
		return
	}
	respondEphemeral(s, i, capitalized(err.Error())+".")
}
