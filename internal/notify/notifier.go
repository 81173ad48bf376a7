// Package notify keeps the Discord message bound to a session in step
// with its queue and team records. Refreshes are best effort: the
// mutation that triggered one has already committed, so a display
// failure is logged and swallowed.
package notify

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/lvlhead/scrimbot/internal/scrim"
)

// Snapshotter provides a consistent read-only view of a session.
type Snapshotter interface {
	Snapshot(sessionID int64) (*scrim.Snapshot, error)
}

// Messenger edits the externally displayed message. *discordgo.Session
// satisfies it through a small adapter in the bot package.
type Messenger interface {
	EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error
}

// Notifier regenerates session displays after mutations.
type Notifier struct {
	snapshots Snapshotter
	messenger Messenger
}

// New creates a Notifier.
func New(snapshots Snapshotter, messenger Messenger) *Notifier {
	return &Notifier{snapshots: snapshots, messenger: messenger}
}

// Resync rebuilds the session embed from current records and pushes it to
// the bound message. Sessions without a bound message are skipped. Never
// returns: display failures must not surface to the triggering operation.
func (n *Notifier) Resync(sessionID int64) {
	snap, err := n.snapshots.Snapshot(sessionID)
	if err != nil {
		slog.Error("Resync failed to snapshot session", "session", sessionID, "error", err)
		return
	}
	if snap.Session.MessageID == "" {
		return
	}

	embed := SessionEmbed(snap)
	if err := n.messenger.EditEmbed(snap.Session.ChannelID, snap.Session.MessageID, embed); err != nil {
		slog.Warn("Failed to update session message",
			"session", sessionID,
			"channel", snap.Session.ChannelID,
			"message", snap.Session.MessageID,
			"error", err)
	}
}
