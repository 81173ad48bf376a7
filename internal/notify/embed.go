package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/lvlhead/scrimbot/internal/gamemode"
	"github.com/lvlhead/scrimbot/internal/scrim"
	"github.com/lvlhead/scrimbot/internal/storage"
	"github.com/lvlhead/scrimbot/internal/timeutil"
)

// Embed colors per session status.
const (
	colorOpen      = 0x2ECC71 // green
	colorFull      = 0xF1C40F // yellow
	colorCancelled = 0xE74C3C // red
)

func statusColor(status storage.SessionStatus) int {
	switch status {
	case storage.StatusOpen:
		return colorOpen
	case storage.StatusFull:
		return colorFull
	default:
		return colorCancelled
	}
}

func statusBanner(status storage.SessionStatus) string {
	switch status {
	case storage.StatusOpen:
		return "\U0001F7E2 Open"
	case storage.StatusFull:
		return "\U0001F7E1 Full"
	default:
		return "\U0001F534 Cancelled"
	}
}

// SessionEmbed renders the externally visible representation of one
// session: status banner, schedule, role-by-role fill state, committed
// team, and queue size.
func SessionEmbed(snap *scrim.Snapshot) *discordgo.MessageEmbed {
	session := snap.Session

	description := session.Description
	if description == "" {
		description = "No description provided."
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Scrim %s Session #%d", session.GameMode, session.ID),
		Description: description,
		Color:       statusColor(session.Status),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Scheduled",
				Value: fmt.Sprintf("%s (%s)",
					timeutil.DiscordTimestamp(session.ScheduledAt, "F"),
					timeutil.DiscordTimestamp(session.ScheduledAt, "R")),
				Inline: false,
			},
			{
				Name:   "Status",
				Value:  statusBanner(session.Status),
				Inline: true,
			},
			{
				Name:   "Queue",
				Value:  fmt.Sprintf("%d waiting", snap.QueueSize),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use the buttons below to join, leave, or toggle streaming.",
		},
	}

	if snap.StreamerSize > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Streaming",
			Value:  fmt.Sprintf("\U0001F4FA %d", snap.StreamerSize),
			Inline: true,
		})
	}

	if session.MaxRankDiff > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Rank Limit",
			Value:  fmt.Sprintf("Max difference: %d (advisory)", session.MaxRankDiff),
			Inline: true,
		})
	}

	var fill []string
	for _, role := range snap.Mode.Roles() {
		have := snap.RoleCounts[role]
		need := snap.Mode.Slots[role]
		mark := "❌"
		if have >= need {
			mark = "✅"
		}
		fill = append(fill, fmt.Sprintf("%s %s %s: %d/%d",
			mark, roleEmoji(role), roleTitle(role), have, need))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Roles",
		Value:  strings.Join(fill, "\n"),
		Inline: false,
	})

	if len(snap.Team) > 0 {
		var lines []string
		for _, slot := range snap.Team {
			lines = append(lines, teamLine(slot))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("✅ Accepted Players (%d/%d)", len(snap.Team), snap.Mode.TotalPlayers()),
			Value:  strings.Join(lines, "\n"),
			Inline: false,
		})
	}

	return embed
}

func teamLine(slot scrim.TeamSlot) string {
	p := slot.Participant
	name := fmt.Sprintf("<@%s>", p.UserID)
	if slot.Account != nil {
		name = fmt.Sprintf("<@%s> (`%s`)", p.UserID, slot.Account.Name)
	}
	streaming := ""
	if p.Streaming {
		streaming = " \U0001F4FA"
	}
	return fmt.Sprintf("%s %s - %s%s", roleEmoji(p.Role), roleTitle(p.Role), name, streaming)
}

// QueueEmbed renders the creator's dashboard: the waiting line with role
// preferences, streaming markers, and displayed ranks.
func QueueEmbed(snap *scrim.Snapshot) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Managing Session #%d", snap.Session.ID),
		Description: fmt.Sprintf("**Game Mode:** %s\n**Status:** %s",
			snap.Session.GameMode, statusBanner(snap.Session.Status)),
		Color: 0x3498DB,
	}

	if len(snap.Queue) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Queue",
			Value: "No players in queue.",
		})
		return embed
	}

	var lines []string
	for _, cand := range snap.Queue {
		lines = append(lines, queueLine(cand))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  fmt.Sprintf("Queue (%d players)", len(snap.Queue)),
		Value: strings.Join(lines, "\n"),
	})

	return embed
}

func queueLine(cand scrim.Candidate) string {
	streaming := ""
	if cand.Entry.Streaming {
		streaming = "\U0001F4FA "
	}
	who := fmt.Sprintf("<@%s>", cand.Entry.UserID)
	if cand.Account != nil {
		who = fmt.Sprintf("<@%s> (`%s`)", cand.Entry.UserID, cand.Account.Name)
	}
	line := fmt.Sprintf("%s%s - %s", streaming, who, cand.Entry.Roles)
	if cand.Ranked {
		line += fmt.Sprintf(" - %s", cand.Rank)
	}
	return line
}

// SessionListEmbed renders /view-sessions output.
func SessionListEmbed(sessions []*storage.Session, guildName string) *discordgo.MessageEmbed {
	title := "Active Scrim Sessions"
	if guildName != "" {
		title = fmt.Sprintf("%s in %s", title, guildName)
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: 0xF1C40F,
	}

	if len(sessions) == 0 {
		embed.Description = "No active sessions. Use `/create-session` to start one."
		return embed
	}

	const maxListed = 10
	for i, session := range sessions {
		if i == maxListed {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Showing %d of %d sessions.", maxListed, len(sessions)),
			}
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("Session #%d", session.ID),
			Value: fmt.Sprintf("%s %s • %s",
				statusBanner(session.Status),
				session.GameMode,
				timeutil.DiscordTimestamp(session.ScheduledAt, "R")),
			Inline: true,
		})
	}

	return embed
}

// ProfileEmbed renders a user's profile with their accounts and ranks.
func ProfileEmbed(user *storage.User, accounts []*storage.Account) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Profile: %s", user.Username),
		Color: 0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Timezone", Value: user.Timezone, Inline: true},
			{Name: "Preferred Roles", Value: roleNames(user.PreferredRoles.Roles()), Inline: true},
		},
	}

	if len(accounts) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Accounts",
			Value: "No accounts added. Use `/add-account`.",
		})
		return embed
	}

	for _, account := range accounts {
		name := account.Name
		if account.IsPrimary {
			name += " (Primary)"
		}
		var lines []string
		for _, role := range []gamemode.Role{gamemode.RoleTank, gamemode.RoleDPS, gamemode.RoleSupport} {
			if rk, ok := account.Ranks[role]; ok {
				lines = append(lines, fmt.Sprintf("%s %s: %s", roleEmoji(role), roleTitle(role), rk))
			}
		}
		value := "No ranks set"
		if len(lines) > 0 {
			value = strings.Join(lines, "\n")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: value,
		})
	}

	return embed
}

func roleNames(roles []gamemode.Role) string {
	if len(roles) == 0 {
		return "None set"
	}
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = fmt.Sprintf("%s %s", roleEmoji(role), roleTitle(role))
	}
	return strings.Join(parts, "\n")
}

func roleEmoji(role gamemode.Role) string {
	return gamemode.RoleEmojis[role]
}

// roleTitle capitalizes a role name for display.
func roleTitle(role gamemode.Role) string {
	s := string(role)
	if s == string(gamemode.RoleDPS) {
		return "DPS"
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
