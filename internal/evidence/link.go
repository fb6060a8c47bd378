// Package evidence validates the chat message links attached to XP claims.
package evidence

import (
	"fmt"
	"net/url"
	"strings"
)

// MessageLink identifies a single chat message
type MessageLink struct {
	GuildID   string `json:"guildId"`
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
}

// URL returns the canonical link for the message
func (l MessageLink) URL() string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", l.GuildID, l.ChannelID, l.MessageID)
}

var messageHosts = map[string]bool{
	"discord.com":           true,
	"discordapp.com":        true,
	"canary.discord.com":    true,
	"canary.discordapp.com": true,
	"ptb.discord.com":       true,
	"ptb.discordapp.com":    true,
}

// ParseMessageLink parses https://discord.com/channels/<guild>/<channel>/<message>
// and the canary/ptb/discordapp variants. Direct messages use "@me" as guild.
func ParseMessageLink(raw string) (MessageLink, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "https" {
		return MessageLink{}, false
	}
	if !messageHosts[strings.ToLower(u.Hostname())] {
		return MessageLink{}, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "channels" {
		return MessageLink{}, false
	}

	link := MessageLink{GuildID: parts[1], ChannelID: parts[2], MessageID: parts[3]}
	if link.GuildID != "@me" && !isSnowflake(link.GuildID) {
		return MessageLink{}, false
	}
	if !isSnowflake(link.ChannelID) || !isSnowflake(link.MessageID) {
		return MessageLink{}, false
	}
	return link, true
}

// Validate returns an error naming key when raw is not a message link
func Validate(key, raw string) error {
	if _, ok := ParseMessageLink(raw); !ok {
		return fmt.Errorf("%s: not a message link: %q", key, raw)
	}
	return nil
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
