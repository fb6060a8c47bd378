package evidence

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMessageLink(t *testing.T) {
	want := MessageLink{GuildID: "123", ChannelID: "456", MessageID: "789"}

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"discord", "https://discord.com/channels/123/456/789", true},
		{"canary", "https://canary.discord.com/channels/123/456/789", true},
		{"ptb legacy", "https://ptb.discordapp.com/channels/123/456/789", true},
		{"trailing slash and spaces", "  https://discord.com/channels/123/456/789/ ", true},
		{"other host", "https://example.com/x", false},
		{"incomplete", "https://discord.com/channels/123/456", false},
		{"too long", "https://discord.com/channels/123/456/789/1", false},
		{"non numeric", "https://discord.com/channels/123/abc/789", false},
		{"plain http", "http://discord.com/channels/123/456/789", false},
		{"not a url", "%%%", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMessageLink(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseMessageLink(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok {
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("link mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestParseMessageLink_DirectMessage(t *testing.T) {
	got, ok := ParseMessageLink("https://discord.com/channels/@me/456/789")
	if !ok {
		t.Fatal("expected DM link to parse")
	}
	if got.GuildID != "@me" {
		t.Errorf("GuildID = %q, want @me", got.GuildID)
	}
}

func TestMessageLinkURL(t *testing.T) {
	link, _ := ParseMessageLink("https://ptb.discordapp.com/channels/1/2/3")
	if got := link.URL(); got != "https://discord.com/channels/1/2/3" {
		t.Errorf("URL() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("combat", "https://discord.com/channels/1/2/3"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate("combat", "nope"); err == nil {
		t.Error("expected error")
	}
}
