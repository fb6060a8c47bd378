package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinks(t *testing.T) {
	text := `
# evidence
posted_once = https://discord.com/channels/1/2/3
combat=https://discord.com/channels/1/2/4

not a pair
=no-key
conflict=
  scene_with_another =  https://discord.com/channels/1/2/5  
`
	got := ParseLinks(text)

	assert.Equal(t, map[string]string{
		"posted_once":        "https://discord.com/channels/1/2/3",
		"combat":             "https://discord.com/channels/1/2/4",
		"scene_with_another": "https://discord.com/channels/1/2/5",
	}, got)
}

func TestParseLinks_LastWins(t *testing.T) {
	got := ParseLinks("combat=a\ncombat=b")
	assert.Equal(t, "b", got["combat"])
}

func TestParseLinks_ValueMayContainEquals(t *testing.T) {
	got := ParseLinks("combat=https://example.com/?a=b")
	assert.Equal(t, "https://example.com/?a=b", got["combat"])
}

func TestNextLinkBatch(t *testing.T) {
	d := &Draft{
		Categories: []string{"posted_once", "combat", "conflict", "hunting_awakening", "scene_with_another", "unmitigated_stain"},
		Links: map[string]string{
			"posted_once": "x",
			"conflict":    "y",
		},
	}

	assert.Equal(t,
		[]string{"combat", "hunting_awakening", "scene_with_another", "unmitigated_stain", "posted_once"},
		NextLinkBatch(d, 5),
	)
	assert.Equal(t, []string{"combat", "hunting_awakening"}, NextLinkBatch(d, 2))
}

func TestMergeLinks(t *testing.T) {
	d := &Draft{Links: map[string]string{"combat": "old"}}

	n := mergeLinks(d, SubmitLinks{
		Text:   "combat=new",
		Fields: map[string]string{"conflict": " c ", "posted_once": "  "},
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, map[string]string{"combat": "new", "conflict": "c"}, d.Links)
}
