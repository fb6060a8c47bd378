package wizard

import (
	"bufio"
	"strings"
)

// DefaultModalFieldLimit caps how many link inputs are requested at once
const DefaultModalFieldLimit = 5

// ParseLinks reads one key=value pair per line. Keys and values are
// trimmed; blank lines, # comments and lines without a key or value are
// ignored. Later lines win for repeated keys.
func ParseLinks(text string) map[string]string {
	links := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		links[key] = value
	}

	return links
}

// mergeLinks merges parsed lines and batched fields into d.Links and
// returns how many entries were written
func mergeLinks(d *Draft, ev SubmitLinks) int {
	if d.Links == nil {
		d.Links = make(map[string]string)
	}

	written := 0
	for k, v := range ParseLinks(ev.Text) {
		d.Links[k] = v
		written++
	}
	for k, v := range ev.Fields {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		d.Links[k] = v
		written++
	}
	return written
}

// NextLinkBatch returns up to limit selected categories to ask links for,
// those still missing a link first
func NextLinkBatch(d *Draft, limit int) []string {
	if limit <= 0 {
		limit = DefaultModalFieldLimit
	}

	var missing, present []string
	for _, k := range d.Categories {
		if d.Links[k] == "" {
			missing = append(missing, k)
		} else {
			present = append(present, k)
		}
	}

	batch := append(missing, present...)
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch
}
