package wizard

// Category is a claimable XP category
type Category struct {
	Key   string
	Label string
}

// Categories is the canonical category list, in display order
var Categories = []Category{
	{Key: "posted_once", Label: "Posted at least once"},
	{Key: "hunting_awakening", Label: "Hunting / Awakening scene"},
	{Key: "scene_with_another", Label: "Scene with another character"},
	{Key: "conflict", Label: "Conflict with another character"},
	{Key: "combat", Label: "Combat with another character"},
	{Key: "unmitigated_stain", Label: "Unmitigated stain"},
}

// IsCategory reports whether key is a canonical category key
func IsCategory(key string) bool {
	for _, c := range Categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// CategoryLabel returns the label for key, or key itself when unknown
func CategoryLabel(key string) string {
	for _, c := range Categories {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// CanonicalOrder returns the selected keys in canonical display order
func CanonicalOrder(selected []string) []string {
	set := make(map[string]bool, len(selected))
	for _, k := range selected {
		set[k] = true
	}

	out := make([]string, 0, len(selected))
	for _, c := range Categories {
		if set[c.Key] {
			out = append(out, c.Key)
		}
	}
	return out
}

// normalizeCategories keeps delivery order, dropping duplicates and unknown keys
func normalizeCategories(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !IsCategory(k) || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
