package wizard

// DefaultPageSize is the most options a chat select menu can hold
const DefaultPageSize = 25

// PageCount returns max(1, ceil(n/size))
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (n + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage clamps page into [0, PageCount(n, size)-1]
func ClampPage(page, n, size int) int {
	maxPage := PageCount(n, size) - 1
	if page > maxPage {
		page = maxPage
	}
	if page < 0 {
		page = 0
	}
	return page
}

// PageSlice returns the values shown on page
func PageSlice(values []string, page, size int) []string {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, len(values), size)
	start := page * size
	if start >= len(values) {
		return nil
	}
	end := start + size
	if end > len(values) {
		end = len(values)
	}
	return values[start:end]
}

// PageForValue returns the page holding value, or 0 when absent
func PageForValue(values []string, value string, size int) int {
	if value == "" {
		return 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	for i, v := range values {
		if v == value {
			return i / size
		}
	}
	return 0
}
