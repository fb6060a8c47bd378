package wizard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 25, 1},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{60, 25, 3},
		{10, 0, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, PageCount(tt.n, tt.size))
		})
	}
}

func TestClampPage_AlwaysInRange(t *testing.T) {
	for n := 0; n <= 80; n += 7 {
		for page := -5; page <= 6; page++ {
			got := ClampPage(page, n, 25)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, PageCount(n, 25)-1, "n=%d page=%d", n, page)
		}
	}
}

func TestPageSlice(t *testing.T) {
	values := names(60)

	assert.Equal(t, values[:25], PageSlice(values, 0, 25))
	assert.Equal(t, values[50:], PageSlice(values, 2, 25))
	assert.Equal(t, values[50:], PageSlice(values, 9, 25))
	assert.Empty(t, PageSlice(nil, 0, 25))
}

func TestPageForValue(t *testing.T) {
	values := names(60)

	assert.Equal(t, 0, PageForValue(values, "c00", 25))
	assert.Equal(t, 1, PageForValue(values, "c25", 25))
	assert.Equal(t, 2, PageForValue(values, "c59", 25))
	assert.Equal(t, 0, PageForValue(values, "missing", 25))
	assert.Equal(t, 0, PageForValue(values, "", 25))
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("c%02d", i)
	}
	return out
}
