package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTrailingSegment(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"2.3", 3},
		{"2.3.14", 14},
		{"7", 7},
		{"", 0},
		{"2.", 0},
		{"2.x", 0},
		{"abc", 0},
		{"2.-1", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseTrailingSegment(tc.code), "code %q", tc.code)
	}
}

func TestNextSuffix(t *testing.T) {
	assert.Equal(t, 1, NextSuffix(nil))
	assert.Equal(t, 1, NextSuffix([]string{}))
	assert.Equal(t, 3, NextSuffix([]string{"2.1", "2.2"}))
	assert.Equal(t, 6, NextSuffix([]string{"2.5", "2.1"}))
	// Malformed siblings count as 0, never abort generation.
	assert.Equal(t, 2, NextSuffix([]string{"2.junk", "2.1"}))
	assert.Equal(t, 1, NextSuffix([]string{"2.junk"}))
}

func TestNextRoot(t *testing.T) {
	assert.Equal(t, "1", NextRoot(nil))
	assert.Equal(t, "4", NextRoot([]string{"1", "3", "2"}))
	// Deletions do not renumber: holes are skipped forward.
	assert.Equal(t, "6", NextRoot([]string{"1", "5"}))
}

func TestChild(t *testing.T) {
	assert.Equal(t, "2.1", Child("2", 1))
	assert.Equal(t, "2.3.4", Child("2.3", 4))
}
