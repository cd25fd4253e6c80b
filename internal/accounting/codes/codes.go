// Package codes derives hierarchical dotted codes for account groups
// and accounts from parent and sibling state.
package codes

import (
	"strconv"
	"strings"
)

// ParseTrailingSegment returns the numeric value of the text after the
// last dot in code, or the whole code when it has no dot. Malformed or
// missing segments parse as 0; code generation tolerates partial data
// instead of rejecting it.
func ParseTrailingSegment(code string) int {
	segment := code
	if idx := strings.LastIndex(code, "."); idx >= 0 {
		segment = code[idx+1:]
	}
	n, err := strconv.Atoi(segment)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextSuffix returns one greater than the maximum trailing segment among
// the sibling codes, starting at 1 when there are none.
func NextSuffix(siblings []string) int {
	max := 0
	for _, code := range siblings {
		if n := ParseTrailingSegment(code); n > max {
			max = n
		}
	}
	return max + 1
}

// NextRoot returns the next root code: one greater than the maximum
// numeric value among existing root codes, or "1" when none exist.
func NextRoot(roots []string) string {
	return strconv.Itoa(NextSuffix(roots))
}

// Child composes a child code under parentCode with the given suffix.
func Child(parentCode string, suffix int) string {
	return parentCode + "." + strconv.Itoa(suffix)
}
