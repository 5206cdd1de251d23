package util

import (
	"github.com/robinovitch61/vl/internal/fixtures"
	"testing"
)

func TestJoinWithEqualSpacing(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		items    []string
		expected string
	}{
		{"no items", 10, nil, ""},
		{"zero width", 0, []string{"a"}, ""},
		{"single item", 10, []string{"abc"}, "abc"},
		{"two items", 10, []string{"abc", "de"}, "abc     de"},
		{"three items uneven", 10, []string{"a", "b", "c"}, "a    b   c"},
		{"exact fit", 5, []string{"abc", "de"}, "abcde"},
		{"truncated", 5, []string{"abc", "defg"}, "abcde"},
		{"first item too wide", 2, []string{"abc", "de"}, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixtures.CmpStr(t, tt.expected, JoinWithEqualSpacing(tt.width, tt.items...))
		})
	}
}
