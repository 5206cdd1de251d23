package fixtures

import (
	"github.com/google/go-cmp/cmp"
	"runtime"
	"strings"
	"testing"
)

// CmpStr compares two strings and fails the test if they are not equal
func CmpStr(t *testing.T, expected, actual string) {
	t.Helper()
	_, file, line, _ := runtime.Caller(1)
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("\nTest %q failed at %s:%d\nDiff (-expected +actual):\n%s", t.Name(), file, line, diff)
	}
}

// CmpView compares a rendered view with the expected lines, ignoring trailing spaces from padded rows
func CmpView(t *testing.T, expected []string, view string) {
	t.Helper()
	_, file, line, _ := runtime.Caller(1)
	actual := ViewLines(view)
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("\nTest %q failed at %s:%d\nDiff (-expected +actual):\n%s", t.Name(), file, line, diff)
	}
}

// ViewLines splits view into lines without trailing spaces
func ViewLines(view string) []string {
	lines := strings.Split(view, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}
