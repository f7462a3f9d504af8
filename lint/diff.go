package lint

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// changedHunks returns the 1-based line in a where each hunk of differences
// between a and b starts. A hunk that only inserts lines is reported at the
// line before which the insertion happens.
func changedHunks(a, b []string) []int {
	var hunks []int
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		hunks = append(hunks, op.I1+1)
	}
	return hunks
}
