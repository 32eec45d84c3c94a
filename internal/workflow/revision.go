package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

const revisionMarker = "-REV"

// NextRevision appends or bumps the -REV<N> suffix of a sequence id.
// "Q-01" becomes "Q-01-REV1" and "Q-01-REV1" becomes "Q-01-REV2". A suffix
// that is not a number counts as revision 0.
func NextRevision(id string) string {
	base := id
	current := 0
	if idx := strings.Index(id, revisionMarker); idx >= 0 {
		base = id[:idx]
		suffix := id[idx+len(revisionMarker):]
		if end := strings.Index(suffix, revisionMarker); end >= 0 {
			suffix = suffix[:end]
		}
		if n, err := strconv.Atoi(leadingDigits(suffix)); err == nil {
			current = n
		}
	}
	return fmt.Sprintf("%s%s%d", base, revisionMarker, current+1)
}

// Revision returns the revision number encoded in id, 0 when there is none.
func Revision(id string) int {
	idx := strings.Index(id, revisionMarker)
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(leadingDigits(id[idx+len(revisionMarker):]))
	if err != nil {
		return 0
	}
	return n
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
