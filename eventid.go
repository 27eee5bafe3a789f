package qnascot

import (
	"regexp"
)

// Event ids are user-chosen slugs: lowercase ascii letters and digits, starting
// with a letter, with single interior dashes allowed (no leading, trailing or
// consecutive dashes)
var eventIDRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// IsValidEventID returns true if the candidate string is a well-formed event id
func IsValidEventID(candidate string) bool {
	return eventIDRegex.MatchString(candidate)
}
