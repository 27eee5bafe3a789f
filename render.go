package qnascot

import (
	"fmt"

	"github.com/alexandre-normand/qnascot/store"
)

// renderQuestion formats the slack message text representing a question: the
// event id, the question text and the current vote tallies. Reaction
// reconciliation re-renders the same template with updated counts so the posted
// message always reflects the persisted tallies
func renderQuestion(q *store.Question) (text string) {
	return fmt.Sprintf("*%s*: %s\n:thumbsup: %d | :thumbsdown: %d", q.EventID, q.Text, q.Upvotes, q.Downvotes)
}
