package qnascot

import (
	"context"

	"github.com/alexandre-normand/qnascot/store"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// ReactionEventKind distinguishes a reaction being added from one being removed
type ReactionEventKind string

const (
	// ReactionAdded is the kind of event delivered when a reaction is added to a message
	ReactionAdded ReactionEventKind = "reaction_added"
	// ReactionRemoved is the kind of event delivered when a reaction is removed from a message
	ReactionRemoved ReactionEventKind = "reaction_removed"
)

// ReactionEvent holds the inbound reaction event fields the engine needs: the
// event kind, the emoji name (without colons), the user id who reacted, the
// user id of the reacted-to message's author and the message's channel and
// timestamp
type ReactionEvent struct {
	Kind      ReactionEventKind
	Reaction  string
	User      string
	ItemUser  string
	ChannelID string
	Timestamp string
}

// HandleReactionEvent reconciles one reaction added/removed event into the
// persisted vote tallies and re-renders the question's message with the updated
// counts. The whole flow is fail-soft: failures are logged and the event is
// dropped so one malformed or late-arriving reaction never blocks the next one.
// Vote deltas commute so events processed out of order still converge to the
// correct tallies
func (q *Qnascot) HandleReactionEvent(ctx context.Context, ev ReactionEvent) {
	q.countReactionSeen(ctx)

	// Reactions on messages the bot didn't author can't be question votes, and
	// the bot's own reactions don't count as votes either
	if ev.ItemUser != q.selfID || ev.User == q.selfID {
		q.countReactionResult(ctx, reactionIgnored)
		return
	}

	upDelta, downDelta, ok := q.voteDelta(ev)
	if !ok {
		q.log.Debugf("Ignoring reaction [%s] on message [%s/%s], not a vote\n", ev.Reaction, ev.ChannelID, ev.Timestamp)
		q.countReactionResult(ctx, reactionIgnored)
		return
	}

	ref := store.MessageRef{ChannelID: ev.ChannelID, Timestamp: ev.Timestamp}

	var question *store.Question
	var err error
	d := measure(func() {
		question, err = q.questionStore.ApplyVoteDelta(ctx, ref, upDelta, downDelta)
	})
	q.recordVoteApplyLatency(ctx, d)

	if errors.Cause(err) == store.ErrNotFound {
		// Either not a question message or its attach step hasn't landed yet
		q.log.Debugf("No question found for message [%s/%s], skipping reaction [%s]\n", ev.ChannelID, ev.Timestamp, ev.Reaction)
		q.countReactionResult(ctx, reactionUnresolved)
		return
	} else if err != nil {
		q.log.Printf("Dropping reaction event [kind=%s, reaction=%s, message=%s/%s]: %s\n", ev.Kind, ev.Reaction, ev.ChannelID, ev.Timestamp, err.Error())
		q.countReactionResult(ctx, reactionDropped)
		return
	}

	_, _, _, err = q.driver.UpdateMessage(ev.ChannelID, ev.Timestamp, slack.MsgOptionText(renderQuestion(question), false), slack.MsgOptionAsUser(true))
	if err != nil {
		q.log.Printf("Failed to re-render message [%s/%s] after reaction [kind=%s, reaction=%s]: %s\n", ev.ChannelID, ev.Timestamp, ev.Kind, ev.Reaction, err.Error())
		q.countReactionResult(ctx, reactionDropped)
		return
	}

	q.log.Debugf("Applied vote delta [%d/%d] on question [%s], tallies now [%d/%d]\n", upDelta, downDelta, question.ID, question.Upvotes, question.Downvotes)
	q.countReactionResult(ctx, reactionApplied)
}

// voteDelta maps a reaction event to a signed delta pair on the up/down vote
// counters. Reactions outside the configured vote vocabularies map to no delta
func (q *Qnascot) voteDelta(ev ReactionEvent) (upDelta int, downDelta int, ok bool) {
	switch {
	case q.upvoteReactions[ev.Reaction]:
		upDelta = 1
	case q.downvoteReactions[ev.Reaction]:
		downDelta = 1
	default:
		return 0, 0, false
	}

	switch ev.Kind {
	case ReactionAdded:
	case ReactionRemoved:
		upDelta, downDelta = -upDelta, -downDelta
	default:
		return 0, 0, false
	}

	return upDelta, downDelta, true
}
