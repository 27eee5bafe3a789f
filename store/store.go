// Package store defines the persistence interfaces and entities for qnascot:
// events (named Q&A sessions) and questions (submitted questions carrying vote
// tallies). Implementations are provided by the mongodb, datastoredb and
// inmemorydb packages as well as the leveldb-backed store in this package.
package store

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when an event or question referenced by an operation
// doesn't exist in the store
var ErrNotFound = errors.New("not found")

// QuestionStatus represents the lifecycle state of a question. A question starts
// as a draft on creation and becomes published once the slack message reference
// is attached to it
type QuestionStatus string

const (
	// QuestionStatusDraft is the state of a question created but not yet tied to a posted message
	QuestionStatusDraft QuestionStatus = "draft"
	// QuestionStatusPublished is the state of a question tied to a posted message
	QuestionStatusPublished QuestionStatus = "published"
)

// MessageRef identifies a posted slack message. Slack identifies a message by the
// combination of the channel it was posted to and its timestamp within that channel.
// The workspace id would technically be part of a fully unique identifier but a
// qnascot instance only ever lives in a single workspace
type MessageRef struct {
	ChannelID string `bson:"channel_id" json:"channelId"`
	Timestamp string `bson:"timestamp" json:"timestamp"`
}

// Event represents a named Q&A session (such as a town hall) that scopes a set
// of questions. Its id is user-chosen, unique and immutable once created
type Event struct {
	EventID   string    `bson:"event_id" json:"eventId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Question represents a single submitted question tied to an event along with
// its current vote tallies. The vote counters are only ever mutated via
// ApplyVoteDelta so that concurrent reactions on the same question don't lose
// updates. Counters can transiently go negative when a removal is processed
// ahead of the matching addition
type Question struct {
	ID         string         `bson:"_id,omitempty" json:"id"`
	EventID    string         `bson:"event_id" json:"eventId"`
	Text       string         `bson:"text" json:"text"`
	Upvotes    int            `bson:"upvotes" json:"upvotes"`
	Downvotes  int            `bson:"downvotes" json:"downvotes"`
	Status     QuestionStatus `bson:"status" json:"status"`
	MessageRef *MessageRef    `bson:"message_ref,omitempty" json:"messageRef,omitempty"`
	CreatedAt  time.Time      `bson:"created_at" json:"createdAt"`
}

// EventStorer is implemented by any value offering persistence of events
type EventStorer interface {
	// EventExists returns true if an event with the given id is present in the store
	EventExists(ctx context.Context, eventID string) (exists bool, err error)

	// CreateEvent inserts a new event record. Callers are expected to have checked
	// EventExists first. Implementations do a best-effort duplicate check but the
	// check-then-insert sequence isn't atomic across callers
	CreateEvent(ctx context.Context, eventID string) (err error)
}

// QuestionStorer is implemented by any value offering persistence of questions
type QuestionStorer interface {
	// CreateQuestion inserts a new draft question with zeroed vote counters and
	// returns its storage id for the follow-up AttachMessageRef call
	CreateQuestion(ctx context.Context, eventID string, text string) (questionID string, err error)

	// AttachMessageRef sets the slack message reference on a draft question and
	// marks it published. Returns ErrNotFound if the question id doesn't resolve
	AttachMessageRef(ctx context.Context, questionID string, ref MessageRef) (err error)

	// ApplyVoteDelta atomically increments the question's vote counters by the
	// given signed deltas and returns the post-update question. The
	// read-modify-return must be a single atomic operation so concurrent deltas
	// on the same question are never lost. Returns ErrNotFound if no published
	// question carries the given message reference
	ApplyVoteDelta(ctx context.Context, ref MessageRef, upDelta int, downDelta int) (q *Question, err error)
}

// Storer is implemented by any value offering the full qnascot persistence
// contract along with lifecycle management of the underlying connection
type Storer interface {
	EventStorer
	QuestionStorer
	io.Closer
}
