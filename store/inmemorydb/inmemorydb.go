package inmemorydb

import (
	"context"
	"sync"
	"time"

	"github.com/alexandre-normand/qnascot/store"
	"github.com/google/uuid"
)

// InMemoryDB implements the qnascot Storer interface with plain in-memory maps.
// All operations take the instance mutex so the atomicity contract of
// ApplyVoteDelta holds even when flows interleave
type InMemoryDB struct {
	mutex     sync.Mutex
	events    map[string]store.Event
	questions map[string]*store.Question
	refIndex  map[store.MessageRef]string
}

// New returns a new empty InMemoryDB
func New() (imdb *InMemoryDB) {
	imdb = new(InMemoryDB)
	imdb.events = make(map[string]store.Event)
	imdb.questions = make(map[string]*store.Question)
	imdb.refIndex = make(map[store.MessageRef]string)

	return imdb
}

// EventExists returns true if an event record is present for the given id
func (imdb *InMemoryDB) EventExists(ctx context.Context, eventID string) (exists bool, err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	_, exists = imdb.events[eventID]
	return exists, nil
}

// CreateEvent inserts a new event record keyed by its id
func (imdb *InMemoryDB) CreateEvent(ctx context.Context, eventID string) (err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	imdb.events[eventID] = store.Event{EventID: eventID, CreatedAt: time.Now()}
	return nil
}

// CreateQuestion inserts a new draft question and returns its generated id
func (imdb *InMemoryDB) CreateQuestion(ctx context.Context, eventID string, text string) (questionID string, err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	q := store.Question{ID: uuid.New().String(), EventID: eventID, Text: text, Status: store.QuestionStatusDraft, CreatedAt: time.Now()}
	imdb.questions[q.ID] = &q

	return q.ID, nil
}

// AttachMessageRef sets the message reference on a draft question and marks it published
func (imdb *InMemoryDB) AttachMessageRef(ctx context.Context, questionID string, ref store.MessageRef) (err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	q, ok := imdb.questions[questionID]
	if !ok {
		return store.ErrNotFound
	}

	q.MessageRef = &ref
	q.Status = store.QuestionStatusPublished
	imdb.refIndex[ref] = questionID

	return nil
}

// ApplyVoteDelta increments the vote counters of the question carrying the given
// message reference and returns a copy of the updated question
func (imdb *InMemoryDB) ApplyVoteDelta(ctx context.Context, ref store.MessageRef, upDelta int, downDelta int) (q *store.Question, err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	questionID, ok := imdb.refIndex[ref]
	if !ok {
		return nil, store.ErrNotFound
	}

	stored := imdb.questions[questionID]
	stored.Upvotes = stored.Upvotes + upDelta
	stored.Downvotes = stored.Downvotes + downDelta

	updated := *stored
	return &updated, nil
}

// Close is a no-op since nothing is held beyond process memory
func (imdb *InMemoryDB) Close() (err error) {
	return nil
}
