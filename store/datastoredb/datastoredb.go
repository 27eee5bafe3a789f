package datastoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/alexandre-normand/qnascot/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

const (
	eventsKind    = "events"
	questionsKind = "questions"
)

// DatastoreDB implements the qnascot Storer interface backed by the Google
// Cloud Datastore
type DatastoreDB struct {
	client *datastore.Client
}

// eventEntity is the datastore representation of a store.Event
type eventEntity struct {
	EventID   string
	CreatedAt time.Time
}

// questionEntity is the datastore representation of a store.Question. The
// message reference is kept as flat indexed fields so the reconciliation query
// by channel and timestamp works without composite entity support
type questionEntity struct {
	EventID      string
	Text         string `datastore:",noindex"`
	Upvotes      int    `datastore:",noindex"`
	Downvotes    int    `datastore:",noindex"`
	Status       string
	RefChannelID string
	RefTimestamp string
	CreatedAt    time.Time
}

// New returns a new instance of DatastoreDB for the given gcloud project id.
// Client options are most useful for providing credentials, either pre-parsed or
// as a path to a json credentials file. Connectivity is validated with a
// lightweight read before returning
func New(ctx context.Context, gcloudProjectID string, gcloudClientOpts ...option.ClientOption) (dsdb *DatastoreDB, err error) {
	client, err := datastore.NewClient(ctx, gcloudProjectID, gcloudClientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to create datastore client for project [%s]", gcloudProjectID))
	}

	dsdb = new(DatastoreDB)
	dsdb.client = client

	if err = dsdb.testDB(ctx); err != nil {
		dsdb.Close()
		return nil, err
	}

	return dsdb, nil
}

// testDB makes a lightweight call to the datastore to validate connectivity and credentials
func (dsdb *DatastoreDB) testDB(ctx context.Context) (err error) {
	_, err = dsdb.EventExists(ctx, "testConnectivity")
	return err
}

// EventExists returns true if an event entity is present for the given id
func (dsdb *DatastoreDB) EventExists(ctx context.Context, eventID string) (exists bool, err error) {
	var e eventEntity
	err = dsdb.client.Get(ctx, eventKey(eventID), &e)
	if err == datastore.ErrNoSuchEntity {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("failed to check existence of event [%s]", eventID))
	}

	return true, nil
}

// CreateEvent inserts a new event entity keyed by its id
func (dsdb *DatastoreDB) CreateEvent(ctx context.Context, eventID string) (err error) {
	_, err = dsdb.client.Put(ctx, eventKey(eventID), &eventEntity{EventID: eventID, CreatedAt: time.Now()})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to insert event [%s]", eventID))
	}

	return nil
}

// CreateQuestion inserts a new draft question entity and returns its generated id
func (dsdb *DatastoreDB) CreateQuestion(ctx context.Context, eventID string, text string) (questionID string, err error) {
	questionID = uuid.New().String()

	e := questionEntity{EventID: eventID, Text: text, Status: string(store.QuestionStatusDraft), CreatedAt: time.Now()}
	_, err = dsdb.client.Put(ctx, questionKey(questionID), &e)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("failed to insert question for event [%s]", eventID))
	}

	return questionID, nil
}

// AttachMessageRef sets the message reference on a draft question and marks it
// published, inside a transaction so a racing vote delta can't be overwritten
func (dsdb *DatastoreDB) AttachMessageRef(ctx context.Context, questionID string, ref store.MessageRef) (err error) {
	k := questionKey(questionID)

	_, err = dsdb.client.RunInTransaction(ctx, func(tx *datastore.Transaction) (txErr error) {
		var e questionEntity
		if txErr = tx.Get(k, &e); txErr != nil {
			return txErr
		}

		e.RefChannelID = ref.ChannelID
		e.RefTimestamp = ref.Timestamp
		e.Status = string(store.QuestionStatusPublished)

		_, txErr = tx.Put(k, &e)
		return txErr
	})

	if err == datastore.ErrNoSuchEntity {
		return store.ErrNotFound
	} else if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to attach message ref to question [%s]", questionID))
	}

	return nil
}

// ApplyVoteDelta increments the vote counters of the published question carrying
// the given message reference and returns the post-update question. The key is
// resolved with a keys-only query and the increment runs in a transaction so
// concurrent deltas on the same question are never lost
func (dsdb *DatastoreDB) ApplyVoteDelta(ctx context.Context, ref store.MessageRef, upDelta int, downDelta int) (q *store.Question, err error) {
	keys, err := dsdb.client.GetAll(ctx, refQuery(ref), nil)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to resolve question for message [%s/%s]", ref.ChannelID, ref.Timestamp))
	}

	if len(keys) == 0 {
		return nil, store.ErrNotFound
	}

	k := keys[0]

	var updated questionEntity
	_, err = dsdb.client.RunInTransaction(ctx, func(tx *datastore.Transaction) (txErr error) {
		if txErr = tx.Get(k, &updated); txErr != nil {
			return txErr
		}

		updated.Upvotes = updated.Upvotes + upDelta
		updated.Downvotes = updated.Downvotes + downDelta

		_, txErr = tx.Put(k, &updated)
		return txErr
	})

	if err == datastore.ErrNoSuchEntity {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to apply vote delta on message [%s/%s]", ref.ChannelID, ref.Timestamp))
	}

	return toQuestion(k.Name, updated), nil
}

// Close closes the underlying datastore client
func (dsdb *DatastoreDB) Close() (err error) {
	return dsdb.client.Close()
}

// eventKey returns the datastore key of an event entity
func eventKey(eventID string) (k *datastore.Key) {
	return datastore.NameKey(eventsKind, eventID, nil)
}

// questionKey returns the datastore key of a question entity
func questionKey(questionID string) (k *datastore.Key) {
	return datastore.NameKey(questionsKind, questionID, nil)
}

// refQuery returns the keys-only query resolving the published question carrying
// the given message reference
func refQuery(ref store.MessageRef) (q *datastore.Query) {
	return datastore.NewQuery(questionsKind).
		FilterField("RefChannelID", "=", ref.ChannelID).
		FilterField("RefTimestamp", "=", ref.Timestamp).
		FilterField("Status", "=", string(store.QuestionStatusPublished)).
		KeysOnly().
		Limit(1)
}

// toQuestion converts a question entity back to the store model
func toQuestion(questionID string, e questionEntity) (q *store.Question) {
	q = new(store.Question)
	q.ID = questionID
	q.EventID = e.EventID
	q.Text = e.Text
	q.Upvotes = e.Upvotes
	q.Downvotes = e.Downvotes
	q.Status = store.QuestionStatus(e.Status)
	q.CreatedAt = e.CreatedAt

	if e.RefChannelID != "" || e.RefTimestamp != "" {
		q.MessageRef = &store.MessageRef{ChannelID: e.RefChannelID, Timestamp: e.RefTimestamp}
	}

	return q
}
