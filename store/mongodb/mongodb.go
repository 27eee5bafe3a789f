package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/alexandre-normand/qnascot/store"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	eventsCollection    = "events"
	questionsCollection = "questions"
)

// MongoDB implements the qnascot Storer interface backed by a MongoDB database
type MongoDB struct {
	client    *mongo.Client
	events    *mongo.Collection
	questions *mongo.Collection
}

// New returns a new instance of MongoDB connected to the deployment at the given
// URI, using the two expected collections of the given database. Connectivity is
// validated with a ping before returning
func New(ctx context.Context, uri string, database string) (mdb *MongoDB, err error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to connect to mongodb at [%s]", uri))
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, fmt.Sprintf("failed to ping mongodb at [%s]", uri))
	}

	mdb = new(MongoDB)
	mdb.client = client
	mdb.events = client.Database(database).Collection(eventsCollection)
	mdb.questions = client.Database(database).Collection(questionsCollection)

	return mdb, nil
}

// EventExists returns true if an event document is present for the given id
func (mdb *MongoDB) EventExists(ctx context.Context, eventID string) (exists bool, err error) {
	count, err := mdb.events.CountDocuments(ctx, eventFilter(eventID))
	if err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("failed to check existence of event [%s]", eventID))
	}

	return count > 0, nil
}

// CreateEvent inserts a new event document keyed by its id
func (mdb *MongoDB) CreateEvent(ctx context.Context, eventID string) (err error) {
	_, err = mdb.events.InsertOne(ctx, store.Event{EventID: eventID, CreatedAt: time.Now()})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to insert event [%s]", eventID))
	}

	return nil
}

// CreateQuestion inserts a new draft question document and returns its generated id
func (mdb *MongoDB) CreateQuestion(ctx context.Context, eventID string, text string) (questionID string, err error) {
	q := store.Question{ID: bson.NewObjectID().Hex(), EventID: eventID, Text: text, Status: store.QuestionStatusDraft, CreatedAt: time.Now()}

	_, err = mdb.questions.InsertOne(ctx, q)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("failed to insert question for event [%s]", eventID))
	}

	return q.ID, nil
}

// AttachMessageRef sets the message reference on a draft question and marks it published
func (mdb *MongoDB) AttachMessageRef(ctx context.Context, questionID string, ref store.MessageRef) (err error) {
	res, err := mdb.questions.UpdateOne(ctx, bson.M{"_id": questionID}, attachUpdate(ref))
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to attach message ref to question [%s]", questionID))
	}

	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}

	return nil
}

// ApplyVoteDelta increments the vote counters of the published question carrying
// the given message reference and returns the post-update question. The single
// FindOneAndUpdate with $inc makes the read-modify-return atomic on the server
// side so concurrent deltas on the same question are never lost
func (mdb *MongoDB) ApplyVoteDelta(ctx context.Context, ref store.MessageRef, upDelta int, downDelta int) (q *store.Question, err error) {
	res := mdb.questions.FindOneAndUpdate(ctx, refFilter(ref), voteUpdate(upDelta, downDelta),
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	q = new(store.Question)
	err = res.Decode(q)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to apply vote delta on message [%s/%s]", ref.ChannelID, ref.Timestamp))
	}

	return q, nil
}

// Close disconnects the underlying mongodb client
func (mdb *MongoDB) Close() (err error) {
	return mdb.client.Disconnect(context.Background())
}

// eventFilter returns the filter matching an event document by its id
func eventFilter(eventID string) (filter bson.M) {
	return bson.M{"event_id": eventID}
}

// refFilter returns the filter matching the published question carrying the given message reference
func refFilter(ref store.MessageRef) (filter bson.M) {
	return bson.M{
		"message_ref.channel_id": ref.ChannelID,
		"message_ref.timestamp":  ref.Timestamp,
		"status":                 store.QuestionStatusPublished,
	}
}

// attachUpdate returns the update setting the message reference and flipping the status to published
func attachUpdate(ref store.MessageRef) (update bson.M) {
	return bson.M{"$set": bson.M{"message_ref": ref, "status": store.QuestionStatusPublished}}
}

// voteUpdate returns the update incrementing both vote counters by the given signed deltas
func voteUpdate(upDelta int, downDelta int) (update bson.M) {
	return bson.M{"$inc": bson.M{"upvotes": upDelta, "downvotes": downDelta}}
}
