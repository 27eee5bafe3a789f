package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

const (
	eventKeyPrefix    = "event:"
	questionKeyPrefix = "question:"
	msgRefKeyPrefix   = "msgref:"
)

// LevelDB is a local single-node Storer backed by a leveldb database. It is
// meant for development and single-instance deployments where no external
// document store is available. Vote increments are made atomic with a
// process-local mutex around the read-modify-write which is sufficient given
// that a leveldb database can only be open in one process at a time
type LevelDB struct {
	Name     string
	database *leveldb.DB
	mutex    sync.Mutex
}

// NewLevelDB instantiates and opens a new LevelDB instance backed by a leveldb
// database. If the leveldb database doesn't exist, one is created
func NewLevelDB(name string, storagePath string) (ldb *LevelDB, err error) {
	// Expand '~' as the full home directory path if appropriate
	path, err := homedir.Expand(storagePath)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(path, name)
	db, err := leveldb.OpenFile(fullPath, nil)

	if _, ok := err.(*leveldberrors.ErrCorrupted); ok {
		return nil, errors.Wrap(err, fmt.Sprintf("leveldb corrupted. Consider deleting [%s] and restarting if you don't mind losing data", fullPath))
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to open file with path [%s]", fullPath))
	}

	return &LevelDB{Name: name, database: db}, nil
}

// Close closes the LevelDB
func (ldb *LevelDB) Close() (err error) {
	return ldb.database.Close()
}

// EventExists returns true if an event record is present for the given id
func (ldb *LevelDB) EventExists(ctx context.Context, eventID string) (exists bool, err error) {
	return ldb.database.Has([]byte(eventKeyPrefix+eventID), nil)
}

// CreateEvent inserts a new event record keyed by its id
func (ldb *LevelDB) CreateEvent(ctx context.Context, eventID string) (err error) {
	e := Event{EventID: eventID, CreatedAt: time.Now()}

	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to encode event [%s]", eventID))
	}

	return ldb.database.Put([]byte(eventKeyPrefix+eventID), raw, nil)
}

// CreateQuestion inserts a new draft question and returns its generated id
func (ldb *LevelDB) CreateQuestion(ctx context.Context, eventID string, text string) (questionID string, err error) {
	q := Question{ID: uuid.New().String(), EventID: eventID, Text: text, Status: QuestionStatusDraft, CreatedAt: time.Now()}

	err = ldb.putQuestion(q)
	if err != nil {
		return "", err
	}

	return q.ID, nil
}

// AttachMessageRef sets the message reference on a draft question, marks it
// published and indexes it by its message reference for reaction lookups
func (ldb *LevelDB) AttachMessageRef(ctx context.Context, questionID string, ref MessageRef) (err error) {
	ldb.mutex.Lock()
	defer ldb.mutex.Unlock()

	q, err := ldb.getQuestion(questionID)
	if err != nil {
		return err
	}

	q.MessageRef = &ref
	q.Status = QuestionStatusPublished

	err = ldb.putQuestion(*q)
	if err != nil {
		return err
	}

	return ldb.database.Put([]byte(msgRefKey(ref)), []byte(questionID), nil)
}

// ApplyVoteDelta increments the vote counters of the question indexed by the
// given message reference and returns the updated question. The mutex makes the
// read-modify-write atomic within the owning process
func (ldb *LevelDB) ApplyVoteDelta(ctx context.Context, ref MessageRef, upDelta int, downDelta int) (q *Question, err error) {
	ldb.mutex.Lock()
	defer ldb.mutex.Unlock()

	rawID, err := ldb.database.Get([]byte(msgRefKey(ref)), nil)
	if err == leveldberrors.ErrNotFound {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	q, err = ldb.getQuestion(string(rawID))
	if err != nil {
		return nil, err
	}

	q.Upvotes = q.Upvotes + upDelta
	q.Downvotes = q.Downvotes + downDelta

	err = ldb.putQuestion(*q)
	if err != nil {
		return nil, err
	}

	return q, nil
}

// getQuestion loads and decodes the question stored under the given id
func (ldb *LevelDB) getQuestion(questionID string) (q *Question, err error) {
	raw, err := ldb.database.Get([]byte(questionKeyPrefix+questionID), nil)
	if err == leveldberrors.ErrNotFound {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	q = new(Question)
	err = json.Unmarshal(raw, q)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to decode question [%s]", questionID))
	}

	return q, nil
}

// putQuestion encodes and stores the question under its id
func (ldb *LevelDB) putQuestion(q Question) (err error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to encode question [%s]", q.ID))
	}

	return ldb.database.Put([]byte(questionKeyPrefix+q.ID), raw, nil)
}

// msgRefKey returns the index key tying a message reference to a question id
func msgRefKey(ref MessageRef) (key string) {
	return msgRefKeyPrefix + ref.ChannelID + ":" + ref.Timestamp
}
