// Package mocks contains a mock of the store package interfaces
package mocks

import (
	"context"

	"github.com/alexandre-normand/qnascot/store"
	"github.com/stretchr/testify/mock"
)

// Storer holds a mock implementing the store.Storer interface
type Storer struct {
	mock.Mock
}

// EventExists mocks an implementation of EventExists
func (ms *Storer) EventExists(ctx context.Context, eventID string) (exists bool, err error) {
	args := ms.Called(ctx, eventID)

	return args.Bool(0), args.Error(1)
}

// CreateEvent mocks an implementation of CreateEvent
func (ms *Storer) CreateEvent(ctx context.Context, eventID string) (err error) {
	args := ms.Called(ctx, eventID)

	return args.Error(0)
}

// CreateQuestion mocks an implementation of CreateQuestion
func (ms *Storer) CreateQuestion(ctx context.Context, eventID string, text string) (questionID string, err error) {
	args := ms.Called(ctx, eventID, text)

	return args.String(0), args.Error(1)
}

// AttachMessageRef mocks an implementation of AttachMessageRef
func (ms *Storer) AttachMessageRef(ctx context.Context, questionID string, ref store.MessageRef) (err error) {
	args := ms.Called(ctx, questionID, ref)

	return args.Error(0)
}

// ApplyVoteDelta mocks an implementation of ApplyVoteDelta
func (ms *Storer) ApplyVoteDelta(ctx context.Context, ref store.MessageRef, upDelta int, downDelta int) (q *store.Question, err error) {
	args := ms.Called(ctx, ref, upDelta, downDelta)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*store.Question), args.Error(1)
}

// Close mocks an implementation of Close
func (ms *Storer) Close() (err error) {
	args := ms.Called()

	return args.Error(0)
}
