package qnascot_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/alexandre-normand/qnascot"
	"github.com/alexandre-normand/qnascot/config"
	"github.com/alexandre-normand/qnascot/store"
	"github.com/alexandre-normand/qnascot/store/mocks"
	"github.com/alexandre-normand/qnascot/test/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBot(t *testing.T, storer store.Storer, captor *capture.ChatDriverCaptor) (bot *qnascot.Qnascot) {
	bot, err := qnascot.New("qnascot", config.NewViperWithDefaults(), storer, qnascot.OptionChatDriver(captor), qnascot.OptionSelfID("UBOT"))
	require.NoError(t, err)

	return bot
}

func TestCreateEventCommand(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(false, nil)
	storer.On("CreateEvent", mock.Anything, "townhall-q1").Return(nil)

	bot := newTestBot(t, storer, capture.NewChatDriver())

	r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "create townhall-q1", ChannelID: "C999"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, r.Status)
	assert.Contains(t, r.Text, "townhall-q1")
	storer.AssertExpectations(t)
}

func TestCreateEventAlreadyExists(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(true, nil)

	bot := newTestBot(t, storer, capture.NewChatDriver())

	r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "create townhall-q1", ChannelID: "C999"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Text, "already exists")
	storer.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestCreateEventWithInvalidIDDoesNotTouchStore(t *testing.T) {
	for _, text := range []string{"create Townhall", "create -townhall", "create town--hall", "create"} {
		storer := new(mocks.Storer)
		bot := newTestBot(t, storer, capture.NewChatDriver())

		r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: text, ChannelID: "C999"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, r.Status, "command [%s]", text)
		assert.Contains(t, r.Text, "Cannot parse", "command [%s]", text)
		storer.AssertNotCalled(t, "EventExists", mock.Anything, mock.Anything)
	}
}

func TestEmptyCommandCannotBeParsed(t *testing.T) {
	storer := new(mocks.Storer)
	bot := newTestBot(t, storer, capture.NewChatDriver())

	r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "   ", ChannelID: "C999"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Text, "Cannot parse")
}

func TestAddQuestion(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(true, nil)
	storer.On("CreateQuestion", mock.Anything, "townhall-q1", "What is our roadmap?").Return("q1", nil)
	storer.On("AttachMessageRef", mock.Anything, "q1", store.MessageRef{ChannelID: "C999", Timestamp: "1.000000"}).Return(nil)

	captor := capture.NewChatDriver()
	bot := newTestBot(t, storer, captor)

	r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1 What is our roadmap?", ChannelID: "C999"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, r.Status)
	assert.Contains(t, r.Text, "townhall-q1")

	require.Len(t, captor.SentMsgs, 1)
	assert.Equal(t, "C999", captor.SentMsgs[0].ChannelID)
	assert.Contains(t, captor.SentMsgs[0].Text, "What is our roadmap?")
	assert.Contains(t, captor.SentMsgs[0].Text, "townhall-q1")

	storer.AssertExpectations(t)
}

func TestAddQuestionToUnknownEvent(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(false, nil)

	captor := capture.NewChatDriver()
	bot := newTestBot(t, storer, captor)

	r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1 What is our roadmap?", ChannelID: "C999"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Text, "does not yet exist")
	assert.Empty(t, captor.SentMsgs)
	storer.AssertNotCalled(t, "CreateQuestion", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddQuestionWithoutTextCannotBeParsed(t *testing.T) {
	storer := new(mocks.Storer)
	bot := newTestBot(t, storer, capture.NewChatDriver())

	r, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1", ChannelID: "C999"})
	require.NoError(t, err)

	assert.Contains(t, r.Text, "Cannot parse")
	storer.AssertNotCalled(t, "EventExists", mock.Anything, mock.Anything)
}

func TestAddQuestionStoreFailurePropagates(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(true, nil)
	storer.On("CreateQuestion", mock.Anything, "townhall-q1", "What is our roadmap?").Return("", fmt.Errorf("document store unavailable"))

	bot := newTestBot(t, storer, capture.NewChatDriver())

	_, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1 What is our roadmap?", ChannelID: "C999"})
	assert.Error(t, err)
}

func TestAddQuestionPublishFailurePropagates(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(true, nil)
	storer.On("CreateQuestion", mock.Anything, "townhall-q1", "What is our roadmap?").Return("q1", nil)

	captor := capture.NewChatDriver()
	captor.SendErr = fmt.Errorf("slack is down")
	bot := newTestBot(t, storer, captor)

	_, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1 What is our roadmap?", ChannelID: "C999"})
	assert.Error(t, err)
	storer.AssertNotCalled(t, "AttachMessageRef", mock.Anything, mock.Anything, mock.Anything)
}

// Event existence is cached on a positive result so repeat submissions for the
// same event skip the store check
func TestEventExistenceCachedAcrossCommands(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("EventExists", mock.Anything, "townhall-q1").Return(true, nil).Once()
	storer.On("CreateQuestion", mock.Anything, "townhall-q1", mock.Anything).Return("q1", nil)
	storer.On("AttachMessageRef", mock.Anything, "q1", mock.Anything).Return(nil)

	bot := newTestBot(t, storer, capture.NewChatDriver())

	_, err := bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1 First question?", ChannelID: "C999"})
	require.NoError(t, err)

	_, err = bot.HandleCommand(context.Background(), qnascot.Command{Text: "townhall-q1 Second question?", ChannelID: "C999"})
	require.NoError(t, err)

	storer.AssertNumberOfCalls(t, "EventExists", 1)
}
