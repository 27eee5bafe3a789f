package qnascot_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexandre-normand/qnascot"
	"github.com/alexandre-normand/qnascot/store"
	"github.com/alexandre-normand/qnascot/store/inmemorydb"
	"github.com/alexandre-normand/qnascot/store/mocks"
	"github.com/alexandre-normand/qnascot/test/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupPublishedQuestion drives the full command path to leave the store with
// one published question and returns the message reference it was posted under
func setupPublishedQuestion(t *testing.T, bot *qnascot.Qnascot, captor *capture.ChatDriverCaptor) (ref store.MessageRef) {
	ctx := context.Background()

	_, err := bot.HandleCommand(ctx, qnascot.Command{Text: "create townhall-q1", ChannelID: "C999"})
	require.NoError(t, err)

	_, err = bot.HandleCommand(ctx, qnascot.Command{Text: "townhall-q1 What is our roadmap?", ChannelID: "C999"})
	require.NoError(t, err)

	require.Len(t, captor.SentMsgs, 1)
	return store.MessageRef{ChannelID: "C999", Timestamp: "1.000000"}
}

func TestReactionAddedUpdatesTalliesAndMessage(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	require.Len(t, captor.UpdatedMsgs, 1)
	assert.Equal(t, ref.ChannelID, captor.UpdatedMsgs[0].ChannelID)
	assert.Equal(t, ref.Timestamp, captor.UpdatedMsgs[0].Timestamp)
	assert.Contains(t, captor.UpdatedMsgs[0].Text, ":thumbsup: 1")
	assert.Contains(t, captor.UpdatedMsgs[0].Text, ":thumbsdown: 0")
}

func TestReactionRemovedRevertsTally(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	ctx := context.Background()
	bot.HandleReactionEvent(ctx, qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "thumbsup", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})
	bot.HandleReactionEvent(ctx, qnascot.ReactionEvent{Kind: qnascot.ReactionRemoved, Reaction: "thumbsup", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	require.Len(t, captor.UpdatedMsgs, 2)
	assert.Contains(t, captor.UpdatedMsgs[1].Text, ":thumbsup: 0")
}

func TestDownvoteReaction(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "-1", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	require.Len(t, captor.UpdatedMsgs, 1)
	assert.Contains(t, captor.UpdatedMsgs[0].Text, ":thumbsup: 0")
	assert.Contains(t, captor.UpdatedMsgs[0].Text, ":thumbsdown: 1")
}

func TestReactionOnForeignMessageIsIgnored(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", ItemUser: "USOMEONE", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	assert.Empty(t, captor.UpdatedMsgs)
}

func TestOwnReactionIsIgnored(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", User: "UBOT", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	assert.Empty(t, captor.UpdatedMsgs)
}

func TestNonVoteReactionIsIgnored(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "tada", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	assert.Empty(t, captor.UpdatedMsgs)
}

func TestReactionOnUnknownMessageIsSkippedSilently(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", ItemUser: "UBOT", ChannelID: "C999", Timestamp: "42.000000"})

	assert.Empty(t, captor.UpdatedMsgs)
}

// A store failure on the reaction path is logged and dropped, never propagated
func TestReactionStoreFailureIsDropped(t *testing.T) {
	storer := new(mocks.Storer)
	storer.On("ApplyVoteDelta", mock.Anything, mock.Anything, 1, 0).Return(nil, fmt.Errorf("document store unavailable"))

	captor := capture.NewChatDriver()
	bot := newTestBot(t, storer, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", ItemUser: "UBOT", ChannelID: "C999", Timestamp: "42.000000"})

	assert.Empty(t, captor.UpdatedMsgs)
}

// An update failure after the delta landed is logged and dropped. The tallies
// stay correct in the store and the next reaction re-renders them
func TestReactionRenderFailureIsDropped(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	captor.UpdateErr = fmt.Errorf("slack is down")
	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	captor.UpdateErr = nil
	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: "+1", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	require.Len(t, captor.UpdatedMsgs, 1)
	assert.Contains(t, captor.UpdatedMsgs[0].Text, ":thumbsup: 2")
}

func TestUnknownReactionEventKindIsIgnored(t *testing.T) {
	captor := capture.NewChatDriver()
	bot := newTestBot(t, inmemorydb.New(), captor)
	ref := setupPublishedQuestion(t, bot, captor)

	bot.HandleReactionEvent(context.Background(), qnascot.ReactionEvent{Kind: qnascot.ReactionEventKind("reaction_teleported"), Reaction: "+1", ItemUser: "UBOT", ChannelID: ref.ChannelID, Timestamp: ref.Timestamp})

	assert.Empty(t, captor.UpdatedMsgs)
}
