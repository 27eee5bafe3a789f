package qnascot

import (
	"github.com/slack-go/slack"
)

// messageSender is implemented by any value that has the SendMessage method.
// Note that this is the synchronous send returning the information identifying
// the sent message, which the engine stores on the question as its
// reconciliation key.
//
// slack.Client implements this interface
type messageSender interface {
	SendMessage(channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error)
}

// messageUpdater is implemented by any value that has the UpdateMessage method.
// The engine uses it to re-render a question's message with updated vote counts.
//
// slack.Client implements this interface
type messageUpdater interface {
	UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error)
}

// ChatDriver encompasses the messageSender and messageUpdater interfaces and is
// implemented by any value that has all methods of those interfaces. It is the
// full contract the engine requires of the messaging platform
type ChatDriver interface {
	messageSender
	messageUpdater
}

// selfIdentifier is implemented by any value that has the AuthTest method used
// to resolve the bot's own user identity.
//
// slack.Client implements this interface
type selfIdentifier interface {
	AuthTest() (response *slack.AuthTestResponse, err error)
}
