// Package capture provides test captors recording interactions with the chat
// driver so engine tests can assert on what was posted and updated
package capture

import (
	"fmt"

	"github.com/slack-go/slack"
)

// SentMessage holds the details of one captured SendMessage call. Text is the
// message text resolved from the applied message options
type SentMessage struct {
	ChannelID string
	Text      string
}

// UpdatedMessage holds the details of one captured UpdateMessage call
type UpdatedMessage struct {
	ChannelID string
	Timestamp string
	Text      string
}

// ChatDriverCaptor captures sent and updated messages and hands out
// deterministic timestamps for sent messages so tests can tie updates back to
// the message that triggered them
type ChatDriverCaptor struct {
	SentMsgs    []SentMessage
	UpdatedMsgs []UpdatedMessage

	// SendErr and UpdateErr, when set, are returned by the respective calls
	SendErr   error
	UpdateErr error

	timeCursor uint64
}

// NewChatDriver returns a new initialized ChatDriverCaptor instance
func NewChatDriver() (captor *ChatDriverCaptor) {
	captor = new(ChatDriverCaptor)
	captor.SentMsgs = make([]SentMessage, 0)
	captor.UpdatedMsgs = make([]UpdatedMessage, 0)

	return captor
}

// SendMessage captures the details of a sent message and returns the channel id
// along with the next generated timestamp
func (captor *ChatDriverCaptor) SendMessage(channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error) {
	if captor.SendErr != nil {
		return "", "", "", captor.SendErr
	}

	text, err := resolveText(channelID, options...)
	if err != nil {
		return "", "", "", err
	}

	captor.SentMsgs = append(captor.SentMsgs, SentMessage{ChannelID: channelID, Text: text})
	return channelID, captor.nextTimestamp(), text, nil
}

// UpdateMessage captures the details of an updated message
func (captor *ChatDriverCaptor) UpdateMessage(channelID, timestamp string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error) {
	if captor.UpdateErr != nil {
		return "", "", "", captor.UpdateErr
	}

	text, err := resolveText(channelID, options...)
	if err != nil {
		return "", "", "", err
	}

	captor.UpdatedMsgs = append(captor.UpdatedMsgs, UpdatedMessage{ChannelID: channelID, Timestamp: timestamp, Text: text})
	return channelID, timestamp, text, nil
}

// resolveText applies the message options the way the slack client would to get
// at the message text
func resolveText(channelID string, options ...slack.MsgOption) (text string, err error) {
	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.com/api/", options...)
	if err != nil {
		return "", err
	}

	return values.Get("text"), nil
}

func (captor *ChatDriverCaptor) nextTimestamp() (timestamp string) {
	captor.timeCursor = captor.timeCursor + 1
	return fmt.Sprintf("%d.000000", captor.timeCursor)
}
