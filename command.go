package qnascot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexandre-normand/qnascot/store"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const createVerb = "create"

// Command holds the inbound slash command fields the engine needs: the raw
// command text and the channel the command was issued from (which is where
// question messages get posted)
type Command struct {
	Text      string
	ChannelID string
}

// CommandResponse holds the reply text for the command issuer along with the
// HTTP status to respond with. Successful create/add flows use 201, everything
// else (including user input errors, which are ordinary replies rather than
// HTTP errors) uses 200
type CommandResponse struct {
	Text   string
	Status int
}

// HandleCommand parses the command text and dispatches to the create-event or
// add-question flow. The first token is either the literal create verb (the
// second token then being the event id) or an event id (the remaining tokens
// forming the question text). Store or chat driver failures propagate to the
// caller to surface as an internal error
func (q *Qnascot) HandleCommand(ctx context.Context, c Command) (r CommandResponse, err error) {
	tokens := strings.Fields(c.Text)

	if len(tokens) > 0 && tokens[0] == createVerb {
		return q.handleCreateEvent(ctx, tokens[1:])
	}

	return q.handleAddQuestion(ctx, c.ChannelID, tokens)
}

// handleCreateEvent runs the create flow over the tokens following the create verb
func (q *Qnascot) handleCreateEvent(ctx context.Context, tokens []string) (r CommandResponse, err error) {
	if len(tokens) != 1 || !IsValidEventID(tokens[0]) {
		q.countCommand(ctx, outcomeRejected)
		return cannotParseResponse(), nil
	}

	eventID := tokens[0]

	exists, err := q.eventExists(ctx, eventID)
	if err != nil {
		q.countCommand(ctx, outcomeFailed)
		return CommandResponse{}, err
	}

	if exists {
		q.countCommand(ctx, outcomeConflict)
		return CommandResponse{Text: fmt.Sprintf("Event [%s] already exists", eventID), Status: http.StatusOK}, nil
	}

	err = q.eventStore.CreateEvent(ctx, eventID)
	if err != nil {
		q.countCommand(ctx, outcomeFailed)
		return CommandResponse{}, errors.Wrap(err, fmt.Sprintf("failed to create event [%s]", eventID))
	}

	q.log.Debugf("Created event [%s]\n", eventID)
	q.countCommand(ctx, outcomeCreated)

	return CommandResponse{Text: fmt.Sprintf("Event [%s] created, questions are open", eventID), Status: http.StatusCreated}, nil
}

// handleAddQuestion runs the add-question flow: first token is the event id,
// the rest is the question text. The question is persisted as a draft, posted
// to the command's channel and then tied to the posted message
func (q *Qnascot) handleAddQuestion(ctx context.Context, channelID string, tokens []string) (r CommandResponse, err error) {
	if len(tokens) < 2 || !IsValidEventID(tokens[0]) {
		q.countCommand(ctx, outcomeRejected)
		return cannotParseResponse(), nil
	}

	eventID := tokens[0]
	text := strings.Join(tokens[1:], " ")

	exists, err := q.eventExists(ctx, eventID)
	if err != nil {
		q.countCommand(ctx, outcomeFailed)
		return CommandResponse{}, err
	}

	if !exists {
		q.countCommand(ctx, outcomeMissing)
		return CommandResponse{Text: fmt.Sprintf("Event [%s] does not yet exist", eventID), Status: http.StatusOK}, nil
	}

	questionID, err := q.questionStore.CreateQuestion(ctx, eventID, text)
	if err != nil {
		q.countCommand(ctx, outcomeFailed)
		return CommandResponse{}, errors.Wrap(err, fmt.Sprintf("failed to create question for event [%s]", eventID))
	}

	draft := store.Question{EventID: eventID, Text: text}
	rChannelID, rTimestamp, _, err := q.driver.SendMessage(channelID, slack.MsgOptionText(renderQuestion(&draft), false), slack.MsgOptionAsUser(true))
	if err != nil {
		q.countCommand(ctx, outcomeFailed)
		return CommandResponse{}, errors.Wrap(err, fmt.Sprintf("failed to post question [%s] for event [%s]", questionID, eventID))
	}

	err = q.questionStore.AttachMessageRef(ctx, questionID, store.MessageRef{ChannelID: rChannelID, Timestamp: rTimestamp})
	if err != nil {
		q.countCommand(ctx, outcomeFailed)
		return CommandResponse{}, errors.Wrap(err, fmt.Sprintf("failed to attach message to question [%s]", questionID))
	}

	q.log.Debugf("Added question [%s] to event [%s] as message [%s/%s]\n", questionID, eventID, rChannelID, rTimestamp)
	q.countCommand(ctx, outcomeCreated)

	return CommandResponse{Text: fmt.Sprintf("Question added to [%s]", eventID), Status: http.StatusCreated}, nil
}

// eventExists checks the known-event cache before hitting the store. Only
// positive results are cached since events are never deleted
func (q *Qnascot) eventExists(ctx context.Context, eventID string) (exists bool, err error) {
	if q.knownEvents != nil && q.knownEvents.Contains(eventID) {
		return true, nil
	}

	exists, err = q.eventStore.EventExists(ctx, eventID)
	if err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("failed to check existence of event [%s]", eventID))
	}

	if exists && q.knownEvents != nil {
		q.knownEvents.Add(eventID, struct{}{})
	}

	return exists, nil
}

// cannotParseResponse is the reply for malformed command text. It's a user
// error reported as an ordinary reply, not an HTTP error
func cannotParseResponse() (r CommandResponse) {
	return CommandResponse{Text: fmt.Sprintf("Cannot parse that, try `%s my-event` or `my-event My question?`", createVerb), Status: http.StatusOK}
}
