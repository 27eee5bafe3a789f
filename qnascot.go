package qnascot

import (
	"fmt"
	"log"
	"os"

	"github.com/alexandre-normand/qnascot/config"
	"github.com/alexandre-normand/qnascot/store"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

const (
	// eventCacheDisabledValue disables the known-event cache when set as the cache size
	eventCacheDisabledValue = 0
)

// Qnascot represents a Q&A collector bot instance: its configuration, its
// persistence, its chat driver and its own slack identity
type Qnascot struct {
	name   string
	config *viper.Viper
	log    SLogger

	eventStore    store.EventStorer
	questionStore store.QuestionStorer
	driver        ChatDriver

	// selfID is the bot's own slack user id, used to tell apart reactions on
	// question messages from reactions on unrelated messages
	selfID string

	// knownEvents caches event ids confirmed to exist. Events are immutable and
	// never deleted so a positive existence result can be cached forever
	knownEvents *lru.Cache[string, struct{}]

	upvoteReactions   map[string]bool
	downvoteReactions map[string]bool

	*instrumenter
}

// Option defines an option for a Qnascot
type Option func(*Qnascot)

// OptionLog sets the logger of the engine instead of the default standard
// library logger writing to stdout
func OptionLog(logger SLogger) Option {
	return func(q *Qnascot) {
		q.log = logger
	}
}

// OptionChatDriver sets the chat driver of the engine instead of the default
// slack client built from the configured token. Mostly useful for testing
func OptionChatDriver(driver ChatDriver) Option {
	return func(q *Qnascot) {
		q.driver = driver
	}
}

// OptionSelfID sets the bot's own slack user id instead of resolving it with an
// AuthTest call on the chat driver. Mostly useful for testing
func OptionSelfID(selfID string) Option {
	return func(q *Qnascot) {
		q.selfID = selfID
	}
}

// New creates a new Qnascot engine persisting to the given storer and configured
// by the given viper instance
func New(name string, v *viper.Viper, storer store.Storer, options ...Option) (bot *Qnascot, err error) {
	bot = new(Qnascot)
	bot.name = name
	bot.config = v
	bot.eventStore = storer
	bot.questionStore = storer

	for _, opt := range options {
		opt(bot)
	}

	if bot.log == nil {
		bot.log = NewSLogger(log.New(os.Stdout, fmt.Sprintf("%s: ", name), log.Lshortfile|log.LstdFlags), v.GetBool(config.DebugKey))
	}

	if bot.driver == nil {
		bot.driver = slack.New(v.GetString(config.TokenKey), slack.OptionDebug(v.GetBool(config.DebugKey)))
	}

	if bot.selfID == "" {
		err = bot.cacheSelfIdentity()
		if err != nil {
			return nil, err
		}
	}

	cacheSize := v.GetInt(config.EventCacheSizeKey)
	if cacheSize > eventCacheDisabledValue {
		bot.knownEvents, err = lru.New[string, struct{}](cacheSize)
		if err != nil {
			return nil, err
		}
	}

	bot.upvoteReactions, err = config.GetStringSet(v, config.UpvoteReactionsKey)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("invalid value for [%s]", config.UpvoteReactionsKey))
	}

	bot.downvoteReactions, err = config.GetStringSet(v, config.DownvoteReactionsKey)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("invalid value for [%s]", config.DownvoteReactionsKey))
	}

	bot.instrumenter, err = newInstrumenter(name, otel.Meter(name))
	if err != nil {
		return nil, err
	}

	return bot, nil
}

// cacheSelfIdentity resolves and keeps the bot's own user id from the chat
// driver so the reaction reconciler can guard against unrelated messages
func (q *Qnascot) cacheSelfIdentity() (err error) {
	identifier, ok := q.driver.(selfIdentifier)
	if !ok {
		return fmt.Errorf("chat driver doesn't support AuthTest, use OptionSelfID to set the bot's user id")
	}

	resp, err := identifier.AuthTest()
	if err != nil {
		return errors.Wrap(err, "failed to resolve self identity")
	}

	q.selfID = resp.UserID
	q.log.Debugf("Caching self user id [%s]\n", q.selfID)

	return nil
}
