// Command qnascot runs a slack Q&A collector bot: an HTTP server receiving
// slash commands and reaction events from slack behind signing-secret
// verification, dispatching them to the qnascot engine
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/alexandre-normand/qnascot"
	"github.com/alexandre-normand/qnascot/config"
	"github.com/alexandre-normand/qnascot/store"
	"github.com/alexandre-normand/qnascot/store/datastoredb"
	"github.com/alexandre-normand/qnascot/store/mongodb"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

const (
	botName = "qnascot"
)

func main() {
	// A missing .env isn't an error, the environment may be set directly
	godotenv.Load()

	v := config.NewViperWithDefaults()
	v.SetEnvPrefix(botName)
	v.AutomaticEnv()

	logger := logrus.New()
	if v.GetBool(config.DebugKey) {
		logger.SetLevel(logrus.DebugLevel)
	}

	storer, err := newStorer(context.Background(), v)
	if err != nil {
		logger.Fatalf("Opening [%s] storage backend failed: %s", v.GetString(config.StorageBackendKey), err.Error())
	}
	defer storer.Close()

	bot, err := qnascot.New(botName, v, storer, qnascot.OptionLog(logger))
	if err != nil {
		logger.Fatalf("Creating bot failed: %s", err.Error())
	}

	e := echo.New()
	e.HideBanner = true

	g := e.Group("/slack", slackSignature(v.GetString(config.SigningSecretKey)))
	g.POST("/command", commandHandler(bot, logger))
	g.POST("/events", eventsHandler(bot, logger))

	logger.Fatal(e.Start(v.GetString(config.ListenAddrKey)))
}

// newStorer instantiates the configured storage backend
func newStorer(ctx context.Context, v *viper.Viper) (storer store.Storer, err error) {
	switch backend := v.GetString(config.StorageBackendKey); backend {
	case config.Mongo:
		return mongodb.New(ctx, v.GetString(config.MongoURIKey), v.GetString(config.MongoDatabaseKey))
	case config.Datastore:
		opts := make([]option.ClientOption, 0)
		if credentialsFile := v.GetString(config.GcloudCredentialsFileKey); credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}

		return datastoredb.New(ctx, v.GetString(config.GcloudProjectIDKey), opts...)
	case config.LevelDB:
		return store.NewLevelDB(botName, v.GetString(config.StoragePathKey))
	default:
		return nil, fmt.Errorf("unknown storage backend [%s]", backend)
	}
}

// slackSignature verifies the slack request signature on every request before
// letting it through. The body is restored for downstream handlers
func slackSignature(signingSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			body, err := io.ReadAll(req.Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))

			verifier, err := slack.NewSecretsVerifier(req.Header, signingSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "missing signature headers")
			}

			if _, err = verifier.Write(body); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			if err = verifier.Ensure(); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid request signature")
			}

			return next(c)
		}
	}
}

// commandHandler parses an inbound slash command and dispatches it to the
// engine's command router. Engine failures surface as internal errors to the
// command issuer, user errors come back as ordinary replies
func commandHandler(bot *qnascot.Qnascot, logger *logrus.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		sc, err := slack.SlashCommandParse(c.Request())
		if err != nil {
			logger.Warnf("Dropping malformed slash command payload: %s", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, "malformed slash command payload")
		}

		r, err := bot.HandleCommand(c.Request().Context(), qnascot.Command{Text: sc.Text, ChannelID: sc.ChannelID})
		if err != nil {
			logger.Errorf("Command [%s] failed: %s", sc.Text, err.Error())
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		return c.String(r.Status, r.Text)
	}
}

// eventsHandler handles the slack Events API callbacks: the one-time URL
// verification challenge and reaction added/removed events. Reaction handling
// is fail-soft so the response is always a 200 once the payload parses
func eventsHandler(bot *qnascot.Qnascot, logger *logrus.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
		}

		apiEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
		if err != nil {
			logger.Warnf("Dropping malformed events payload: %s", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, "malformed events payload")
		}

		switch apiEvent.Type {
		case slackevents.URLVerification:
			var r slackevents.ChallengeResponse
			if err := json.Unmarshal(body, &r); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "malformed challenge payload")
			}

			return c.String(http.StatusOK, r.Challenge)
		case slackevents.CallbackEvent:
			handleCallbackEvent(c.Request().Context(), bot, logger, apiEvent.InnerEvent)
		}

		return c.NoContent(http.StatusOK)
	}
}

// handleCallbackEvent maps a slack inner event to the engine's typed reaction
// event. Anything malformed or irrelevant is logged and dropped
func handleCallbackEvent(ctx context.Context, bot *qnascot.Qnascot, logger *logrus.Logger, innerEvent slackevents.EventsAPIInnerEvent) {
	switch ev := innerEvent.Data.(type) {
	case *slackevents.ReactionAddedEvent:
		dispatchReaction(ctx, bot, logger, qnascot.ReactionEvent{Kind: qnascot.ReactionAdded, Reaction: ev.Reaction, User: ev.User, ItemUser: ev.ItemUser, ChannelID: ev.Item.Channel, Timestamp: ev.Item.Timestamp})
	case *slackevents.ReactionRemovedEvent:
		dispatchReaction(ctx, bot, logger, qnascot.ReactionEvent{Kind: qnascot.ReactionRemoved, Reaction: ev.Reaction, User: ev.User, ItemUser: ev.ItemUser, ChannelID: ev.Item.Channel, Timestamp: ev.Item.Timestamp})
	default:
		logger.Debugf("Ignoring event of type [%s]", innerEvent.Type)
	}
}

// dispatchReaction validates the required reaction fields before handing the
// event to the reconciler
func dispatchReaction(ctx context.Context, bot *qnascot.Qnascot, logger *logrus.Logger, ev qnascot.ReactionEvent) {
	if ev.Reaction == "" || ev.ChannelID == "" || ev.Timestamp == "" {
		logger.Warnf("Dropping reaction event with missing fields [kind=%s, reaction=%s, message=%s/%s]", ev.Kind, ev.Reaction, ev.ChannelID, ev.Timestamp)
		return
	}

	bot.HandleReactionEvent(ctx, ev)
}
