/*
Package qnascot provides the engine of a slack Q&A collector bot.

A qnascot instance receives slash commands to create Q&A events (such as a town hall)
and to submit questions to them. Each submitted question is posted as a slack message
and teammates vote on it with emoji reactions. The engine keeps the persisted vote
tallies of each question consistent with the reaction added/removed events slack
delivers and re-renders the posted message with the updated counts.

The engine is transport-agnostic: it exposes HandleCommand and HandleReactionEvent
and leaves HTTP serving, request signature verification and slack payload parsing to
the caller (see cmd/qnascot for the default bootstrap).

Example code:

	package main

	import (
		"github.com/alexandre-normand/qnascot"
		"github.com/alexandre-normand/qnascot/config"
		"github.com/alexandre-normand/qnascot/store/mongodb"
	)

	func main() {
		v := config.NewViperWithDefaults()
		v.SetEnvPrefix("qnascot")
		v.AutomaticEnv()

		storer, err := mongodb.New(ctx, v.GetString(config.MongoURIKey), v.GetString(config.MongoDatabaseKey))
		if err != nil {
			log.Fatalf("Opening mongodb store failed: %s", err.Error())
		}
		defer storer.Close()

		bot, err := qnascot.New("qnascot", v, storer)
		if err != nil {
			log.Fatalf("Creating bot failed: %s", err.Error())
		}

		// Feed bot.HandleCommand and bot.HandleReactionEvent from your HTTP handlers
	}
*/
package qnascot // import "github.com/alexandre-normand/qnascot"
