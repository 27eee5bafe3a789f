/*
Package mongodb provides an implementation of github.com/alexandre-normand/qnascot/store's Storer interface
backed by a MongoDB database with two collections: events and questions.

The vote tallies are maintained with a single FindOneAndUpdate using $inc and returning the
post-update document so concurrent reactions on the same question can never lose an update.

Requirements:
  - A reachable MongoDB deployment (a free Atlas cluster works fine)
  - A connection string URI (mongodb:// or mongodb+srv://)

Example code:

	import (
		"github.com/alexandre-normand/qnascot"
		"github.com/alexandre-normand/qnascot/store/mongodb"
	)

	func main() {
		storer, err := mongodb.New(ctx, "mongodb://localhost:27017", "qnascot")
		if err != nil {
			log.Fatalf("Opening mongodb store failed: %s", err.Error())
		}
		defer storer.Close()

		bot, err := qnascot.New("qnascot", v, storer)
		...
	}
*/
package mongodb // import "github.com/alexandre-normand/qnascot/store/mongodb"
