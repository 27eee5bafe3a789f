/*
Package inmemorydb provides an implementation of github.com/alexandre-normand/qnascot/store's Storer interface
keeping all events and questions in memory.

Nothing is ever persisted so a restart loses all recorded events, questions and vote tallies. The main
use-cases are tests and trying out a qnascot instance without standing up a real document store. For
anything durable, use the mongodb or datastoredb implementations instead.

Example code:

	import (
		"github.com/alexandre-normand/qnascot"
		"github.com/alexandre-normand/qnascot/store/inmemorydb"
	)

	func main() {
		storer := inmemorydb.New()
		defer storer.Close()

		bot, err := qnascot.New("qnascot", v, storer)
		...
	}
*/
package inmemorydb // import "github.com/alexandre-normand/qnascot/store/inmemorydb"
