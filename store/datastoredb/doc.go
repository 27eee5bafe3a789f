/*
Package datastoredb provides an implementation of github.com/alexandre-normand/qnascot/store's Storer interface
backed by the Google Cloud Datastore with two entity kinds: events and questions.

Vote tallies are maintained inside datastore transactions so concurrent reactions on the
same question can never lose an update.

Requirements for the Google Cloud Datastore integration:
  - A valid project id with datastore mode enabled
  - Google Cloud Credentials (typically in the form of a json file with credentials from https://console.cloud.google.com/apis/credentials/serviceaccountkey)

Example code:

	import (
		"github.com/alexandre-normand/qnascot"
		"github.com/alexandre-normand/qnascot/store/datastoredb"
		"google.golang.org/api/option"
	)

	func main() {
		storer, err := datastoredb.New(ctx, "my-gcloud-project", option.WithCredentialsFile(*gcloudCredentialsFile))
		if err != nil {
			log.Fatalf("Opening datastore store failed: %s", err.Error())
		}
		defer storer.Close()

		bot, err := qnascot.New("qnascot", v, storer)
		...
	}
*/
package datastoredb // import "github.com/alexandre-normand/qnascot/store/datastoredb"
