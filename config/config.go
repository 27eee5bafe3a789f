// Package config holds the configuration keys of a qnascot instance along with
// helpers to create a viper instance pre-loaded with defaults
package config

import (
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// TokenKey is the viper config key of the slack bot token
	TokenKey = "token"
	// SigningSecretKey is the viper config key of the slack signing secret used to verify inbound requests
	SigningSecretKey = "signingSecret"
	// DebugKey is the viper config key of the debug flag
	DebugKey = "debug"
	// ListenAddrKey is the viper config key of the HTTP listen address
	ListenAddrKey = "listenAddr"
	// StorageBackendKey is the viper config key selecting the storage backend (mongodb, datastore or leveldb)
	StorageBackendKey = "storageBackend"
	// StoragePathKey is the viper config key of the local storage path used by the leveldb backend
	StoragePathKey = "storagePath"
	// MongoURIKey is the viper config key of the mongodb connection string
	MongoURIKey = "mongoUri"
	// MongoDatabaseKey is the viper config key of the mongodb database name
	MongoDatabaseKey = "mongoDatabase"
	// GcloudProjectIDKey is the viper config key of the gcloud project id used by the datastore backend
	GcloudProjectIDKey = "gcloudProjectId"
	// GcloudCredentialsFileKey is the viper config key of the gcloud credentials file path
	GcloudCredentialsFileKey = "gcloudCredentialsFile"
	// EventCacheSizeKey is the viper config key of the known-event cache size, int value. 0 disables caching
	EventCacheSizeKey = "eventCacheSize"
	// UpvoteReactionsKey is the viper config key of the emoji names counted as upvotes
	UpvoteReactionsKey = "upvoteReactions"
	// DownvoteReactionsKey is the viper config key of the emoji names counted as downvotes
	DownvoteReactionsKey = "downvoteReactions"
)

const (
	// Mongo is the StorageBackendKey value selecting the mongodb backend
	Mongo = "mongodb"
	// Datastore is the StorageBackendKey value selecting the gcloud datastore backend
	Datastore = "datastore"
	// LevelDB is the StorageBackendKey value selecting the local leveldb backend
	LevelDB = "leveldb"
)

// NewViperWithDefaults creates a new viper instance with defaults set on it
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()
	return LayerConfigWithDefaults(v)
}

// LayerConfigWithDefaults sets defaults on an existing viper instance. Values
// already set are left untouched
func LayerConfigWithDefaults(v *viper.Viper) *viper.Viper {
	v.SetDefault(DebugKey, false)
	v.SetDefault(ListenAddrKey, ":8080")
	v.SetDefault(StorageBackendKey, Mongo)
	v.SetDefault(StoragePathKey, "~/.qnascot")
	v.SetDefault(MongoURIKey, "mongodb://localhost:27017")
	v.SetDefault(MongoDatabaseKey, "qnascot")
	v.SetDefault(EventCacheSizeKey, 1000)
	v.SetDefault(UpvoteReactionsKey, []string{"+1", "thumbsup"})
	v.SetDefault(DownvoteReactionsKey, []string{"-1", "thumbsdown"})

	return v
}

// GetStringSet reads a list-valued config entry as a membership set. Viper
// returns env-sourced lists as plain strings and file-sourced ones as slices so
// the value goes through a cast to cover both
func GetStringSet(v *viper.Viper, key string) (set map[string]bool, err error) {
	values, err := cast.ToStringSliceE(v.Get(key))
	if err != nil {
		return nil, err
	}

	set = make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}

	return set, nil
}
