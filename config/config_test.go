package config_test

import (
	"testing"

	"github.com/alexandre-normand/qnascot/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewWithDefault(t *testing.T) {
	v := config.NewViperWithDefaults()

	assert.Equal(t, false, v.GetBool(config.DebugKey), "%s should be %t", config.DebugKey, false)
	assert.Equal(t, ":8080", v.GetString(config.ListenAddrKey), "%s should be %s", config.ListenAddrKey, ":8080")
	assert.Equal(t, config.Mongo, v.GetString(config.StorageBackendKey), "%s should be %s", config.StorageBackendKey, config.Mongo)
	assert.Equal(t, "~/.qnascot", v.GetString(config.StoragePathKey), "%s should be %s", config.StoragePathKey, "~/.qnascot")
	assert.Equal(t, 1000, v.GetInt(config.EventCacheSizeKey), "%s should be %d", config.EventCacheSizeKey, 1000)
	assert.Equal(t, []string{"+1", "thumbsup"}, v.GetStringSlice(config.UpvoteReactionsKey))
	assert.Equal(t, []string{"-1", "thumbsdown"}, v.GetStringSlice(config.DownvoteReactionsKey))
}

func TestLayerConfigWithDefaultsKeepsOverrides(t *testing.T) {
	v := viper.New()
	v.Set(config.EventCacheSizeKey, 0)
	v.Set(config.StorageBackendKey, config.LevelDB)

	v = config.LayerConfigWithDefaults(v)

	assert.Equal(t, 0, v.GetInt(config.EventCacheSizeKey))
	assert.Equal(t, config.LevelDB, v.GetString(config.StorageBackendKey))
	assert.Equal(t, ":8080", v.GetString(config.ListenAddrKey))
}

func TestGetStringSet(t *testing.T) {
	v := config.NewViperWithDefaults()

	set, err := config.GetStringSet(v, config.UpvoteReactionsKey)
	assert.NoError(t, err)
	assert.Equal(t, map[string]bool{"+1": true, "thumbsup": true}, set)
}

func TestGetStringSetOnNonListValue(t *testing.T) {
	v := config.NewViperWithDefaults()
	v.Set(config.UpvoteReactionsKey, 42)

	_, err := config.GetStringSet(v, config.UpvoteReactionsKey)
	assert.Error(t, err)
}
