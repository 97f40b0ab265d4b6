package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtransit/internal/platform/config"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "medtransit:distance:abc", Key("distance", "abc"))
	assert.Equal(t, "medtransit:", Key())
}

func TestNewWithoutURLIsDisabled(t *testing.T) {
	client, err := New(context.Background(), config.Redis{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.Redis{URL: "://nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}
