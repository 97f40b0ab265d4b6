package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		assert.Empty(t, Actor(ctx))
		assert.Empty(t, RequestID(ctx))
		assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
	})

	t.Run("injected values", func(t *testing.T) {
		fixed := time.Date(2024, 1, 3, 8, 30, 0, 0, time.UTC)
		ctx := WithTime(WithRequestID(WithActor(ctx, "dispatcher-7"), "req-1"), fixed)
		assert.Equal(t, "dispatcher-7", Actor(ctx))
		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, fixed, Now(ctx))
	})
}
