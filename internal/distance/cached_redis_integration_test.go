//go:build integration

package distance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medtransit/internal/distance"
	"medtransit/internal/distance/mocks"
	"medtransit/internal/platform/config"
	platformredis "medtransit/internal/platform/redis"
	"medtransit/pkg/testutil/containers"
)

type CachedLookupRedisSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestCachedLookupRedisSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedLookupRedisSuite))
}

func (s *CachedLookupRedisSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedLookupRedisSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CachedLookupRedisSuite) TestSecondLookupIsServedFromCache() {
	ctrl := gomock.NewController(s.T())
	upstream := mocks.NewMockLookup(ctrl)
	upstream.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&distance.Route{DurationSeconds: 1080, DurationText: "18 min"}, nil).
		Times(1)

	lookup := distance.NewCachedLookup(upstream, s.redis.Client,
		config.Distance{DefaultLocality: "Córdoba, Argentina", CacheTTL: time.Minute})
	ctx := context.Background()

	first, err := lookup.Lookup(ctx, "Av. Colón 1200", "Hospital Privado")
	s.Require().NoError(err)

	// differently cased and accented input maps to the same entry
	second, err := lookup.Lookup(ctx, "av. colon 1200", "HOSPITAL PRIVADO")
	s.Require().NoError(err)
	s.Equal(first.DurationSeconds, second.DurationSeconds)
	s.Equal("18 min", second.DurationText)

	keys, err := s.redis.Client.Keys(ctx, platformredis.Key("distance", "*")).Result()
	s.Require().NoError(err)
	s.Len(keys, 1)

	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}
