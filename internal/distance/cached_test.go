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
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/circuit"
)

type CachedLookupSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	upstream *mocks.MockLookup
	now      time.Time
	lookup   *distance.CachedLookup
}

func TestCachedLookupSuite(t *testing.T) {
	suite.Run(t, new(CachedLookupSuite))
}

func (s *CachedLookupSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.upstream = mocks.NewMockLookup(s.ctrl)
	s.now = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("distance-test",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return s.now }),
	)
	s.lookup = distance.NewCachedLookup(s.upstream, nil,
		config.Distance{DefaultLocality: "Córdoba, Argentina", CacheTTL: time.Hour},
		distance.WithBreaker(breaker),
	)
}

func (s *CachedLookupSuite) TestCompletesAddresses() {
	s.upstream.EXPECT().
		Lookup(gomock.Any(), "Av. Colón 1200, Córdoba, Argentina", "Hospital Privado, Córdoba").
		Return(&distance.Route{DurationSeconds: 900}, nil)

	route, err := s.lookup.Lookup(context.Background(), "Av. Colón 1200", "Hospital Privado, Córdoba")
	s.Require().NoError(err)
	s.Equal(900, route.DurationSeconds)
}

func (s *CachedLookupSuite) TestRequiresBothAddresses() {
	_, err := s.lookup.Lookup(context.Background(), " ", "Hospital Privado")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CachedLookupSuite) TestBreakerOpensOnUpstreamFailures() {
	down := dErrors.New(dErrors.CodeUpstreamUnavailable, "distance service unreachable")
	s.upstream.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, down).Times(2)

	for range 2 {
		_, err := s.lookup.Lookup(context.Background(), "a", "b")
		s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	}

	s.Run("rejects without calling upstream while open", func() {
		_, err := s.lookup.Lookup(context.Background(), "a", "b")
		s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	})

	s.Run("probes again after the cooldown", func() {
		s.now = s.now.Add(2 * time.Minute)
		s.upstream.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(&distance.Route{}, nil)
		_, err := s.lookup.Lookup(context.Background(), "a", "b")
		s.Require().NoError(err)
	})
}

func (s *CachedLookupSuite) TestUnknownAddressDoesNotTripBreaker() {
	notFound := dErrors.New(dErrors.CodeInvalidInput, "one of the addresses could not be found")
	s.upstream.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, notFound).Times(3)

	for range 3 {
		_, err := s.lookup.Lookup(context.Background(), "a", "b")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
}
