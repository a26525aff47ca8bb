//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"nhc/internal/election/models"
	"nhc/pkg/calendar"
	"nhc/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *Redis
	ctx   context.Context
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration tests in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = NewRedis(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func sampleResults() []*models.ElectionResults {
	return []*models.ElectionResults{{
		ElectionID: uuid.New(),
		StartDate:  calendar.MustParse("2025-06-01"),
		EndDate:    calendar.MustParse("2025-06-03"),
		Positions: []models.CategoryStandings{{
			Category: "President",
			Candidates: []models.Standing{
				{CandidacyID: uuid.New(), PersonalID: "P-1", FirstName: "Ana", LastName: "Lima", Category: "President", TotalVotes: 7},
			},
		}},
	}}
}

func (s *RedisCacheSuite) TestMiss() {
	got, ok, err := s.cache.Get(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(got)
}

func (s *RedisCacheSuite) TestSetThenGet() {
	zoneID := uuid.New()
	want := sampleResults()
	s.Require().NoError(s.cache.Set(s.ctx, zoneID, 0, want))

	got, ok, err := s.cache.Get(s.ctx, zoneID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(want, got)

	ttl, err := s.redis.Client.TTL(s.ctx, key(zoneID)).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisCacheSuite) TestInvalidate() {
	zoneID := uuid.New()
	s.Require().NoError(s.cache.Set(s.ctx, zoneID, 0, sampleResults()))
	s.Require().NoError(s.cache.Invalidate(s.ctx, zoneID))

	_, ok, err := s.cache.Get(s.ctx, zoneID)
	s.Require().NoError(err)
	s.False(ok)

	s.NoError(s.cache.Invalidate(s.ctx, zoneID), "invalidating a missing key is fine")
}

func (s *RedisCacheSuite) TestFillFromOlderGenerationIsDropped() {
	zoneID := uuid.New()
	gen, err := s.cache.Generation(s.ctx, zoneID)
	s.Require().NoError(err)
	s.Zero(gen)

	s.Require().NoError(s.cache.Invalidate(s.ctx, zoneID))
	s.Require().NoError(s.cache.Set(s.ctx, zoneID, gen, sampleResults()))
	_, ok, err := s.cache.Get(s.ctx, zoneID)
	s.Require().NoError(err)
	s.False(ok, "results loaded before the invalidation are not stored")

	gen, err = s.cache.Generation(s.ctx, zoneID)
	s.Require().NoError(err)
	s.Equal(int64(1), gen)
	s.Require().NoError(s.cache.Set(s.ctx, zoneID, gen, sampleResults()))
	_, ok, err = s.cache.Get(s.ctx, zoneID)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisCacheSuite) TestCorruptEntry() {
	zoneID := uuid.New()
	s.Require().NoError(s.redis.Client.Set(s.ctx, key(zoneID), "not json", 0).Err())

	_, ok, err := s.cache.Get(s.ctx, zoneID)
	s.Error(err)
	s.False(ok)
}
