//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"clinrec/internal/recommendation"
	"clinrec/internal/recommendation/cache"
	"clinrec/pkg/platform/sentinel"
	"clinrec/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.Redis
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = cache.NewRedis(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeRecommendation(owner string) recommendation.Recommendation {
	return recommendation.Recommendation{
		RecommendationID: uuid.NewString(),
		PatientID:        uuid.NewString(),
		Text:             "Physical Therapy. Weight Management Program.",
		CreatedAt:        time.Now().UTC().Truncate(time.Millisecond),
		Owner:            owner,
	}
}

func (s *RedisCacheSuite) TestSetGetRoundTrip() {
	ctx := context.Background()
	rec := makeRecommendation("alice")

	s.Require().NoError(s.cache.Set(ctx, rec, time.Hour))

	got, err := s.cache.Get(ctx, rec.RecommendationID)
	s.Require().NoError(err)
	s.Equal(rec.RecommendationID, got.RecommendationID)
	s.Equal(rec.PatientID, got.PatientID)
	s.Equal(rec.Text, got.Text)
	s.Equal("alice", got.Owner)
	s.True(rec.CreatedAt.Equal(got.CreatedAt))
}

func (s *RedisCacheSuite) TestMissReturnsNotFound() {
	_, err := s.cache.Get(context.Background(), uuid.NewString())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestEntryExpires() {
	ctx := context.Background()
	rec := makeRecommendation("alice")

	s.Require().NoError(s.cache.Set(ctx, rec, 100*time.Millisecond))

	_, err := s.cache.Get(ctx, rec.RecommendationID)
	s.Require().NoError(err)

	time.Sleep(300 * time.Millisecond)

	_, err = s.cache.Get(ctx, rec.RecommendationID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestCorruptEntryBehavesLikeMiss() {
	ctx := context.Background()
	id := uuid.NewString()
	s.Require().NoError(s.redis.Client.Set(ctx, "rec:"+id, "{not json", time.Hour).Err())

	_, err := s.cache.Get(ctx, id)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestSetOverwrites() {
	ctx := context.Background()
	rec := makeRecommendation("alice")
	s.Require().NoError(s.cache.Set(ctx, rec, time.Hour))

	rec.Text = "General Health Checkup."
	s.Require().NoError(s.cache.Set(ctx, rec, time.Hour))

	got, err := s.cache.Get(ctx, rec.RecommendationID)
	s.Require().NoError(err)
	s.Equal("General Health Checkup.", got.Text)
}
