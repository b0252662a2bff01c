//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"clinrec/internal/auth/store"
	"clinrec/pkg/platform/sentinel"
	"clinrec/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.Postgres
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.Truncate(ctx))

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	s.Require().NoError(err)
	_, err = s.pg.DB.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES ($1, $2)",
		"alice", string(hash),
	)
	s.Require().NoError(err)
}

func (s *PostgresUserStoreSuite) TestFindByUsername() {
	user, err := s.store.FindByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func (s *PostgresUserStoreSuite) TestFindByUsernameMissing() {
	_, err := s.store.FindByUsername(context.Background(), "nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
