package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/matchqueue/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func newAccount(username string) *model.Account {
	return &model.Account{
		Username:     model.Username(username),
		PasswordHash: "hash123",
		Region:       "EU",
		MMR:          1200,
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Account tests

func (s *StorageSuite) TestCreateAndGetAccount() {
	account := newAccount("alice")

	err := s.storage.CreateAccount(s.ctx, account)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(account.Username, retrieved.Username)
	s.Equal(account.PasswordHash, retrieved.PasswordHash)
	s.Equal(account.Region, retrieved.Region)
	s.Equal(account.MMR, retrieved.MMR)
	s.True(account.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateAccountRejectsDuplicate() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("alice")))

	dup := newAccount("alice")
	dup.MMR = 1
	err := s.storage.CreateAccount(s.ctx, dup)
	s.ErrorIs(err, model.ErrDuplicateUsername)

	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1200, retrieved.MMR)
}

func (s *StorageSuite) TestAccountKeyHasNoTTL() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("alice")))

	s.True(s.mini.Exists(accountKey("alice")))
	s.Equal(time.Duration(0), s.mini.TTL(accountKey("alice")))
}

func (s *StorageSuite) TestConcurrentCreateOnlyOneSucceeds() {
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.storage.CreateAccount(s.ctx, newAccount("contested"))
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		s.ErrorIs(err, model.ErrDuplicateUsername)
	}
	s.Equal(1, successes)
}

func (s *StorageSuite) TestGetAccountFailsOnCorruptData() {
	s.Require().NoError(s.mini.Set(accountKey("broken"), "not-json"))

	_, err := s.storage.GetAccount(s.ctx, "broken")
	s.Error(err)
	s.NotErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestNewFailsWithBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not a url"

	_, err := New(cfg)
	s.Error(err)
}

func (s *StorageSuite) TestNewConnectsToServer() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	store, err := New(cfg)
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	s.Require().NoError(store.CreateAccount(s.ctx, newAccount("bob")))
	_, err = s.storage.GetAccount(s.ctx, "bob")
	s.NoError(err)
}
