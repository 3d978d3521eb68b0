package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/matchqueue/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newAccount(username string) *model.Account {
	return &model.Account{
		Username:     model.Username(username),
		PasswordHash: "hash123",
		Region:       "NA",
		MMR:          1000,
		CreatedAt:    time.Now(),
	}
}

// Account tests

func (s *StorageSuite) TestCreateAndGetAccount() {
	err := s.storage.CreateAccount(s.ctx, newAccount("alice"))
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Username("alice"), retrieved.Username)
	s.Equal("NA", retrieved.Region)
	s.Equal(1000, retrieved.MMR)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateAccountRejectsDuplicate() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, newAccount("alice")))

	dup := newAccount("alice")
	dup.Region = "EU"
	err := s.storage.CreateAccount(s.ctx, dup)
	s.ErrorIs(err, model.ErrDuplicateUsername)

	// Original account is untouched
	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("NA", retrieved.Region)
}

func (s *StorageSuite) TestStoredAccountIsACopy() {
	account := newAccount("alice")
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account))

	account.MMR = 5

	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1000, retrieved.MMR)
}

func (s *StorageSuite) TestConcurrentCreateOnlyOneSucceeds() {
	const workers = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account := newAccount("contested")
			account.Region = fmt.Sprintf("R%d", i)
			errs <- s.storage.CreateAccount(s.ctx, account)
		}(i)
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
	s.Equal(1, s.storage.Count())
}
