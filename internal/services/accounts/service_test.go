package accounts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/matchqueue/internal/dependencies/mocks"
	"github.com/mcoot/matchqueue/internal/model"
	"github.com/mcoot/matchqueue/internal/storage/memory"
	"github.com/mcoot/matchqueue/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	store   *Store
	ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.store = New(s.storage, s.clock, Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())
	s.ctx = context.Background()
}

// CreateAccount tests

func (s *StoreSuite) TestCreateAccountSucceeds() {
	view, err := s.store.CreateAccount(s.ctx, "alice", "hunter2", "NA", 1500)
	s.Require().NoError(err)

	s.Equal(model.Username("alice"), view.Username)
	s.Equal("NA", view.Region)
	s.Equal(1500, view.MMR)
}

func (s *StoreSuite) TestCreateAccountStoresHashOnly() {
	_, err := s.store.CreateAccount(s.ctx, "alice", "hunter2", "NA", 1500)
	s.Require().NoError(err)

	account, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEqual("hunter2", account.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("hunter2")))
	s.Equal(s.clock.Now(), account.CreatedAt)
}

func (s *StoreSuite) TestCreateAccountAllowsZeroMMR() {
	view, err := s.store.CreateAccount(s.ctx, "alice", "pw", "EU", 0)
	s.Require().NoError(err)
	s.Equal(0, view.MMR)
}

func (s *StoreSuite) TestCreateAccountDuplicateUsername() {
	_, err := s.store.CreateAccount(s.ctx, "alice", "pw", "NA", 1500)
	s.Require().NoError(err)

	_, err = s.store.CreateAccount(s.ctx, "alice", "other", "EU", 1000)
	s.ErrorIs(err, model.ErrDuplicateUsername)

	// The original account is untouched
	view, err := s.store.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("NA", view.Region)
	s.Equal(1500, view.MMR)
}

func (s *StoreSuite) TestCreateAccountRejectsInvalidInput() {
	cases := []struct {
		name     string
		username string
		password string
		region   string
		mmr      int
	}{
		{"empty username", "", "pw", "NA", 1},
		{"long username", strings.Repeat("a", MaxUsernameLength+1), "pw", "NA", 1},
		{"username with space", "al ice", "pw", "NA", 1},
		{"username with slash", "al/ice", "pw", "NA", 1},
		{"empty password", "alice", "", "NA", 1},
		{"long password", "alice", strings.Repeat("p", MaxPasswordBytes+1), "NA", 1},
		{"empty region", "alice", "pw", "", 1},
		{"long region", "alice", "pw", strings.Repeat("r", MaxRegionLength+1), 1},
		{"region with space", "alice", "pw", "N A", 1},
		{"negative mmr", "alice", "pw", "NA", -1},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.store.CreateAccount(s.ctx, tc.username, tc.password, tc.region, tc.mmr)
			s.ErrorIs(err, model.ErrInvalidInput)
		})
	}

	s.Equal(0, s.storage.Count())
}

func (s *StoreSuite) TestCreateAccountAcceptsBoundaryLengths() {
	username := strings.Repeat("a", MaxUsernameLength)
	password := strings.Repeat("p", MaxPasswordBytes)
	region := strings.Repeat("r", MaxRegionLength)

	_, err := s.store.CreateAccount(s.ctx, username, password, region, 10)
	s.Require().NoError(err)
	s.True(s.store.VerifyCredentials(s.ctx, model.Username(username), password))
}

func (s *StoreSuite) TestCreateAccountConcurrentSameUsername() {
	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.CreateAccount(s.ctx, "alice", "pw", "NA", 100); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(1, s.storage.Count())
}

// GetAccount tests

func (s *StoreSuite) TestGetAccountReturnsView() {
	_, _ = s.store.CreateAccount(s.ctx, "alice", "pw", "NA", 1500)

	view, err := s.store.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountView{Username: "alice", Region: "NA", MMR: 1500}, view)
}

func (s *StoreSuite) TestGetAccountNotFound() {
	_, err := s.store.GetAccount(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// VerifyCredentials tests

func (s *StoreSuite) TestVerifyCredentials() {
	_, _ = s.store.CreateAccount(s.ctx, "alice", "hunter2", "NA", 1500)

	s.True(s.store.VerifyCredentials(s.ctx, "alice", "hunter2"))
	s.False(s.store.VerifyCredentials(s.ctx, "alice", "wrong"))
	s.False(s.store.VerifyCredentials(s.ctx, "alice", ""))
	s.False(s.store.VerifyCredentials(s.ctx, "bob", "hunter2"))
}

func (s *StoreSuite) TestOutOfRangeCostFallsBackToDefault() {
	store := New(s.storage, s.clock, Config{BcryptCost: 99}, testutil.NopLogger())
	s.Equal(bcrypt.DefaultCost, store.cost)
	s.NotEmpty(store.dummyHash)
}
