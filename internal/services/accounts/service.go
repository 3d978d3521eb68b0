package accounts

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/matchqueue/internal/dependencies/clock"
	"github.com/mcoot/matchqueue/internal/model"
	"github.com/mcoot/matchqueue/internal/storage"
)

// dummyPassword is hashed once at startup and compared against when a login
// names an unknown account, so both failure paths pay for one bcrypt compare.
const dummyPassword = "matchqueue-no-such-account"

// Config holds configuration for the account store
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default account store configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Store owns registered accounts and their credentials
type Store struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	cost      int
	dummyHash []byte
}

// New creates a new account Store
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Store {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultConfig().BcryptCost
	}

	// Cannot fail: the cost is in range and the password is short
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)

	return &Store{
		storage:   storage,
		clock:     clock,
		logger:    logger,
		cost:      cost,
		dummyHash: dummyHash,
	}
}

// CreateAccount validates and stores a new account.
// Only the bcrypt hash of the password is kept.
func (s *Store) CreateAccount(ctx context.Context, username, password, region string, mmr int) (model.AccountView, error) {
	if err := validateUsername(username); err != nil {
		return model.AccountView{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.AccountView{}, err
	}
	if err := validateRegion(region); err != nil {
		return model.AccountView{}, err
	}
	if err := validateMMR(mmr); err != nil {
		return model.AccountView{}, err
	}

	// Cheap early exit before paying for a hash; the insert below is the real guard
	_, err := s.storage.GetAccount(ctx, model.Username(username))
	if err == nil {
		return model.AccountView{}, model.ErrDuplicateUsername
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return model.AccountView{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.AccountView{}, err
	}

	account := &model.Account{
		Username:     model.Username(username),
		PasswordHash: string(hash),
		Region:       region,
		MMR:          mmr,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return model.AccountView{}, err
	}

	s.logger.Info("account created",
		slog.String("username", username),
		slog.String("region", region),
		slog.Int("mmr", mmr),
	)

	return account.View(), nil
}

// GetAccount returns the public view of an account.
// Unknown usernames return model.ErrAccountNotFound.
func (s *Store) GetAccount(ctx context.Context, username model.Username) (model.AccountView, error) {
	account, err := s.storage.GetAccount(ctx, username)
	if err != nil {
		return model.AccountView{}, err
	}
	return account.View(), nil
}

// VerifyCredentials reports whether password matches the stored hash.
// Unknown usernames and wrong passwords both return false after one bcrypt compare.
func (s *Store) VerifyCredentials(ctx context.Context, username model.Username, password string) bool {
	account, err := s.storage.GetAccount(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrAccountNotFound) {
			s.logger.Error("credential lookup failed",
				slog.String("username", string(username)),
				slog.String("error", err.Error()),
			)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}
