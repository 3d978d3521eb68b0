package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/matchqueue/internal/model"
	"github.com/mcoot/matchqueue/internal/services/accounts"
	"github.com/mcoot/matchqueue/internal/services/sessions"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	Session model.Session
	Account model.AccountView
}

// Service exposes the account operations callers use:
// account creation, login, token-authenticated lookup and logout.
type Service struct {
	accounts *accounts.Store
	sessions *sessions.Table
	logger   *slog.Logger
}

// New creates a new auth Service
func New(accounts *accounts.Store, sessions *sessions.Table, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// CreateAccount registers a new account. It does not log the account in.
func (s *Service) CreateAccount(ctx context.Context, username, password, region string, mmr int) (model.AccountView, error) {
	return s.accounts.CreateAccount(ctx, username, password, region, mmr)
}

// Login verifies credentials and opens a session.
// Unknown usernames and wrong passwords both return model.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	name := model.Username(username)
	if !s.accounts.VerifyCredentials(ctx, name, password) {
		s.logger.Info("login failed", slog.String("username", username))
		return nil, model.ErrUnauthorized
	}

	account, err := s.accounts.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.CreateSession(name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", slog.String("username", username))

	return &LoginResult{Session: session, Account: account}, nil
}

// ResolveAccountInfo returns the account behind a session token
func (s *Service) ResolveAccountInfo(ctx context.Context, token string) (model.AccountView, error) {
	username, ok := s.sessions.ResolveSession(token)
	if !ok {
		return model.AccountView{}, model.ErrUnauthorized
	}

	account, err := s.accounts.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return model.AccountView{}, model.ErrUnauthorized
		}
		return model.AccountView{}, err
	}
	return account, nil
}

// Logout destroys a session. Unknown or already destroyed tokens return
// model.ErrUnauthorized.
func (s *Service) Logout(token string) error {
	username, ok := s.sessions.ResolveSession(token)
	if !ok || !s.sessions.DestroySession(token) {
		return model.ErrUnauthorized
	}
	s.logger.Info("logout", slog.String("username", string(username)))
	return nil
}
