package storage

import (
	"context"

	"github.com/mcoot/matchqueue/internal/model"
)

// Storage defines the interface for account persistence
type Storage interface {
	// CreateAccount inserts the account if its username is free.
	// The check and the insert are a single atomic step; a taken username
	// returns model.ErrDuplicateUsername and leaves the existing account untouched.
	CreateAccount(ctx context.Context, account *model.Account) error

	// GetAccount returns model.ErrAccountNotFound for unknown usernames
	GetAccount(ctx context.Context, username model.Username) (*model.Account, error)
}
