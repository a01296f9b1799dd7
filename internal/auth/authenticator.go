// Package auth registers and authenticates users and issues session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers and verifies users. The ledger only ever sees the
// resulting user IDs, so the credential scheme can change behind this interface.
type Authenticator interface {
	// Register creates a new user account. It fails with models.ErrEmailExists
	// if the email is taken in any letter case.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
