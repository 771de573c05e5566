// Package auth is the placeholder login used by the console. It accepts any
// credentials and stores nothing; it is not a security boundary.
package auth

import (
	"errors"

	applog "expensetracker/internal/log"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

type Authenticator struct {
	logger *applog.Logger
}

func New(logger *applog.Logger) *Authenticator {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Authenticator{logger: logger.WithComponent(applog.ComponentAuth)}
}

// Authenticate always succeeds.
func (a *Authenticator) Authenticate(username, password string) bool {
	a.logger.Info("User logged in", applog.FieldUsername, username)
	return true
}

// Signup checks that the password was typed the same way twice. Nothing is
// persisted.
func (a *Authenticator) Signup(username, password, confirm string) error {
	if password != confirm {
		a.logger.Warn("Signup rejected", applog.FieldUsername, username, "error", ErrPasswordMismatch)
		return ErrPasswordMismatch
	}
	a.logger.Info("User signed up", applog.FieldUsername, username)
	return nil
}
