// Package identity is the account backend consulted after archive, restore
// and delete of identity-bearing entities.
package identity

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned when no account has the given id. Callers
// treat it as success.
var ErrAccountNotFound = errors.New("identity: account not found")

type Provider interface {
	SetAccountEnabled(ctx context.Context, id string, enabled bool) error
	DeleteAccount(ctx context.Context, id string) error
}

// Noop is used when no identity backend is configured.
type Noop struct{}

func (Noop) SetAccountEnabled(_ context.Context, _ string, _ bool) error { return nil }
func (Noop) DeleteAccount(_ context.Context, _ string) error             { return nil }
