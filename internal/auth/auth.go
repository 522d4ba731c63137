// Package auth verifies bearer tokens for the optional API authentication.
package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Verifier validates a bearer token
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Chain tries each verifier in order and returns the first identity
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (*Identity, error) {
	err := ErrInvalidToken
	for _, v := range c {
		if v == nil {
			continue
		}
		id, verr := v.Verify(ctx, token)
		if verr == nil {
			return id, nil
		}
		err = verr
	}
	return nil, err
}
