// Package session exposes the signed-in user name to the form controllers.
// The value is read-only: controllers never change who is signed in.
package session

import (
	"context"
	"strings"
)

type Session interface {
	Username() string
}

// Static is a fixed session, used by the CLI and in tests.
type Static string

func (s Static) Username() string {
	return strings.TrimSpace(string(s))
}

type ctxKey struct{}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// FromContext returns the session stored by WithUsername. An empty session
// is returned when none was stored.
func FromContext(ctx context.Context) Session {
	username, _ := ctx.Value(ctxKey{}).(string)
	return Static(username)
}
