package client

import (
	"context"
	"errors"
)

// ErrNoGroup is returned when a call needs a project and none is selected.
var ErrNoGroup = errors.New("no active project selected")

// GroupResolver yields the project (group) id a call is scoped to. It is read
// once per call and never written by the client.
type GroupResolver interface {
	ActiveGroupID(ctx context.Context) (string, error)
}

// StaticGroup scopes every call to one fixed project.
type StaticGroup string

func (g StaticGroup) ActiveGroupID(context.Context) (string, error) {
	if g == "" {
		return "", ErrNoGroup
	}
	return string(g), nil
}

// TokenSource yields the API key sent as a bearer token. An empty string
// sends no Authorization header.
type TokenSource func(ctx context.Context) string

// StaticToken always returns key.
func StaticToken(key string) TokenSource {
	return func(context.Context) string { return key }
}
