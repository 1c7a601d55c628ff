package client

import (
	"context"
	"sync"
)

// recordingTransport captures every request and answers with a canned result.
type recordingTransport struct {
	mu       sync.Mutex
	calls    []RequestOptions
	envelope *Envelope
	err      error
}

func (r *recordingTransport) Request(_ context.Context, opts RequestOptions) (*Envelope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, opts)
	return r.envelope, r.err
}

type failingResolver struct{ err error }

func (f failingResolver) ActiveGroupID(context.Context) (string, error) {
	return "", f.err
}
