package session_test

import (
	"context"
	"sync"

	"github.com/openstage/go-session"
	"github.com/stretchr/testify/mock"
)

// MockTransport implements session.Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Do(ctx context.Context, method, path string, body any) (*session.Response, error) {
	args := m.Called(ctx, method, path, body)

	var resp *session.Response
	if v := args.Get(0); v != nil {
		resp = v.(*session.Response)
	}
	return resp, args.Error(1)
}

// MockStore implements session.CredentialStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingSink collects activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event session.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []session.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]session.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// blockingTransport holds a request in flight until released; used to race
// renewals against logout.
type blockingTransport struct {
	release chan struct{}
	started chan struct{}
	resp    *session.Response
	err     error
}

func newBlockingTransport(resp *session.Response, err error) *blockingTransport {
	return &blockingTransport{
		release: make(chan struct{}),
		started: make(chan struct{}),
		resp:    resp,
		err:     err,
	}
}

func (t *blockingTransport) Do(ctx context.Context, method, path string, body any) (*session.Response, error) {
	close(t.started)
	<-t.release
	return t.resp, t.err
}

// countingTransport counts calls and replies with a fixed response.
type countingTransport struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	resp  *session.Response
}

func (t *countingTransport) Do(ctx context.Context, method, path string, body any) (*session.Response, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()

	if t.gate != nil {
		<-t.gate
	}
	return t.resp, nil
}

func (t *countingTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
