package app

import (
	"context"
	"sync"
	"time"

	"thread_broadcast_bot/internal/domain/broadcast"
	"thread_broadcast_bot/internal/domain/session"
)

// fakeClient is a scripted platform.Client.
type fakeClient struct {
	sendErrs  []error // Consumed in order; nil once exhausted
	sendCalls []string
	onSend    func() // Runs inside SendDirect before the scripted result

	loginErr  error
	loadErr   error
	probeErr  error
	dumpErr   error
	settings  []byte
	loginWith string
	loaded    []byte
	probes    int
}

func (f *fakeClient) LoginBySession(ctx context.Context, credential string) error {
	f.loginWith = credential
	if f.loginErr != nil {
		return f.loginErr
	}
	f.settings = []byte(`{"fresh":"` + credential + `"}`)
	return nil
}

func (f *fakeClient) LoadSettings(blob []byte) error {
	f.loaded = blob
	if f.loadErr != nil {
		return f.loadErr
	}
	f.settings = blob
	return nil
}

func (f *fakeClient) DumpSettings() ([]byte, error) {
	return f.settings, f.dumpErr
}

func (f *fakeClient) Probe(ctx context.Context) error {
	f.probes++
	return f.probeErr
}

func (f *fakeClient) SendDirect(ctx context.Context, text, destination string) error {
	f.sendCalls = append(f.sendCalls, destination)
	if f.onSend != nil {
		f.onSend()
	}
	if len(f.sendErrs) == 0 {
		return nil
	}
	err := f.sendErrs[0]
	f.sendErrs = f.sendErrs[1:]
	return err
}

// recordingSleep captures requested durations and never blocks.
type recordingSleep struct {
	mu    sync.Mutex
	calls []time.Duration
	// cancelAfter, when >0, cancels after that many sleeps.
	cancelAfter int
	cancel      context.CancelFunc
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.calls = append(r.calls, d)
	n := len(r.calls)
	r.mu.Unlock()
	if r.cancelAfter > 0 && n >= r.cancelAfter && r.cancel != nil {
		r.cancel()
	}
	return ctx.Err()
}

type memoryStore struct {
	blob    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load(ctx context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.blob == nil {
		return nil, session.ErrNotFound
	}
	return m.blob, nil
}

func (m *memoryStore) Save(ctx context.Context, blob []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.blob = blob
	return nil
}

type captureReporter struct {
	results []broadcast.CycleResult
}

func (c *captureReporter) ReportCycle(r broadcast.CycleResult) {
	c.results = append(c.results, r)
}

// scriptedDeliverer succeeds for destinations listed in ok.
type scriptedDeliverer struct {
	ok    map[string]bool
	calls []string
	panic bool
}

func (s *scriptedDeliverer) Send(ctx context.Context, message, destination string) bool {
	if s.panic {
		panic("boom")
	}
	s.calls = append(s.calls, destination)
	return s.ok[destination]
}
