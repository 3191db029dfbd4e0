// internal/app/session_manager.go
package app

import (
	"context"
	"errors"
	"fmt"

	"thread_broadcast_bot/internal/domain/platform"
	"thread_broadcast_bot/internal/domain/session"

	"github.com/sirupsen/logrus"
)

// ErrAuthenticationFailed wraps an irrecoverable credential login failure.
var ErrAuthenticationFailed = errors.New("authentication failed")

// SessionManager produces an authenticated platform client, reusing a persisted
// session when the platform still accepts it.
type SessionManager struct {
	client platform.Client
	store  session.Store
	logger *logrus.Entry
	state  session.State
}

func NewSessionManager(client platform.Client, store session.Store, logger *logrus.Entry) *SessionManager {
	return &SessionManager{
		client: client,
		store:  store,
		logger: logger,
		state:  session.StateNoPersistedSession,
	}
}

// State returns the current step of the authentication state machine.
func (m *SessionManager) State() session.State {
	return m.state
}

// Authenticate runs the state machine once. A non-nil error means the process must abort.
func (m *SessionManager) Authenticate(ctx context.Context, credential string) error {
	blob, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNotFound):
		m.transition(session.StateNoPersistedSession)
		m.logger.Warn("No persisted session found, authenticating with session ID...")
	case err != nil:
		return fmt.Errorf("failed to load persisted session: %w", err)
	default:
		m.transition(session.StatePersistedSessionPresent)
		err := m.resume(ctx, blob)
		if err == nil {
			m.transition(session.StateAuthenticated)
			m.logger.Info("Session loaded successfully")
			return nil
		}
		if !platform.IsSessionExpired(err) {
			return fmt.Errorf("failed to restore persisted session: %w", err)
		}
		m.logger.WithError(err).Warn("Session expired, re-authenticating with session ID...")
		m.transition(session.StateNoPersistedSession)
	}

	if err := m.client.LoginBySession(ctx, credential); err != nil {
		if platform.IsSessionExpired(err) {
			m.logger.Warn("Manual login might be required through the platform app")
		}
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if err := m.Persist(ctx); err != nil {
		return err
	}
	m.transition(session.StateAuthenticated)
	m.logger.Info("Login successful! Session saved")
	return nil
}

// Persist writes the client's current session to the store.
func (m *SessionManager) Persist(ctx context.Context) error {
	blob, err := m.client.DumpSettings()
	if err != nil {
		return fmt.Errorf("failed to dump session settings: %w", err)
	}
	if err := m.store.Save(ctx, blob); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (m *SessionManager) resume(ctx context.Context, blob []byte) error {
	if err := m.client.LoadSettings(blob); err != nil {
		return err
	}
	return m.client.Probe(ctx)
}

func (m *SessionManager) transition(to session.State) {
	if m.state != to {
		m.logger.WithFields(logrus.Fields{"from": m.state, "to": to}).Debug("Session state change")
	}
	m.state = to
}
