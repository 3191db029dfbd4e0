package platform

import "context"

// Client defines the operations the bot needs from a messaging platform.
// This keeps the application logic independent of any specific platform SDK.
type Client interface {
	// LoginBySession authenticates using an opaque session credential.
	LoginBySession(ctx context.Context, credential string) error
	// LoadSettings restores client state from a blob produced by DumpSettings.
	LoadSettings(blob []byte) error
	// DumpSettings serialises the current authenticated state.
	DumpSettings() ([]byte, error)
	// Probe performs a cheap read-only call to check the session is still valid.
	Probe(ctx context.Context) error
	// SendDirect delivers text to a single conversation thread.
	SendDirect(ctx context.Context, text, destination string) error
}
