// internal/domain/session/store.go
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load when nothing has been persisted yet.
var ErrNotFound = errors.New("persisted session not found")

// Store persists the opaque session blob produced by a platform client.
// The blob format belongs to the client; stores never inspect it.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}
