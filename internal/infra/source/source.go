// internal/infra/source/source.go
package source

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"thread_broadcast_bot/internal/domain/broadcast"
	"thread_broadcast_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Configuration errors. All of them are fatal for the process.
var (
	ErrMissingCredential   = errors.New("session credential is missing or empty")
	ErrMissingDestinations = errors.New("no valid destination IDs found")
	ErrMissingMessage      = errors.New("message content is missing or empty")
	ErrUnreadable          = errors.New("text could not be decoded as UTF-8 or UTF-16")
)

type field int

const (
	fieldCredential field = iota
	fieldDestinations
	fieldMessage
)

func (f field) String() string {
	switch f {
	case fieldCredential:
		return "credential"
	case fieldDestinations:
		return "destinations"
	default:
		return "message"
	}
}

// backend returns the raw bytes of a field. A field that does not exist yields (nil, nil).
type backend interface {
	read(f field) ([]byte, error)
	location(f field) string
}

// Loader resolves a broadcast.Configuration from the configured backend.
type Loader struct {
	backend    backend
	maxMsgLen  int
	logger     *logrus.Entry
	backendTag string
}

// NewLoader selects the backend named in cfg.Backend.
func NewLoader(cfg config.SourceConfig, maxMessageLength int, logger *logrus.Entry) (*Loader, error) {
	var b backend
	switch cfg.Backend {
	case config.SourceFiles, "":
		b = newFileBackend(cfg)
	case config.SourceEnv:
		b = newEnvBackend(cfg)
	case config.SourceHybrid:
		b = &hybridBackend{files: newFileBackend(cfg), env: newEnvBackend(cfg)}
	default:
		return nil, fmt.Errorf("unknown config source backend %q", cfg.Backend)
	}
	return &Loader{backend: b, maxMsgLen: maxMessageLength, logger: logger, backendTag: cfg.Backend}, nil
}

// Load reads and validates all three fields. Any error means the process must not continue.
func (l *Loader) Load() (*broadcast.Configuration, error) {
	l.logger.WithField("backend", l.backendTag).Debug("Loading broadcast configuration")

	credential, err := l.text(fieldCredential)
	if err != nil {
		return nil, err
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, fmt.Errorf("%w (%s)", ErrMissingCredential, l.backend.location(fieldCredential))
	}

	rawDest, err := l.text(fieldDestinations)
	if err != nil {
		return nil, err
	}
	destinations := SplitDestinations(rawDest)
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrMissingDestinations, l.backend.location(fieldDestinations))
	}

	message, err := l.text(fieldMessage)
	if err != nil {
		return nil, err
	}
	message = Truncate(strings.TrimSpace(message), l.maxMsgLen)
	if message == "" {
		return nil, fmt.Errorf("%w (%s)", ErrMissingMessage, l.backend.location(fieldMessage))
	}

	return &broadcast.Configuration{
		Credential:   credential,
		Destinations: destinations,
		Message:      message,
	}, nil
}

func (l *Loader) text(f field) (string, error) {
	raw, err := l.backend.read(f)
	if err != nil {
		return "", fmt.Errorf("reading %s from %s: %w", f, l.backend.location(f), err)
	}
	s, err := Decode(raw)
	if err != nil {
		return "", fmt.Errorf("reading %s from %s: %w", f, l.backend.location(f), err)
	}
	return s, nil
}

// SplitDestinations splits on newlines and commas, dropping blank tokens and keeping order.
func SplitDestinations(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Truncate cuts s to at most n characters (code points, not bytes).
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
