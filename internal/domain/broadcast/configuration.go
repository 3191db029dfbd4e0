// internal/domain/broadcast/configuration.go
package broadcast

// Configuration is everything a broadcast run needs from the operator.
// It is loaded once at startup and never mutated afterwards.
type Configuration struct {
	Credential   string   // Opaque session token (sessionid cookie, bot token, ...)
	Destinations []string // Thread IDs in send order, duplicates allowed
	Message      string   // Already trimmed and truncated
}

// Preview returns at most n characters of the message for log output.
func (c *Configuration) Preview(n int) string {
	r := []rune(c.Message)
	if len(r) <= n {
		return c.Message
	}
	return string(r[:n]) + "..."
}
