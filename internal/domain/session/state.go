package session

// State is a step of the authentication state machine run at startup.
type State string

const (
	StateNoPersistedSession      State = "NO_PERSISTED_SESSION"
	StatePersistedSessionPresent State = "PERSISTED_SESSION_PRESENT"
	StateAuthenticated           State = "AUTHENTICATED"
)
