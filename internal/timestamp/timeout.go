package timestamp

import "time"

// DefaultTimeout is the remote-call budget applied when none is configured.
const DefaultTimeout = Timeout(60000)

// Timeout is a millisecond duration for calls that leave the process. It
// stays a plain integer so it travels through JSON and env config unchanged;
// unsigned because a negative timeout has no meaning.
type Timeout uint64

// Duration converts the timeout for use with contexts and HTTP clients.
func (t Timeout) Duration() time.Duration {
	return time.Duration(t) * time.Millisecond
}
