package avatar

import "errors"

// State is the lifecycle position of an avatar job
type State int

const (
	StateCreated State = iota
	StatePolling
	StateReady
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Terminal reports whether no further polling happens from s
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed || s == StateTimedOut
}

var (
	// ErrFailed is returned when the remote job reports failure
	ErrFailed = errors.New("avatar generation failed")
	// ErrTimedOut is returned when the job is not ready within the poll timeout
	ErrTimedOut = errors.New("timed out waiting for avatar")
	// ErrUnexpectedResponse is returned when a create response has neither a job id nor a model URL
	ErrUnexpectedResponse = errors.New("unexpected create response")
)

// Job tracks one avatar request
type Job struct {
	ID         string `json:"id,omitempty"`
	State      State  `json:"-"`
	AssetURL   string `json:"asset_url,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
	Polls      int    `json:"polls"`
}
