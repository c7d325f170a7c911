package importer

import "sync"

// State is a step of an import.
type State int

const (
	Idle State = iota
	Fetching
	Extracting
	Recognizing
	Rendering
	Persisting
	Done
	Failed
	TimedOut
	Cancelled
)

var stateNames = [...]string{
	Idle:        "idle",
	Fetching:    "fetching",
	Extracting:  "extracting",
	Recognizing: "recognizing",
	Rendering:   "rendering",
	Persisting:  "persisting",
	Done:        "done",
	Failed:      "failed",
	TimedOut:    "timed out",
	Cancelled:   "cancelled",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether s ends an import.
func (s State) Terminal() bool {
	return s >= Done
}

// Tracker is the observable state of one import. Once a terminal state is
// reached it no longer changes. A nil *Tracker ignores updates.
type Tracker struct {
	mu        sync.Mutex
	state     State
	err       error
	listeners []func(State)
}

// NewTracker returns a tracker in the Idle state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns the current state.
func (t *Tracker) State() State {
	if t == nil {
		return Idle
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure that ended the import, if any.
func (t *Tracker) Err() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// OnChange registers fn to be called after every state change.
func (t *Tracker) OnChange(fn func(State)) {
	if t == nil || fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Tracker) set(s State) {
	t.finish(s, nil)
}

func (t *Tracker) finish(s State, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.state.Terminal() || t.state == s {
		t.mu.Unlock()
		return
	}
	t.state = s
	t.err = err
	listeners := append([]func(State){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
