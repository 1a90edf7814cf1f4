package txflow

import "sync"

// MaxErrorLen is the number of characters of a failure message kept in
// PendingAction.LastError.
const MaxErrorLen = 80

// State is a snapshot of a PendingAction.
type State struct {
	Running   bool
	LastError string
}

// PendingAction tracks whether an action group has a run in flight and the
// message of its last failure. The zero value is idle.
type PendingAction struct {
	mu        sync.Mutex
	running   bool
	lastError string
}

// State returns a consistent snapshot.
func (p *PendingAction) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Running: p.running, LastError: p.lastError}
}

// Running reports whether a run is in flight.
func (p *PendingAction) Running() bool {
	return p.State().Running
}

// LastError returns the truncated message of the last failed run, or "".
func (p *PendingAction) LastError() string {
	return p.State().LastError
}

// begin moves Idle -> Running and clears the last error. It returns false
// without touching state when a run is already in flight.
func (p *PendingAction) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	p.running = true
	p.lastError = ""
	return true
}

// end moves Running -> Idle, recording msg as the last error.
func (p *PendingAction) end(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.lastError = Truncate(msg, MaxErrorLen)
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
