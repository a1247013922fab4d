package loginform

import "sync"

// DisplayState is a snapshot of the message element
type DisplayState struct {
	Visible bool
	Class   string
	Text    string
}

// StateDisplay is a Display that keeps its state in memory. It backs the
// server-rendered page and the CLI output.
type StateDisplay struct {
	mu    sync.RWMutex
	state DisplayState
}

// NewStateDisplay returns a hidden, empty display
func NewStateDisplay() *StateDisplay {
	return &StateDisplay{}
}

func (d *StateDisplay) SetVisible(visible bool) {
	d.mu.Lock()
	d.state.Visible = visible
	d.mu.Unlock()
}

func (d *StateDisplay) SetClass(class string) {
	d.mu.Lock()
	d.state.Class = class
	d.mu.Unlock()
}

func (d *StateDisplay) SetText(text string) {
	d.mu.Lock()
	d.state.Text = text
	d.mu.Unlock()
}

// State returns the current state
func (d *StateDisplay) State() DisplayState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}
