package vtengine

// SetUserVar assigns a named user variable, as set via OSC 1337 SetUserVar=name=value
// (iTerm2 style, value base64-encoded on the wire and decoded before reaching here).
func (t *Terminal) SetUserVar(name, value string) {
	if t.middleware != nil && t.middleware.SetUserVar != nil {
		t.middleware.SetUserVar(name, value, t.setUserVarInternal)
		return
	}
	t.setUserVarInternal(name, value)
}

func (t *Terminal) setUserVarInternal(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.userVars == nil {
		t.userVars = make(map[string]string)
	}
	t.userVars[name] = value
}

// GetUserVar returns the value of a user variable, or "" if it is not set.
func (t *Terminal) GetUserVar(name string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userVars[name]
}

// GetUserVars returns a copy of all currently set user variables.
func (t *Terminal) GetUserVars() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]string, len(t.userVars))
	for k, v := range t.userVars {
		out[k] = v
	}
	return out
}

// ClearUserVars removes all user variables.
func (t *Terminal) ClearUserVars() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.userVars = make(map[string]string)
}
