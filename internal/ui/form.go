package ui

import (
	"sort"
	"strings"
	"sync"
)

// Form holds the free-form input fields of one action: amounts, token ids,
// listing ids. Commands fill it from flags or arguments and pass Reset as the
// action's success callback, so inputs are cleared only when the action
// succeeded.
type Form struct {
	mu     sync.Mutex
	fields map[string]string
}

// NewForm creates a form with the given field names, all empty.
func NewForm(names ...string) *Form {
	f := &Form{fields: make(map[string]string, len(names))}
	for _, n := range names {
		f.fields[n] = ""
	}
	return f
}

// Set stores a field value.
func (f *Form) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[name] = value
}

// Get returns a field value, or "" if unset.
func (f *Form) Get(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[name]
}

// Missing returns the names of blank fields, sorted.
func (f *Form) Missing() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, v := range f.fields {
		if strings.TrimSpace(v) == "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Reset clears every field. Calling it twice is the same as calling it once.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.fields {
		f.fields[k] = ""
	}
}

// Pairs returns the fields sorted by name for display in a KeyValueBlock.
func (f *Form) Pairs() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.fields))
	for k := range f.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([][2]string, len(names))
	for i, n := range names {
		out[i] = [2]string{n, f.fields[n]}
	}
	return out
}
