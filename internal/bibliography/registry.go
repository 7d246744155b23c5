package bibliography

// Registry is an ordered set of entries with unique ids. Lookup is
// case-sensitive.
type Registry struct {
	entries []*Entry
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add appends e unless an entry with the same id is already present.
// It reports whether e was added.
func (r *Registry) Add(e *Entry) bool {
	if e == nil || e.ID == "" {
		return false
	}
	if _, dup := r.index[e.ID]; dup {
		return false
	}
	r.index[e.ID] = len(r.entries)
	r.entries = append(r.entries, e)
	return true
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id string) (*Entry, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.entries[i], true
}

// Entries returns the entries in load order.
func (r *Registry) Entries() []*Entry {
	if r == nil {
		return nil
	}
	return append([]*Entry(nil), r.entries...)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
