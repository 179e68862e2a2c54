package audit

// Ring is a fixed-size ring buffer of audit entries. It is not safe for
// concurrent use on its own; Logger serializes access under its mutex.
type Ring struct {
	entries []Entry
	size    int
	pos     int
	full    bool
}

// NewRing creates a ring buffer that retains the last n entries.
func NewRing(n int) *Ring {
	if n <= 0 {
		n = 1
	}
	return &Ring{
		entries: make([]Entry, n),
		size:    n,
	}
}

// Add stores an entry, evicting the oldest once the buffer is full.
func (r *Ring) Add(e Entry) {
	r.entries[r.pos] = e
	r.pos = (r.pos + 1) % r.size
	if r.pos == 0 {
		r.full = true
	}
}

// All returns the stored entries in order, oldest first.
func (r *Ring) All() []Entry {
	if !r.full {
		result := make([]Entry, r.pos)
		copy(result, r.entries[:r.pos])
		return result
	}

	result := make([]Entry, r.size)
	copy(result, r.entries[r.pos:])
	copy(result[r.size-r.pos:], r.entries[:r.pos])
	return result
}

// Last returns the last n entries. If fewer entries exist, returns all of them.
func (r *Ring) Last(n int) []Entry {
	all := r.All()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}
