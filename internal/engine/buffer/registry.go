package buffer

import "github.com/google/uuid"

// ID identifies a buffer inside a Registry.
type ID uuid.UUID

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

// String returns the canonical UUID form of the ID.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// Resolver looks buffers up by ID. Holders of an ID use it instead of
// keeping the *Buffer itself, so releasing a buffer is visible to them.
type Resolver interface {
	Lookup(id ID) (*Buffer, bool)
}

// Registry owns the live buffers of a session.
type Registry struct {
	buffers map[ID]*Buffer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{buffers: make(map[ID]*Buffer)}
}

// Register adds buf and returns its ID. Registering the same buffer twice
// is a no-op.
func (r *Registry) Register(buf *Buffer) ID {
	r.buffers[buf.id] = buf
	return buf.id
}

// Lookup returns the buffer for id.
func (r *Registry) Lookup(id ID) (*Buffer, bool) {
	buf, ok := r.buffers[id]
	return buf, ok
}

// Release forgets the buffer for id. It reports whether id was registered.
func (r *Registry) Release(id ID) bool {
	if _, ok := r.buffers[id]; !ok {
		return false
	}
	delete(r.buffers, id)
	return true
}

// Len returns the number of registered buffers.
func (r *Registry) Len() int {
	return len(r.buffers)
}
