package pep1

import (
	"sync"

	"github.com/google/uuid"
)

// SessionRole distinguishes an encoding session from a decoding session in a
// SessionRecord.
type SessionRole uint8

const (
	// RoleEncoder marks a record produced by an EncoderState.
	RoleEncoder SessionRole = iota
	// RoleDecoder marks a record produced by a DecoderState.
	RoleDecoder
)

func (r SessionRole) String() string {
	if r == RoleDecoder {
		return "decoder"
	}
	return "encoder"
}

// SessionRecord is a point-in-time, observational snapshot of one encode or
// decode session (SPEC_FULL.md §3a/§4.8). It holds no cryptographic
// material and is never serialized onto the wire.
type SessionRecord struct {
	ID             uuid.UUID
	Role           SessionRole
	Phase          string
	AuthID         uint32
	BytesProcessed int
}

// SessionRegistry is a mutex-guarded map from session ID to its latest
// SessionRecord, used to make the "independent sessions may run in
// parallel" property of SPEC_FULL.md §5 observable in tests. It is purely
// bookkeeping: EncoderState and DecoderState hold no reference to each
// other's state, and a nil *SessionRegistry disables reporting entirely
// with no behavioral change to the codec itself.
type SessionRegistry struct {
	mu      sync.Mutex
	records map[uuid.UUID]SessionRecord
}

// NewSessionRegistry returns an empty, ready-to-use registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{records: make(map[uuid.UUID]SessionRecord)}
}

func (r *SessionRegistry) update(id uuid.UUID, rec SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id] = rec
}

// Get returns the latest record for id, if any.
func (r *SessionRegistry) Get(id uuid.UUID) (SessionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	return rec, ok
}

// Len returns the number of sessions the registry has ever seen a report from.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Snapshot returns a copy of every record currently held.
func (r *SessionRegistry) Snapshot() []SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SessionRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}
