package tolapi

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// outcome is the state held for one in-flight logical request: either a
// response served from the cache, or the transport's handle for a live
// exchange. Exactly one of the two is set.
type outcome struct {
	cached    *Response
	transport string
	request   *Request
}

// registry tracks in-flight logical requests. Handles are generated here and
// never reuse the transport's own handles, so cache-served and live requests
// share one uniform key space.
type registry struct {
	mu      sync.Mutex
	pending map[string]outcome
}

func newRegistry() *registry {
	return &registry{pending: make(map[string]outcome)}
}

// register stores the outcome and returns a new opaque handle for it.
func (r *registry) register(o outcome) string {
	handle := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[handle] = o

	return handle
}

// resolve removes and returns the outcome for handle. A handle can be
// resolved exactly once; an unknown or already-consumed handle fails with
// ErrUnknownHandle.
func (r *registry) resolve(handle string) (outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.pending[handle]
	if !ok {
		return outcome{}, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	delete(r.pending, handle)

	return o, nil
}

// size reports the number of outstanding handles.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
