package server

import (
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/session"
)

// flow is the server side of one browser session: the form session created
// after the schema was fetched and a one-shot alert for the next render.
type flow struct {
	// mu is held across the schema fetch so concurrent first requests issue
	// a single remote call.
	mu    sync.Mutex
	state *session.State
	alert string
}

// takeAlert returns the pending alert and clears it.
func (f *flow) takeAlert() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := f.alert
	f.alert = ""
	return msg
}

func (f *flow) setAlert(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alert = msg
}

func (f *flow) session() *session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// flowRegistry maps session ids to flows. Flows not seen for longer than
// ttl are evicted; the sweep runs from get at most every ttl/2.
type flowRegistry struct {
	mu        sync.Mutex
	flows     map[string]*flow
	seen      map[string]time.Time
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newFlowRegistry(ttl time.Duration) *flowRegistry {
	return &flowRegistry{
		flows: make(map[string]*flow),
		seen:  make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

// get returns the flow of id, creating an empty one on first use.
func (r *flowRegistry) get(id string) *flow {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	f, ok := r.flows[id]
	if !ok {
		f = &flow{}
		r.flows[id] = f
	}
	r.seen[id] = now
	return f
}

func (r *flowRegistry) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl/2 {
		return
	}
	r.lastSweep = now
	for id, last := range r.seen {
		if now.Sub(last) > r.ttl {
			delete(r.flows, id)
			delete(r.seen, id)
		}
	}
}

func (r *flowRegistry) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, id)
	delete(r.seen, id)
}

func (r *flowRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
