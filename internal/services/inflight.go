package services

import "sync"

// Write surfaces. Donation and creation are independent: one of each
// may be outstanding for the same signer at once.
const (
	surfaceDonate = "donate"
	surfaceCreate = "create"
)

// inflightGuard tracks outstanding writes per (signer, surface) and
// rejects re-entrant submissions. Advisory only: it serializes repeated
// clicks from one caller, it is not a ledger-enforced lock.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: make(map[string]struct{})}
}

func (g *inflightGuard) tryAcquire(signer, surface string) bool {
	key := signer + "|" + surface
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *inflightGuard) release(signer, surface string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, signer+"|"+surface)
}
