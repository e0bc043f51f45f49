package web

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/booksheet/internal/core"
)

// errWriteBusy is returned when another mutation holds the gate for longer
// than the configured wait.
var errWriteBusy = errors.New("another change is in progress")

// DefaultWriteWait is how long a mutation waits for the gate before failing.
const DefaultWriteWait = 10 * time.Second

// writeGate lets one mutation at a time reach the service. Checkout and
// return are several sheet round trips each, and the row numbers they work
// on are only valid while nothing else deletes or appends.
type writeGate struct {
	slot    chan struct{}
	maxWait time.Duration
}

func newWriteGate(maxWait time.Duration) *writeGate {
	if maxWait <= 0 {
		maxWait = DefaultWriteWait
	}
	return &writeGate{slot: make(chan struct{}, 1), maxWait: maxWait}
}

// acquire waits for the gate. The caller must call release when it returns nil.
func (g *writeGate) acquire(ctx context.Context) error {
	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errWriteBusy
	}
}

func (g *writeGate) release() {
	<-g.slot
}

func (g *writeGate) busy() bool {
	return len(g.slot) > 0
}

// drain blocks until the in-flight mutation, if any, finishes or ctx is done.
func (g *writeGate) drain(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		// Held for good: nothing may write after shutdown.
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *writeGate) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.acquire(r.Context()); err != nil {
			if errors.Is(err, errWriteBusy) {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(g.maxWait.Seconds()))))
				writeError(w, http.StatusServiceUnavailable, core.MapError(err))
				return
			}
			writeError(w, http.StatusGatewayTimeout, core.MapError(err))
			return
		}
		defer g.release()
		next.ServeHTTP(w, r)
	})
}
