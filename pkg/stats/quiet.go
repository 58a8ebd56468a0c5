package stats

import (
	"sync"

	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Quiet wraps a Recorder for fire-and-forget call sites: errors are logged
// and dropped. A nil Recorder is allowed.
type Quiet struct {
	r types.Recorder
}

// Quietly returns a Quiet over r.
func Quietly(r types.Recorder) Quiet {
	return Quiet{r: r}
}

func (q Quiet) swallow(event string, err error) {
	if err != nil {
		logger := logging.GetLogger("stats")
		logger.Debug().Err(err).Str("event", event).Msg("usage counter not recorded")
	}
}

// Toggle records a skill toggle.
func (q Quiet) Toggle(skillName string, created bool) {
	if q.r != nil {
		q.swallow("toggle", q.r.RecordToggle(skillName, created))
	}
}

// ProfileApply records a profile apply.
func (q Quiet) ProfileApply(profileID string) {
	if q.r != nil {
		q.swallow("profile_apply", q.r.RecordProfileApply(profileID))
	}
}

// Scan records a repository scan.
func (q Quiet) Scan() {
	if q.r != nil {
		q.swallow("scan", q.r.RecordScan())
	}
}

// Clean records a broken-link cleanup of count links.
func (q Quiet) Clean(count int) {
	if q.r != nil {
		q.swallow("clean", q.r.RecordClean(count))
	}
}

// Async forwards records to a Recorder on a background goroutine so the
// caller never waits on counter I/O. Records are dropped when the buffer is
// full. Close flushes pending records.
type Async struct {
	next   types.Recorder
	events chan func(types.Recorder) error
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

var _ types.Recorder = (*Async)(nil)

// NewAsync starts a forwarding goroutine with the given buffer size.
func NewAsync(next types.Recorder, buffer int) *Async {
	if buffer <= 0 {
		buffer = 64
	}
	a := &Async{
		next:   next,
		events: make(chan func(types.Recorder) error, buffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	logger := logging.GetLogger("stats.async")
	for ev := range a.events {
		if err := ev(a.next); err != nil {
			logger.Debug().Err(err).Msg("usage counter not recorded")
		}
	}
}

func (a *Async) enqueue(ev func(types.Recorder) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	select {
	case a.events <- ev:
	default:
		logger := logging.GetLogger("stats.async")
		logger.Debug().Msg("usage counter buffer full, record dropped")
	}
	return nil
}

// RecordToggle queues a toggle record.
func (a *Async) RecordToggle(skillName string, created bool) error {
	return a.enqueue(func(r types.Recorder) error { return r.RecordToggle(skillName, created) })
}

// RecordProfileApply queues a profile apply record.
func (a *Async) RecordProfileApply(profileID string) error {
	return a.enqueue(func(r types.Recorder) error { return r.RecordProfileApply(profileID) })
}

// RecordScan queues a scan record.
func (a *Async) RecordScan() error {
	return a.enqueue(func(r types.Recorder) error { return r.RecordScan() })
}

// RecordClean queues a cleanup record.
func (a *Async) RecordClean(count int) error {
	return a.enqueue(func(r types.Recorder) error { return r.RecordClean(count) })
}

// Close stops accepting records and waits for pending ones. Records made
// after Close are dropped.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()
	<-a.done
}
