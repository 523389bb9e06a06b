package runtime

import (
	"flockr/domain"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs deliveries of scheduled messages at their send time.
// Each pending message owns one timer, keyed by its id.
type Scheduler struct {
	mu     sync.Mutex
	timers map[domain.MessageID]*time.Timer
	log    *slog.Logger
}

func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[domain.MessageID]*time.Timer),
		log:    log,
	}
}

// Schedule runs deliver at the given time, replacing any earlier
// schedule of the same message. A time in the past fires immediately.
func (s *Scheduler) Schedule(id domain.MessageID, at time.Time, deliver func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.timers[id]; ok {
		previous.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(time.Until(at), func() {
		// Forget the timer before delivering, unless it was replaced meanwhile
		s.mu.Lock()
		if s.timers[id] == timer {
			delete(s.timers, id)
		}
		s.mu.Unlock()
		deliver()
	})
	s.timers[id] = timer
	s.log.Debug("Message scheduled", "message_id", id, "at", at)
}

// Cancel stops a pending delivery. It reports false when nothing was pending.
func (s *Scheduler) Cancel(id domain.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	return timer.Stop()
}

// CancelAll stops every pending delivery.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of deliveries still waiting.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
