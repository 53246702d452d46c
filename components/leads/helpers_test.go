package leads

import (
	"sync"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleLeads() []Lead {
	return []Lead{
		{ID: "LD-1", Name: "Olivia Bennett", Email: "olivia@example.com", Status: StatusNew, AssignedAgent: "Sarah Jenkins", Value: 300000, LastActivity: day("2025-03-04T10:00:00Z")},
		{ID: "LD-2", Name: "Liam Carter", Email: "liam@brightpath.io", Status: StatusQualified, AssignedAgent: "Mike Ross", Value: 500000, LastActivity: day("2025-03-02T09:00:00Z")},
		{ID: "LD-3", Name: "Emma Thompson", Email: "emma@example.com", Status: StatusNew, AssignedAgent: "Sarah Jenkins", Value: 200000, LastActivity: day("2025-03-04T21:30:00-05:00")},
		{ID: "LD-4", Name: "Noah Alvarez", Email: "noah@harborview.com", Status: StatusLost, AssignedAgent: "Harvey Specter", Value: 500000, LastActivity: day("2025-03-01T08:15:00Z")},
		{ID: "LD-5", Name: "Ava Mitchell", Email: "ava@example.com", Status: StatusContacted, AssignedAgent: "Jessica Pearson", Value: 150000, LastActivity: day("2025-03-02T11:45:00Z")},
	}
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeTimers collects scheduled callbacks so tests decide when they run.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// FireAll runs every pending callback that was not stopped.
func (c *fakeTimers) FireAll() {
	c.mu.Lock()
	pending := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range pending {
		if !t.stopped {
			t.f()
		}
	}
}

// Scheduled returns the timers that have not fired yet.
func (c *fakeTimers) Scheduled() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.timers...)
}
