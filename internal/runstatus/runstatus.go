// Package runstatus mediates between the sync loop and the at-most-one
// task run goroutine, grounded on RunStatus.java: a single-slot monitor
// with the invariant runThread == nil iff runInfo == nil.
package runstatus

import (
	"sync"
	"time"

	"github.com/softfab/taskrunner/internal/protocol"
	"github.com/softfab/taskrunner/internal/result"
)

// Run describes the in-progress run for status-reporting purposes.
type Run struct {
	ExecuteInfo *protocol.ExecuteRunInfo
	ExtractInfo *protocol.ExtractRunInfo
}

// Runner is the interface a task run goroutine exposes to the monitor so
// it can be aborted without runstatus knowing how a run is actually
// executed.
type Runner interface {
	Abort()
}

// ReportFunc is invoked, still holding the monitor, when a run finishes
// with a reportable code. Wiring this to the request queue is the
// caller's responsibility (see syncloop.Loop.reportResult).
type ReportFunc func(run Run, res result.Result)

// Status is the single-slot run monitor.
type Status struct {
	mu     sync.Mutex
	run    *Run
	runner Runner
	report ReportFunc
	wake   chan struct{}
}

// New returns an empty Status. report is called under the monitor's lock
// whenever a run finishes with a code other than result.Ignore.
func New(report ReportFunc) *Status {
	return &Status{report: report}
}

// InProgress reports whether a task run currently holds the slot.
func (s *Status) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

// Current returns the in-progress run, if any.
func (s *Status) Current() (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return Run{}, false
	}
	return *s.run, true
}

// RunStarted occupies the slot. Callers must ensure at most one run is
// started before the matching RunFinished.
func (s *Status) RunStarted(run Run, runner Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = &run
	s.runner = runner
}

// RunFinished clears the slot and, if code != result.Ignore, invokes the
// report callback — atomically, under the same lock, so a concurrent
// SubmitSync cannot observe the run as both finished and still
// in-progress.
func (s *Status) RunFinished(res result.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return
	}
	run := *s.run
	s.run = nil
	s.runner = nil
	if res.Code != result.Ignore {
		s.report(run, res)
	}
	if s.wake != nil {
		close(s.wake)
		s.wake = nil
	}
}

// AbortTask delegates to the current run's Runner; a no-op if no run is
// in progress.
func (s *Status) AbortTask() {
	s.mu.Lock()
	runner := s.runner
	s.mu.Unlock()
	if runner != nil {
		runner.Abort()
	}
}

// Delay waits up to d for a RunFinished notification, whichever comes
// first.
func (s *Status) Delay(d time.Duration) {
	s.mu.Lock()
	if s.wake == nil {
		s.wake = make(chan struct{})
	}
	wake := s.wake
	s.mu.Unlock()

	select {
	case <-wake:
	case <-time.After(d):
	}
}
