package runstatus

import (
	"testing"
	"time"

	"github.com/softfab/taskrunner/internal/result"
)

type fakeRunner struct {
	aborted chan struct{}
}

func newFakeRunner() *fakeRunner { return &fakeRunner{aborted: make(chan struct{})} }

func (f *fakeRunner) Abort() { close(f.aborted) }

func TestCurrentBeforeAndAfterRun(t *testing.T) {
	s := New(func(Run, result.Result) {})

	if s.InProgress() {
		t.Fatal("expected no run in progress initially")
	}
	if _, ok := s.Current(); ok {
		t.Fatal("expected Current to report no run")
	}

	run := Run{}
	s.RunStarted(run, newFakeRunner())
	if !s.InProgress() {
		t.Fatal("expected run in progress after RunStarted")
	}

	res := result.New()
	res.Code = result.OK
	s.RunFinished(res)

	if s.InProgress() {
		t.Fatal("expected slot cleared after RunFinished")
	}
	if _, ok := s.Current(); ok {
		t.Fatal("expected Current to report no run after RunFinished")
	}
}

func TestRunFinishedReportsExactlyOnce(t *testing.T) {
	var calls int
	var lastRes result.Result
	s := New(func(run Run, res result.Result) {
		calls++
		lastRes = res
	})

	s.RunStarted(Run{}, newFakeRunner())
	res := result.New()
	res.Code = result.Warning
	res.Summary = "partial"
	s.RunFinished(res)

	// A second RunFinished with no matching RunStarted must be a no-op.
	s.RunFinished(result.New())

	if calls != 1 {
		t.Fatalf("expected exactly one report, got %d", calls)
	}
	if lastRes.Code != result.Warning || lastRes.Summary != "partial" {
		t.Fatalf("unexpected reported result: %+v", lastRes)
	}
}

func TestRunFinishedSuppressesIgnore(t *testing.T) {
	var calls int
	s := New(func(Run, result.Result) { calls++ })

	s.RunStarted(Run{}, newFakeRunner())
	res := result.New()
	res.Code = result.Ignore
	s.RunFinished(res)

	if calls != 0 {
		t.Fatalf("expected result.Ignore to suppress the report callback, got %d calls", calls)
	}
	if s.InProgress() {
		t.Fatal("expected slot cleared even when the report is suppressed")
	}
}

func TestAbortTaskDelegatesToRunner(t *testing.T) {
	s := New(func(Run, result.Result) {})
	runner := newFakeRunner()
	s.RunStarted(Run{}, runner)

	s.AbortTask()

	select {
	case <-runner.aborted:
	case <-time.After(time.Second):
		t.Fatal("expected AbortTask to call Runner.Abort")
	}
}

func TestAbortTaskNoopWithoutRun(t *testing.T) {
	s := New(func(Run, result.Result) {})
	s.AbortTask() // must not panic with no run in progress
}

func TestDelayReturnsEarlyOnRunFinished(t *testing.T) {
	s := New(func(Run, result.Result) {})
	s.RunStarted(Run{}, newFakeRunner())

	done := make(chan struct{})
	go func() {
		s.Delay(time.Minute)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.RunFinished(result.New())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Delay to wake early on RunFinished")
	}
}

func TestDelayTimesOutNormally(t *testing.T) {
	s := New(func(Run, result.Result) {})
	start := time.Now()
	s.Delay(20 * time.Millisecond)
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected Delay to wait at least its timeout, elapsed %s", elapsed)
	}
}
