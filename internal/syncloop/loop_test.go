package syncloop

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/softfab/taskrunner/internal/protocol"
	"github.com/softfab/taskrunner/internal/request"
	"github.com/softfab/taskrunner/internal/taskrun"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchWaitLastOneWins(t *testing.T) {
	lp := &Loop{logger: discardLogger(), running: true}
	cmds := []protocol.Command{
		{Kind: protocol.CommandWait, WaitSeconds: 5},
		{Kind: protocol.CommandWait, WaitSeconds: 30},
	}
	got := lp.dispatch(cmds)
	if got != 30*time.Second {
		t.Fatalf("expected last wait to win, got %s", got)
	}
}

func TestDispatchExitStopsLoopAndZeroesDelay(t *testing.T) {
	lp := &Loop{logger: discardLogger(), running: true}
	cmds := []protocol.Command{
		{Kind: protocol.CommandWait, WaitSeconds: 60},
		{Kind: protocol.CommandExit},
	}
	got := lp.dispatch(cmds)
	if got != 0 {
		t.Fatalf("expected exit to zero the delay, got %s", got)
	}
	if lp.isRunning() {
		t.Fatal("expected exit to clear running")
	}
}

func TestDispatchAbortWithNoRunIsNoop(t *testing.T) {
	q := request.New("http://example.invalid/", "id", "pass", discardLogger())
	defer q.Close()
	lp := New("host", "1.0.0", q, taskrun.Config{}, discardLogger(), discardLogger())

	cmds := []protocol.Command{{Kind: protocol.CommandAbort}}
	lp.dispatch(cmds) // must not panic
}

func TestDispatchDefaultDelayWithNoCommands(t *testing.T) {
	lp := &Loop{logger: discardLogger(), running: true}
	got := lp.dispatch(nil)
	if got != DefaultSyncDelay {
		t.Fatalf("expected default sync delay with no wait command, got %s", got)
	}
}
