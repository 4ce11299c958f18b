// Package syncloop drives the single cooperative main loop that
// exchanges Synchronize requests with the Control Center and dispatches
// the command stream each reply carries, grounded on SyncLoop.java.
package syncloop

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/softfab/taskrunner/internal/protocol"
	"github.com/softfab/taskrunner/internal/request"
	"github.com/softfab/taskrunner/internal/result"
	"github.com/softfab/taskrunner/internal/runstatus"
	"github.com/softfab/taskrunner/internal/taskrun"
)

// DefaultSyncDelay is the delay used after a Synchronize request that
// failed outright (no response to dispatch), per SyncLoop.java.
const DefaultSyncDelay = 10 * time.Second

// Loop is the sync loop driver. Construct one with New and run it with
// Run, which blocks until ctx is cancelled or the Control Center sends
// <exit/>.
type Loop struct {
	host          string
	runnerVersion string
	queue         *request.Queue
	status        *runstatus.Status
	engineCfg     taskrun.Config
	rawLog        *slog.Logger
	logger        *slog.Logger

	mu      sync.Mutex
	running bool
}

// New returns a Loop. engineCfg is passed to every Task Run Engine this
// loop spawns; rawLog is the ancestor-free monitoring sink handed to
// each engine, and logger receives the loop's own diagnostic lines.
func New(host, runnerVersion string, queue *request.Queue, engineCfg taskrun.Config, rawLog, logger *slog.Logger) *Loop {
	lp := &Loop{
		host:          host,
		runnerVersion: runnerVersion,
		queue:         queue,
		engineCfg:     engineCfg,
		rawLog:        rawLog,
		logger:        logger,
		running:       true,
	}
	lp.status = runstatus.New(lp.reportResult)
	return lp
}

func (lp *Loop) isRunning() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.running
}

func (lp *Loop) setRunning(v bool) {
	lp.mu.Lock()
	lp.running = v
	lp.mu.Unlock()
}

// Run drives the sync loop until ctx is cancelled or the server sends
// <exit/>. After <exit/> it returns once any in-progress run has
// finished.
func (lp *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		cmds, err := lp.syncOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		var delay time.Duration
		if err != nil {
			lp.logger.Warn("synchronize request failed", "err", err)
			delay = DefaultSyncDelay
		} else {
			delay = lp.dispatch(cmds)
		}

		if !lp.isRunning() {
			// After <exit/>, a run still in progress is allowed to
			// finish; RunFinished queues its TaskDone before the slot
			// clears.
			for lp.status.InProgress() && ctx.Err() == nil {
				lp.delay(ctx, DefaultSyncDelay)
			}
			return
		}
		lp.delay(ctx, delay)
	}
}

func (lp *Loop) delay(ctx context.Context, d time.Duration) {
	done := make(chan struct{})
	go func() {
		lp.status.Delay(d)
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

type syncReply struct {
	commands []protocol.Command
	err      error
}

// syncListener is the request.Listener wired to one Synchronize
// submission: a one-slot reply-trigger, per Run Status's SubmitSync
// contract (§4.7/§4.8).
type syncListener struct {
	ch chan syncReply
}

func (l *syncListener) ServerReplied(body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	cmds, perr := protocol.ParseResponse(data)
	l.ch <- syncReply{commands: cmds, err: perr}
	return nil
}

func (l *syncListener) ServerFailed(err error) {
	l.ch <- syncReply{err: err}
}

// syncOnce composes and submits one Synchronize request describing the
// current run (if any), then waits for its reply or ctx cancellation.
func (lp *Loop) syncOnce(ctx context.Context) ([]protocol.Command, error) {
	var currentRun *protocol.RunID
	var shadowID string
	if run, ok := lp.status.Current(); ok {
		if run.ExecuteInfo != nil {
			currentRun = &run.ExecuteInfo.Run
		}
		if run.ExtractInfo != nil {
			shadowID = run.ExtractInfo.ShadowID
		}
	}

	req := protocol.BuildSyncRequest(lp.host, lp.runnerVersion, currentRun, shadowID)
	ch := make(chan syncReply, 1)
	lp.queue.Submit(req, &syncListener{ch: ch})

	select {
	case reply := <-ch:
		return reply.commands, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dispatch applies cmds in document order and returns the delay to wait
// before the next Synchronize, per SyncLoop.java's command table: wait
// accumulates (last one wins), exit ends the loop after this dispatch.
func (lp *Loop) dispatch(cmds []protocol.Command) time.Duration {
	delay := DefaultSyncDelay
	for _, cmd := range cmds {
		switch cmd.Kind {
		case protocol.CommandStart:
			lp.startExecute(cmd.Start)
		case protocol.CommandExtract:
			lp.startExtract(cmd.Extract)
		case protocol.CommandAbort:
			lp.status.AbortTask()
		case protocol.CommandWait:
			delay = time.Duration(cmd.WaitSeconds) * time.Second
		case protocol.CommandExit:
			lp.setRunning(false)
			delay = 0
		default:
			lp.logger.Warn("invalid command in synchronize response, probable protocol version mismatch", "kind", cmd.Kind)
		}
	}
	return delay
}

func (lp *Loop) startExecute(info *protocol.ExecuteRunInfo) {
	if lp.status.InProgress() {
		lp.logger.Warn("start command received while a run is already in progress, ignoring",
			"jobId", info.Run.JobID, "taskId", info.Run.TaskID)
		return
	}
	engine := taskrun.NewEngine(lp.engineCfg, lp.queue, lp.rawLog)
	lp.status.RunStarted(runstatus.Run{ExecuteInfo: info}, engine)
	go func() {
		res := engine.RunExecute(info)
		lp.status.RunFinished(res)
	}()
}

func (lp *Loop) startExtract(info *protocol.ExtractRunInfo) {
	if lp.status.InProgress() {
		lp.logger.Warn("extract command received while a run is already in progress, ignoring",
			"shadowId", info.ShadowID)
		return
	}
	engine := taskrun.NewEngine(lp.engineCfg, lp.queue, lp.rawLog)
	lp.status.RunStarted(runstatus.Run{ExtractInfo: info}, engine)
	go func() {
		res := engine.RunExtract(info)
		lp.status.RunFinished(res)
	}()
}

// reportResult is runstatus.ReportFunc: it is invoked by RunFinished
// while still holding the run monitor, so the TaskDone submission is
// atomic with the run-status transition.
func (lp *Loop) reportResult(run runstatus.Run, res result.Result) {
	switch {
	case run.ExecuteInfo != nil:
		req := protocol.BuildExecutionTaskDone(run.ExecuteInfo.Run, "task.log", res)
		lp.queue.Submit(req, taskDoneListener{logger: lp.logger, page: "TaskDone"})
	case run.ExtractInfo != nil:
		req := protocol.BuildExtractionTaskDone(run.ExtractInfo.ShadowID, res)
		lp.queue.Submit(req, taskDoneListener{logger: lp.logger, page: "TaskDone"})
	}
}

// taskDoneListener discards a successful TaskDone reply body and logs a
// permanent failure; there is nothing further to retry from the loop's
// perspective once the queue has given up.
type taskDoneListener struct {
	logger *slog.Logger
	page   string
}

func (l taskDoneListener) ServerReplied(io.Reader) error { return nil }

func (l taskDoneListener) ServerFailed(err error) {
	l.logger.Warn("task result report failed permanently", "page", l.page, "err", err)
}
