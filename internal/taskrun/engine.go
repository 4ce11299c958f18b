package taskrun

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/softfab/taskrunner/internal/errs"
	"github.com/softfab/taskrunner/internal/process"
	"github.com/softfab/taskrunner/internal/protocol"
	"github.com/softfab/taskrunner/internal/request"
	"github.com/softfab/taskrunner/internal/result"
	"github.com/softfab/taskrunner/internal/variables"
)

// Config is the subset of the loaded configuration the Task Run Engine
// needs to locate wrappers, lay out output directories, and build the
// task environment.
type Config struct {
	ReportBaseDir     string
	ProductBaseDir    string
	ReportBaseURL     string
	WrapperDirs       []string
	ControlCenterURL  string
	GlobalParameters  map[string]string
	ProcessWrapper    string
}

// Engine is a single-use Task Run Engine: one Engine runs exactly one
// execution, extraction, or abort invocation, then is discarded. It
// satisfies runstatus.Runner so the run monitor can abort it without
// depending on taskrun's concrete type.
type Engine struct {
	cfg    Config
	queue  *request.Queue
	rawLog *slog.Logger

	mu          sync.Mutex
	current     *process.Process
	aborted     bool
	wrapperName string
	outputDir   string
	varsRoot    *variables.OrderedMap
}

// NewEngine returns an Engine that submits its optional TaskReport
// advertisement through queue and logs process-wide monitoring lines to
// rawLog. TaskDone reports are submitted by the caller, not the Engine.
func NewEngine(cfg Config, queue *request.Queue, rawLog *slog.Logger) *Engine {
	return &Engine{cfg: cfg, queue: queue, rawLog: rawLog}
}

func errResult(err error) result.Result {
	r := result.New()
	r.Code = result.Error
	r.Summary = err.Error()
	return r
}

func abortedResult() result.Result {
	r := result.New()
	r.Code = result.Error
	r.Summary = (&errs.Aborted{}).Error()
	return r
}

// newTaskLogger opens (creating if needed) a line-oriented log file at
// path and returns a logger writing to it, plus a closer. Grounded on
// ExternalProcess.java writing the user-facing log to the run's own
// report directory, independent of the agent's own log file.
func newTaskLogger(path string) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open task log %q: %w", path, err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

// RunExecute runs one execution wrapper to completion and returns the
// resulting Result.
func (e *Engine) RunExecute(info *protocol.ExecuteRunInfo) result.Result {
	run := info.Run
	wrapperName := info.Task.Parameters["sf.wrapper"]

	w, ok := Find(e.cfg.WrapperDirs, wrapperName, FlavorExecute)
	if !ok {
		return errResult(&errs.ConfigError{Msg: fmt.Sprintf("no execution wrapper found for %q", wrapperName)})
	}

	outputDir := filepath.Join(e.cfg.ReportBaseDir, JobPath(run.JobID), run.TaskID)
	if err := ensureOutputDir(outputDir); err != nil {
		return errResult(&errs.TaskRunError{Msg: "create output directory", Err: err})
	}
	resultsPath := filepath.Join(outputDir, "results.txt")

	root, err := BuildVariables(VarContext{
		ReportRoot:   e.cfg.ReportBaseDir,
		ProductRoot:  e.cfg.ProductBaseDir,
		WrapperRoot:  filepath.Dir(w.Path),
		JobID:        run.JobID,
		TaskID:       run.TaskID,
		Target:       info.Task.Target,
		CCURL:        e.cfg.ControlCenterURL,
		Inputs:       info.Inputs,
		Outputs:      info.Outputs,
		Resources:    info.Resources,
		Parameters:   info.Task.Parameters,
		GlobalParams: e.cfg.GlobalParameters,
		ResultsPath:  resultsPath,
	})
	if err != nil {
		return errResult(&errs.ConfigError{Msg: "build task variables", Err: err})
	}

	e.mu.Lock()
	e.wrapperName = wrapperName
	e.aborted = false
	e.outputDir = outputDir
	e.varsRoot = root
	e.mu.Unlock()

	if e.cfg.ReportBaseURL != "" {
		e.queue.Submit(protocol.BuildTaskReport(run, e.cfg.ReportBaseURL), discardListener{})
	}

	exitCode, aborted, runErr := e.launch(w.Lang, outputDir, root, StartupFileName(w.Lang))
	if runErr != nil {
		return errResult(runErr)
	}
	if aborted {
		return abortedResult()
	}
	if exitCode != 0 {
		return result.FromExitCode(exitCode)
	}

	res, err := result.ParseFile(resultsPath)
	if err != nil {
		return errResult(&errs.TaskRunError{Msg: "parse results file", Err: err})
	}
	return res
}

// RunExtract runs one extraction wrapper to completion and returns the
// resulting Result. Extraction runs have no resources and their output
// directory is keyed by the shadow run id rather than a job/task pair.
func (e *Engine) RunExtract(info *protocol.ExtractRunInfo) result.Result {
	wrapperName := info.Task.Parameters["sf.wrapper"]

	w, ok := Find(e.cfg.WrapperDirs, wrapperName, FlavorExtract)
	if !ok {
		r := result.New()
		r.ExtractCode = result.Error
		r.HasExtract = true
		r.Summary = fmt.Sprintf("no extraction wrapper found for %q", wrapperName)
		return r
	}

	outputDir := filepath.Join(e.cfg.ReportBaseDir, "extract", info.ShadowID)
	if err := ensureOutputDir(outputDir); err != nil {
		return errResult(&errs.TaskRunError{Msg: "create output directory", Err: err})
	}
	resultsPath := filepath.Join(outputDir, "results.txt")

	root, err := BuildVariables(VarContext{
		ReportRoot:   e.cfg.ReportBaseDir,
		ProductRoot:  e.cfg.ProductBaseDir,
		WrapperRoot:  filepath.Dir(w.Path),
		JobID:        "",
		TaskID:       "",
		Target:       info.Task.Target,
		CCURL:        e.cfg.ControlCenterURL,
		Inputs:       info.Inputs,
		Outputs:      info.Outputs,
		Parameters:   info.Task.Parameters,
		GlobalParams: e.cfg.GlobalParameters,
		ResultsPath:  resultsPath,
	})
	if err != nil {
		return errResult(&errs.ConfigError{Msg: "build task variables", Err: err})
	}

	e.mu.Lock()
	e.wrapperName = wrapperName
	e.aborted = false
	e.outputDir = outputDir
	e.varsRoot = root
	e.mu.Unlock()

	exitCode, aborted, runErr := e.launch(w.Lang, outputDir, root, StartupFileName(w.Lang))
	if runErr != nil {
		return errResult(runErr)
	}
	if aborted {
		return abortedResult()
	}
	if exitCode != 0 {
		r := result.New()
		r.ExtractCode = result.Error
		r.HasExtract = true
		r.Summary = fmt.Sprintf("wrapper exit code: %d", exitCode)
		return r
	}

	res, err := result.ParseFile(resultsPath)
	if err != nil {
		return errResult(&errs.TaskRunError{Msg: "parse results file", Err: err})
	}
	return res
}

// launch writes the startup script, spawns the wrapper, and waits for
// it, recording the current process so Abort can reach it.
func (e *Engine) launch(lang Language, outputDir string, root *variables.OrderedMap, basename string) (exitCode int, aborted bool, err error) {
	startupPath, err := WriteStartupScriptNamed(outputDir, lang, root, basename)
	if err != nil {
		return 0, false, &errs.TaskRunError{Msg: "write startup script", Err: err}
	}

	argv, err := Argv(lang, outputDir, startupPath)
	if err != nil {
		return 0, false, &errs.TaskRunError{Msg: "build process invocation", Err: err}
	}
	env := mergeEnv(os.Environ(), EnvDeltas(lang))

	logPath := filepath.Join(outputDir, "task.log")
	userLog, closeLog, err := newTaskLogger(logPath)
	if err != nil {
		return 0, false, &errs.TaskRunError{Msg: "open task log", Err: err}
	}
	defer closeLog()

	e.mu.Lock()
	rawLog := e.rawLog
	e.mu.Unlock()

	proc := process.New(argv, outputDir, env, e.cfg.ProcessWrapper, userLog, rawLog)

	e.mu.Lock()
	e.current = proc
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.current = nil
		e.mu.Unlock()
	}()

	if err := proc.Start(); err != nil {
		return 0, false, &errs.TaskRunError{Msg: "start wrapper process", Err: err}
	}

	code, _ := proc.Wait()

	e.mu.Lock()
	wasAborted := e.aborted
	e.mu.Unlock()

	return code, wasAborted, nil
}

// Abort makes a best-effort attempt to terminate the in-progress run.
// If an abort wrapper is configured for the current wrapper name, it is
// started on a background goroutine; regardless of that wrapper's
// outcome, the running child is terminated directly. Concurrent and
// repeated calls collapse to one, per ExternalProcess.java's Abort
// contract (and the teacher's runCancelableCommand single-shot idiom).
func (e *Engine) Abort() {
	e.mu.Lock()
	if e.aborted {
		e.mu.Unlock()
		return
	}
	e.aborted = true
	proc := e.current
	wrapperName := e.wrapperName
	e.mu.Unlock()

	if w, ok := Find(e.cfg.WrapperDirs, wrapperName, FlavorAbort); ok {
		go e.runAbortWrapper(w)
	}
	if proc != nil {
		proc.Abort()
	}
}

func (e *Engine) runAbortWrapper(w Wrapper) {
	e.mu.Lock()
	outputDir := e.outputDir
	root := e.varsRoot
	e.mu.Unlock()
	if root == nil || outputDir == "" {
		return
	}

	startupPath, err := WriteStartupScriptNamed(outputDir, w.Lang, root, AbortStartupFileName(w.Lang))
	if err != nil {
		e.rawLog.Warn("failed to write abort wrapper startup script", "err", err)
		return
	}
	argv, err := Argv(w.Lang, outputDir, startupPath)
	if err != nil {
		e.rawLog.Warn("failed to build abort wrapper invocation", "err", err)
		return
	}
	env := mergeEnv(os.Environ(), EnvDeltas(w.Lang))

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := process.New(argv, outputDir, env, e.cfg.ProcessWrapper, discard, e.rawLog)
	if err := proc.Start(); err != nil {
		e.rawLog.Warn("failed to start abort wrapper", "err", err)
		return
	}
	proc.Wait()
}
