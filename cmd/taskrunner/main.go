// Command taskrunner is the SoftFab Task Runner agent: it polls a
// Control Center for task descriptors over Synchronize, executes the
// matching wrapper scripts, and reports their outcomes back.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/softfab/taskrunner/internal/config"
	"github.com/softfab/taskrunner/internal/errs"
	"github.com/softfab/taskrunner/internal/process"
	"github.com/softfab/taskrunner/internal/request"
	"github.com/softfab/taskrunner/internal/syncloop"
	"github.com/softfab/taskrunner/internal/taskrun"
	"github.com/softfab/taskrunner/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskrunner: %v\n", err)
		var cfgErr *errs.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/taskrunner/taskrunner.xml", "path to the Task Runner XML configuration file")
	pidFilePath := flag.String("pidfile", "", "path to write the process id file (default: <reportBaseDir>/taskrunner.pid)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return &errs.ConfigError{Msg: "load configuration", Err: err}
	}

	logger, closeLog, err := newLogger(cfg.Generic.LogFile, cfg.Generic.LogLevel)
	if err != nil {
		return &errs.ConfigError{Msg: "set up logging", Err: err}
	}
	defer closeLog()
	slog.SetDefault(logger)

	pidPath := *pidFilePath
	if pidPath == "" {
		pidPath = filepath.Join(cfg.Output.ReportBaseDir, "taskrunner.pid")
	}
	if err := checkNoLiveInstance(pidPath); err != nil {
		return &errs.ConfigError{Msg: "check PID file", Err: err}
	}
	if err := writePIDFile(pidPath); err != nil {
		return &errs.ConfigError{Msg: "write PID file", Err: err}
	}
	defer os.Remove(pidPath)

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	queue := request.New(cfg.ControlCenter.BaseURL(), cfg.ControlCenter.TokenID, cfg.ControlCenter.TokenPass, logger)
	defer queue.Close()

	var wrapperDirs []string
	for _, w := range cfg.Wrappers {
		wrapperDirs = append(wrapperDirs, w.Dir)
	}
	engineCfg := taskrun.Config{
		ReportBaseDir:    cfg.Output.ReportBaseDir,
		ProductBaseDir:   cfg.Output.ProductBaseDir,
		ReportBaseURL:    cfg.Output.ReportBaseURL,
		WrapperDirs:      wrapperDirs,
		ControlCenterURL: cfg.ControlCenter.BaseURL(),
		GlobalParameters: cfg.Parameters,
		ProcessWrapper:   cfg.Generic.ProcessWrapper,
	}

	rawLog := logger.With("component", "wrapper")
	loop := syncloop.New(host, version.Current(), queue, engineCfg, rawLog, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("taskrunner started", "host", host, "version", version.Current(), "controlCenter", cfg.ControlCenter.BaseURL())
	loop.Run(ctx)
	logger.Info("taskrunner stopped")

	return nil
}

// checkNoLiveInstance refuses to start if path names a PID file whose
// recorded process is still alive, so two agents never share one report
// tree. A missing or unparsable PID file is not an error: it either
// means no prior instance ran here, or a stale leftover from a process
// that exited without cleaning up.
func checkNoLiveInstance(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil
	}
	if pid == os.Getpid() {
		return nil
	}
	if process.PIDAlive(pid) {
		return fmt.Errorf("PID file %q names still-running process %d", path, pid)
	}
	return nil
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(pid+"\n"), 0o644); err != nil {
		return fmt.Errorf("write PID file %q: %w", path, err)
	}
	return nil
}

func newLogger(logFile, levelName string) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %q: %w", logFile, err)
		}
		w = f
		closer = func() { f.Close() }
	}

	level, err := parseLevel(levelName)
	if err != nil {
		closer()
		return nil, nil, err
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid logLevel %q", name)
	}
}
