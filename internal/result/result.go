// Package result models a task's outcome and parses the line-oriented
// results file a wrapper script writes before exiting.
package result

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Code is the closed outcome-code enum.
type Code int

const (
	Unknown Code = iota
	OK
	Warning
	Error
	Inspect
	// Ignore suppresses TaskDone reporting entirely. It is never produced
	// by the results-file parser, and no run path sets it: an aborted run
	// reports Error.
	Ignore
)

var codeStrings = [...]string{"unknown", "ok", "warning", "error", "inspect", "ignore"}

func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(codeStrings) {
		return "unknown"
	}
	return codeStrings[c]
}

// ParseCode parses a wire/file code string, excluding "ignore": that code
// is internal-only and never accepted from an external source.
func ParseCode(s string) (Code, error) {
	for i, cs := range codeStrings {
		if cs == "ignore" {
			continue
		}
		if cs == s {
			return Code(i), nil
		}
	}
	return Unknown, fmt.Errorf("invalid result code %q", s)
}

// Result is a task's outcome as reported to the Control Center.
type Result struct {
	Code        Code
	Summary     string
	ExtractCode Code
	HasExtract  bool
	// Reports maps priority to report file path. Priority 0 holds the
	// entry written under the bare "report" key.
	Reports map[uint]string
	// Locators maps "output."+product to its locator value.
	Locators map[string]string
	// Extracted maps "data."+key to its extracted value, verbatim-keyed.
	Extracted map[string]string
}

// New returns a zero-value Result with initialized maps.
func New() Result {
	return Result{
		Reports:   map[uint]string{},
		Locators:  map[string]string{},
		Extracted: map[string]string{},
	}
}

// SortedReportPriorities returns the Reports keys in ascending order.
func (r Result) SortedReportPriorities() []uint {
	out := make([]uint, 0, len(r.Reports))
	for p := range r.Reports {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var linePattern = regexp.MustCompile(`^\s*([\w.]+)\s*=\s*((?:.*\S)?)\s*$`)

// FromExitCode builds the short-circuit Result for a non-zero wrapper
// exit code: the results file is not consulted.
func FromExitCode(exitCode int) Result {
	r := New()
	r.Code = Error
	r.Summary = fmt.Sprintf("wrapper exit code: %d", exitCode)
	return r
}

// ParseFile parses the results file at path.
func ParseFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("missing result file %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses a results-file stream.
func Parse(r io.Reader) (Result, error) {
	res := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			return Result{}, fmt.Errorf("invalid syntax in results file: %q", line)
		}
		if err := res.setProperty(m[1], m[2]); err != nil {
			return Result{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read results file: %w", err)
	}
	return res, nil
}

func (r *Result) setProperty(key, value string) error {
	switch {
	case key == "result":
		code, err := ParseCode(value)
		if err != nil {
			return err
		}
		r.Code = code
	case key == "summary":
		r.Summary = value
	case key == "extraction.result":
		code, err := ParseCode(value)
		if err != nil {
			return err
		}
		r.ExtractCode = code
		r.HasExtract = true
	case strings.HasPrefix(key, "data."):
		r.Extracted[key] = value
	case key == "report":
		r.Reports[0] = value
	case strings.HasPrefix(key, "report."):
		n, err := strconv.ParseUint(strings.TrimPrefix(key, "report."), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid report priority in key %q: %w", key, err)
		}
		r.Reports[uint(n)] = value
	case strings.HasPrefix(key, "output."):
		rest := strings.TrimPrefix(key, "output.")
		idx := strings.LastIndex(rest, ".")
		if idx < 0 || rest[idx+1:] != "locator" {
			return fmt.Errorf("unsupported output property %q", key)
		}
		product := rest[:idx]
		r.Locators["output."+product] = value
	default:
		return fmt.Errorf("unknown results key %q", key)
	}
	return nil
}
