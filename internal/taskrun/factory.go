// Package taskrun implements the Task Run Engine (building a wrapper's
// environment and startup script, launching it, and turning its outcome
// into a Result) and the Run Factory (locating a wrapper by name across
// the configured wrapper directories), grounded on
// ExecutionRunFactory.java / ExtractionRunFactory.java / AbortRunFactory.java
// and ScriptRun.java's surrounding launch machinery.
package taskrun

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Language identifies a wrapper's implementation language, and with it
// the startup-file extension, the variable emitter, and the argv shape.
type Language int

const (
	LangShell Language = iota
	LangBatch
	LangMake
	LangPerl
	LangPython
	LangRuby
	LangAnt
	LangNAnt
	LangWSH
)

func (l Language) String() string {
	switch l {
	case LangShell:
		return "shell"
	case LangBatch:
		return "batch"
	case LangMake:
		return "make"
	case LangPerl:
		return "perl"
	case LangPython:
		return "python"
	case LangRuby:
		return "ruby"
	case LangAnt:
		return "ant"
	case LangNAnt:
		return "nant"
	case LangWSH:
		return "wsh"
	}
	return "unknown"
}

// extensionPriority is the fixed, ordered extension-to-language table the
// Run Factory tries per wrapper, per ExecutionRunFactory.java's
// getWrapperFileFilter. Windows-only extensions are skipped on other
// platforms.
type extCandidate struct {
	ext        string
	lang       Language
	windowsOnly bool
}

var extensionPriority = []extCandidate{
	{".bat", LangBatch, true},
	{".sh", LangShell, false},
	{".mk", LangMake, false},
	{".pl", LangPerl, false},
	{".py", LangPython, false},
	{".rb", LangRuby, false},
	{".xml", LangAnt, false},
	{".build", LangNAnt, false},
	{".vbs", LangWSH, true},
	{".js", LangWSH, true},
}

// Wrapper describes one located wrapper script.
type Wrapper struct {
	Path string
	Lang Language
}

// Flavor selects which suffix/basename variant the factory looks for.
type Flavor int

const (
	FlavorExecute Flavor = iota
	FlavorExtract
	FlavorAbort
)

// baseName returns the fixed basename the Run Factory looks for inside a
// wrapper's directory for this flavor: "wrapper" for execution,
// "extractor" for extraction, "wrapper_abort" for the abort flavor.
func (f Flavor) baseName() string {
	switch f {
	case FlavorExtract:
		return "extractor"
	case FlavorAbort:
		return "wrapper_abort"
	default:
		return "wrapper"
	}
}

// Find searches wrapperDirs, in order, for a wrapper named name in the
// requested flavor, returning the first match per the fixed extension
// priority list. A zero Wrapper with ok false means "no wrapper
// found" — callers treat that as skip (abort/extract) or as a fatal
// ConfigError (execute).
func Find(wrapperDirs []string, name string, flavor Flavor) (Wrapper, bool) {
	base := flavor.baseName()
	for _, dir := range wrapperDirs {
		wrapperDir := filepath.Join(dir, name)
		info, err := os.Stat(wrapperDir)
		if err != nil || !info.IsDir() {
			continue
		}
		for _, cand := range extensionPriority {
			if cand.windowsOnly && runtime.GOOS != "windows" {
				continue
			}
			candidate := filepath.Join(wrapperDir, base+cand.ext)
			if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
				return Wrapper{Path: candidate, Lang: cand.lang}, true
			}
		}
	}
	return Wrapper{}, false
}

// StartupFileName returns the basename the Task Run Engine writes the
// generated startup script under, for w's language.
func StartupFileName(lang Language) string {
	switch lang {
	case LangShell:
		return "startup.sh"
	case LangBatch:
		return "startup.bat"
	case LangMake:
		return "startup.mk"
	case LangPerl:
		return "startup.pl"
	case LangPython:
		return "startup.py"
	case LangRuby:
		return "startup.rb"
	case LangAnt:
		return "startup.xml"
	case LangNAnt:
		return "startup.build"
	case LangWSH:
		return "startup.wsf"
	}
	return "startup"
}

// AbortStartupFileName returns the basename used for the abort flavor's
// generated startup script, distinct from StartupFileName so the two
// can coexist in the same output directory.
func AbortStartupFileName(lang Language) string {
	return "abort_" + StartupFileName(lang)
}

// Argv builds the interpreter invocation for a wrapper of lang whose
// generated startup script lives at startupPath within outputDir, per
// the fixed per-language prefix table.
func Argv(lang Language, outputDir, startupPath string) ([]string, error) {
	switch lang {
	case LangShell:
		return []string{"/bin/sh", startupPath}, nil
	case LangBatch:
		return []string{startupPath}, nil
	case LangMake:
		return []string{"make", "-C", outputDir, "-f", startupPath}, nil
	case LangPerl:
		return []string{"perl", "-w", startupPath}, nil
	case LangPython:
		return []string{"python", "-u", startupPath}, nil
	case LangRuby:
		return []string{"ruby", "--external-encoding=UTF-8", startupPath}, nil
	case LangAnt:
		return []string{"ant", "-f", startupPath}, nil
	case LangNAnt:
		return []string{"nant", "-buildfile:" + startupPath}, nil
	case LangWSH:
		return []string{"CScript", "//Nologo", startupPath}, nil
	}
	return nil, fmt.Errorf("unsupported wrapper language %v", lang)
}

// EnvDeltas returns the fixed per-language environment overrides applied
// on top of the task environment, grounded on the teacher's mergeEnv in
// agent_exec_env.go, generalized from a flat override map to these
// per-language constants.
func EnvDeltas(lang Language) map[string]string {
	switch lang {
	case LangPython:
		return map[string]string{"PYTHONIOENCODING": "UTF-8", "PYTHONUTF8": "1"}
	case LangPerl:
		return map[string]string{"PERL_UNICODE": "SDA"}
	default:
		return nil
	}
}
