package taskrun

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/softfab/taskrunner/internal/variables"
)

// WriteStartupScript renders root through the per-language emitter for
// lang and writes it to outputDir/<startup file>, returning the written
// path.
func WriteStartupScript(outputDir string, lang Language, root *variables.OrderedMap) (string, error) {
	return WriteStartupScriptNamed(outputDir, lang, root, StartupFileName(lang))
}

// WriteStartupScriptNamed is WriteStartupScript with an explicit
// basename, used by the abort flavor so its generated script does not
// collide with the execution run's own startup file while both may
// briefly coexist in the same output directory.
func WriteStartupScriptNamed(outputDir string, lang Language, root *variables.OrderedMap, basename string) (string, error) {
	var body string
	switch lang {
	case LangShell:
		body = variables.GenerateShellScript(root)
	case LangBatch:
		body = variables.GenerateBatchScript(root)
	case LangMake:
		body = variables.GenerateMakeInclude(root)
	case LangPerl:
		body = variables.GeneratePerlScript(root)
	case LangPython:
		body = variables.GeneratePythonScript(root)
	case LangRuby:
		body = variables.GenerateRubyScript(root)
	case LangAnt:
		body = variables.GenerateAntProperties(root)
	case LangNAnt:
		body = variables.GenerateNAntProperties(root)
	case LangWSH:
		lines, err := variables.CommonIncludeLines(outputDir)
		if err != nil {
			return "", err
		}
		body = variables.WSHPrelude
		for _, l := range lines {
			body += l + "\n"
		}
		body += variables.GenerateWSHScript(root)
	default:
		return "", fmt.Errorf("unsupported wrapper language %v", lang)
	}

	path := filepath.Join(outputDir, basename)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write startup script %q: %w", path, err)
	}
	return path, nil
}
