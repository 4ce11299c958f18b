package variables

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

func quoteWSHString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func wshMapLiteral(entries []mapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = quoteWSHString(e.Key) + ":" + e.Val
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func wshSeqLiteral(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

var wshSyntaxRules = nestedSyntax{
	QuoteString:   quoteWSHString,
	NestedMapText: wshMapLiteral,
	NestedSeqText: wshSeqLiteral,
	TopScalar: func(name, quoted string) string {
		return fmt.Sprintf("var %s = SF_WRAP(%s);\n", name, quoted)
	},
	TopMap: func(name string, entries []mapEntry) string {
		return fmt.Sprintf("var %s = SF_WRAP(%s);\n", name, wshMapLiteral(entries))
	},
	TopSeq: func(name string, items []string) string {
		return fmt.Sprintf("var %s = SF_WRAP(%s);\n", name, wshSeqLiteral(items))
	},
}

// GenerateWSHScript renders the JScript variable-definition body for
// root's variables. It must be embedded within a <script
// language="JScript"> block preceded by WSHPrelude.
func GenerateWSHScript(root *OrderedMap) string {
	e := &NestedEmitter{syntax: wshSyntaxRules}
	Generate(root, e)
	return strings.Join(e.Output, "")
}

// WSHPrelude defines SF_WRAP, which decorates a plain JScript object or
// array with a size()/get(key) introspection pair so that VBScript
// wrapper code (which cannot iterate a JScript object with "for ... in")
// can still enumerate wrapper variables.
const WSHPrelude = `function SF_WRAP(v) {
  if (v === null || typeof v !== "object") return v;
  var keys = [];
  for (var k in v) { keys.push(k); }
  v.size = function() { return keys.length; };
  v.get = function(k) { return v[k]; };
  v.keys = function() { return keys; };
  return v;
}
`

// CommonIncludeLines scans baseDir/common for .vbs and .js files and
// returns one <script language="..." src="..."/> line per match, sorted
// for determinism, to be spliced between WSHPrelude and the generated
// variable-definition body.
func CommonIncludeLines(baseDir string) ([]string, error) {
	fsys := os.DirFS(baseDir)
	var lines []string

	for _, pattern := range []struct {
		glob string
		lang string
	}{
		{"common/**/*.vbs", "VBScript"},
		{"common/**/*.js", "JScript"},
	} {
		matches, err := doublestar.Glob(fsys, pattern.glob)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern.glob, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			lines = append(lines, fmt.Sprintf(`<script language="%s" src="%s"></script>`, pattern.lang, m))
		}
	}
	return lines, nil
}
