package variables

import "strings"

func quotePythonString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}

func pythonMapLiteral(entries []mapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = quotePythonString(e.Key) + ":" + e.Val
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func pythonSeqLiteral(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

var pythonSyntaxRules = nestedSyntax{
	QuoteString:   quotePythonString,
	NestedMapText: pythonMapLiteral,
	NestedSeqText: pythonSeqLiteral,
	TopScalar: func(name, quoted string) string {
		return name + " = " + quoted + "\n"
	},
	TopMap: func(name string, entries []mapEntry) string {
		return name + " = " + pythonMapLiteral(entries) + "\n"
	},
	TopSeq: func(name string, items []string) string {
		return name + " = " + pythonSeqLiteral(items) + "\n"
	},
}

// GeneratePythonScript renders the Python startup script body for
// root's variables.
func GeneratePythonScript(root *OrderedMap) string {
	e := &NestedEmitter{syntax: pythonSyntaxRules}
	Generate(root, e)
	return strings.Join(e.Output, "")
}
