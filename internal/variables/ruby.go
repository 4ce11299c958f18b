package variables

import "strings"

func quoteRubyString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}

func rubyMapLiteral(entries []mapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = quoteRubyString(e.Key) + "=>" + e.Val
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func rubySeqLiteral(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

var rubySyntaxRules = nestedSyntax{
	QuoteString:   quoteRubyString,
	NestedMapText: rubyMapLiteral,
	NestedSeqText: rubySeqLiteral,
	TopScalar: func(name, quoted string) string {
		return "$" + name + "=" + quoted + "\n"
	},
	TopMap: func(name string, entries []mapEntry) string {
		return "$" + name + "=" + rubyMapLiteral(entries) + "\n"
	},
	TopSeq: func(name string, items []string) string {
		return "$" + name + "=" + rubySeqLiteral(items) + "\n"
	},
}

// GenerateRubyScript renders the Ruby startup script body for root's
// variables.
func GenerateRubyScript(root *OrderedMap) string {
	e := &NestedEmitter{syntax: rubySyntaxRules}
	Generate(root, e)
	return strings.Join(e.Output, "")
}
