package variables

import "strings"

func quotePerlString(s string) string {
	escaped := strings.ReplaceAll(s, "'", `'."'".'`)
	return "'" + escaped + "'"
}

func perlMapLiteral(entries []mapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = quotePerlString(e.Key) + "=>" + e.Val
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func perlSeqLiteral(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

var perlSyntaxRules = nestedSyntax{
	QuoteString:   quotePerlString,
	NestedMapText: perlMapLiteral,
	NestedSeqText: perlSeqLiteral,
	TopScalar: func(name, quoted string) string {
		return "our $" + name + " = " + quoted + ";\n"
	},
	TopMap: func(name string, entries []mapEntry) string {
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = quotePerlString(e.Key) + "=>" + e.Val
		}
		return "our %" + name + "=(" + strings.Join(parts, ",") + ");\n"
	},
	TopSeq: func(name string, items []string) string {
		var b strings.Builder
		b.WriteString("our @" + name + "=(" + strings.Join(items, ",") + ");\n")
		// Sequences of pure strings additionally get a space-joined
		// scalar form, for wrappers that expect a flat value.
		if flat, ok := flattenQuotedStrings(items); ok {
			b.WriteString("our $" + name + " = " + quotePerlString(flat) + ";\n")
		}
		return b.String()
	},
}

// flattenQuotedStrings attempts to recover the original unquoted strings
// from a sequence's quoted literal forms, for building the space-joined
// scalar convenience form. Returns false if any item is not a simple
// quoted-string literal (e.g. a nested collection).
func flattenQuotedStrings(quoted []string) (string, bool) {
	parts := make([]string, 0, len(quoted))
	for _, q := range quoted {
		if len(q) < 2 || q[0] != '\'' || q[len(q)-1] != '\'' {
			return "", false
		}
		inner := q[1 : len(q)-1]
		parts = append(parts, strings.ReplaceAll(inner, `'."'".'`, "'"))
	}
	return strings.Join(parts, " "), true
}

// GeneratePerlScript renders the Perl startup script body for root's
// variables.
func GeneratePerlScript(root *OrderedMap) string {
	e := &NestedEmitter{syntax: perlSyntaxRules}
	Generate(root, e)
	return strings.Join(e.Output, "")
}
