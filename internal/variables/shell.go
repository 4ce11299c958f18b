package variables

import (
	"regexp"
	"strings"
)

// shellMetacharacters mirrors ScriptRun.java's quoteParameter: every
// character in this set is backslash-escaped, the rest pass through
// unquoted. An embedded newline is not a metacharacter here — it passes
// through like any other ordinary byte, matching the original, which
// never special-cases it.
var shellMetacharacters = regexp.MustCompile(`[*|&;()<>~` + "`" + `"'\\!$ \t?]`)

func quoteShellValue(s string) string {
	return shellMetacharacters.ReplaceAllStringFunc(s, func(m string) string {
		return "\\" + m
	})
}

// GenerateShellScript renders a POSIX shell startup script body for
// root's variables.
func GenerateShellScript(root *OrderedMap) string {
	f := &FlattenedEmitter{Sep: "_", KeysSuffix: "_KEYS"}
	Generate(root, f)

	var b strings.Builder
	for _, e := range f.Entries {
		b.WriteString(e.Path)
		b.WriteByte('=')
		b.WriteString(quoteShellValue(e.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

// needsBatchQuoting reports whether s contains a character that forces a
// Windows batch value to be wrapped in double quotes, per
// BatchRun.java's quoteParameter; absent any of them the value is
// emitted bare.
func needsBatchQuoting(s string) bool {
	return strings.ContainsAny(s, "&|><^")
}

func quoteBatchValue(s string) string {
	if needsBatchQuoting(s) {
		return `"` + s + `"`
	}
	return s
}

// GenerateBatchScript renders a Windows batch startup script body.
func GenerateBatchScript(root *OrderedMap) string {
	f := &FlattenedEmitter{Sep: "_", KeysSuffix: "_KEYS"}
	Generate(root, f)

	var b strings.Builder
	b.WriteString("@echo off\n")
	for _, e := range f.Entries {
		b.WriteString("set ")
		b.WriteString(e.Path)
		b.WriteByte('=')
		b.WriteString(quoteBatchValue(e.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

// GenerateMakeInclude renders a GNU Make variable-definitions file
// intended to be included by the wrapper's own Makefile.
func GenerateMakeInclude(root *OrderedMap) string {
	f := &FlattenedEmitter{Sep: "_", KeysSuffix: "_KEYS"}
	Generate(root, f)

	var b strings.Builder
	for _, e := range f.Entries {
		b.WriteString(e.Path)
		b.WriteString(" := ")
		b.WriteString(e.Value)
		b.WriteByte('\n')
	}
	return b.String()
}
