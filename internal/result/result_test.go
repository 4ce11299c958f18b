package result

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	in := strings.NewReader(`
result = ok
summary = build succeeded
report = log.txt
report.1 = coverage.html
output.jar.locator = /products/app.jar
data.revision = abc123
# a comment
`)
	r, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Code != OK {
		t.Errorf("Code = %v", r.Code)
	}
	if r.Summary != "build succeeded" {
		t.Errorf("Summary = %q", r.Summary)
	}
	if r.Reports[0] != "log.txt" || r.Reports[1] != "coverage.html" {
		t.Errorf("Reports = %v", r.Reports)
	}
	if r.Locators["output.jar"] != "/products/app.jar" {
		t.Errorf("Locators = %v", r.Locators)
	}
	if r.Extracted["data.revision"] != "abc123" {
		t.Errorf("Extracted = %v", r.Extracted)
	}
}

func TestParseInvalidSyntax(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a valid line")); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestParseUnknownKey(t *testing.T) {
	if _, err := Parse(strings.NewReader("bogus.key = v")); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestParseUnsupportedOutputProperty(t *testing.T) {
	if _, err := Parse(strings.NewReader("output.jar.weird = v")); err == nil {
		t.Fatal("expected unsupported output property error")
	}
}

func TestParseCodeRejectsIgnore(t *testing.T) {
	if _, err := ParseCode("ignore"); err == nil {
		t.Fatal("ParseCode must reject the internal-only ignore code")
	}
}

func TestFromExitCode(t *testing.T) {
	r := FromExitCode(7)
	if r.Code != Error || r.Summary != "wrapper exit code: 7" {
		t.Errorf("FromExitCode(7) = %+v", r)
	}
}

func TestSortedReportPriorities(t *testing.T) {
	r := New()
	r.Reports[5] = "a"
	r.Reports[0] = "b"
	r.Reports[2] = "c"
	got := r.SortedReportPriorities()
	want := []uint{0, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("SortedReportPriorities = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedReportPriorities = %v, want %v", got, want)
		}
	}
}
