package taskrun

import (
	"os"
	"path/filepath"
	"testing"
)

func writeWrapperFile(t *testing.T, dir, wrapperName, basename string) string {
	t.Helper()
	wrapperDir := filepath.Join(dir, wrapperName)
	if err := os.MkdirAll(wrapperDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(wrapperDir, basename)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFindExecuteUsesWrapperBasename(t *testing.T) {
	dir := t.TempDir()
	want := writeWrapperFile(t, dir, "build", "wrapper.sh")

	w, ok := Find([]string{dir}, "build", FlavorExecute)
	if !ok {
		t.Fatal("expected to find the execution wrapper")
	}
	if w.Path != want || w.Lang != LangShell {
		t.Fatalf("Find = %+v, want path %q lang shell", w, want)
	}
}

func TestFindExtractUsesExtractorBasename(t *testing.T) {
	dir := t.TempDir()
	writeWrapperFile(t, dir, "build", "wrapper.sh")
	want := writeWrapperFile(t, dir, "build", "extractor.py")

	w, ok := Find([]string{dir}, "build", FlavorExtract)
	if !ok {
		t.Fatal("expected to find the extraction wrapper")
	}
	if w.Path != want || w.Lang != LangPython {
		t.Fatalf("Find = %+v, want path %q lang python", w, want)
	}
}

func TestFindAbortUsesWrapperAbortBasename(t *testing.T) {
	dir := t.TempDir()
	writeWrapperFile(t, dir, "build", "wrapper.sh")
	want := writeWrapperFile(t, dir, "build", "wrapper_abort.sh")

	w, ok := Find([]string{dir}, "build", FlavorAbort)
	if !ok {
		t.Fatal("expected to find the abort wrapper")
	}
	if w.Path != want {
		t.Fatalf("Find = %+v, want path %q", w, want)
	}
}

func TestFindMissingAbortIsNotFound(t *testing.T) {
	dir := t.TempDir()
	writeWrapperFile(t, dir, "build", "wrapper.sh")

	if _, ok := Find([]string{dir}, "build", FlavorAbort); ok {
		t.Fatal("expected no abort wrapper to be found")
	}
}

func TestFindRespectsExtensionPriority(t *testing.T) {
	dir := t.TempDir()
	writeWrapperFile(t, dir, "build", "wrapper.py")
	want := writeWrapperFile(t, dir, "build", "wrapper.sh")

	w, ok := Find([]string{dir}, "build", FlavorExecute)
	if !ok {
		t.Fatal("expected to find a wrapper")
	}
	if w.Path != want || w.Lang != LangShell {
		t.Fatalf("Find = %+v, want the higher-priority .sh wrapper %q", w, want)
	}
}

func TestFindSearchesDirsInOrder(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeWrapperFile(t, dirB, "build", "wrapper.sh")
	want := writeWrapperFile(t, dirA, "build", "wrapper.sh")

	w, ok := Find([]string{dirA, dirB}, "build", FlavorExecute)
	if !ok {
		t.Fatal("expected to find a wrapper")
	}
	if w.Path != want {
		t.Fatalf("Find = %+v, want the first directory's wrapper %q", w, want)
	}
}

func TestFindNoWrapperDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Find([]string{dir}, "missing", FlavorExecute); ok {
		t.Fatal("expected no wrapper found when the named subdirectory does not exist")
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"build-1":  "build_1",
		"1build":   "X1build",
		"plain":    "plain",
		"a.b c/d":  "a_b_c_d",
	}
	for in, want := range cases {
		if got := sanitizeIdentifier(in); got != want {
			t.Errorf("sanitizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeProducersDetectsCollision(t *testing.T) {
	if _, err := sanitizeProducers([]string{"build-1", "build.1"}); err == nil {
		t.Fatal("expected a collision error for two ids sanitizing to the same string")
	}
}

func TestSanitizeProducersNoCollision(t *testing.T) {
	got, err := sanitizeProducers([]string{"build-1", "test-2"})
	if err != nil {
		t.Fatalf("sanitizeProducers: %v", err)
	}
	if got["build-1"] != "build_1" || got["test-2"] != "test_2" {
		t.Fatalf("sanitizeProducers = %v", got)
	}
}
