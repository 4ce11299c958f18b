package variables

import (
	"strings"
	"testing"
)

func sampleRoot() *OrderedMap {
	root := NewOrderedMap()
	root.Set("SF_INPUTS", SeqValue([]Value{String("A"), String("B")}))
	root.Set("FOO", String("a b"))
	return root
}

func TestGenerateShellScript(t *testing.T) {
	got := GenerateShellScript(sampleRoot())
	if !strings.Contains(got, `SF_INPUTS=A\ B`) {
		t.Errorf("shell script missing flattened sequence: %q", got)
	}
	if !strings.Contains(got, `FOO=a\ b`) {
		t.Errorf("shell script missing escaped scalar: %q", got)
	}
}

func TestGenerateBatchScript(t *testing.T) {
	got := GenerateBatchScript(sampleRoot())
	if !strings.Contains(got, "set SF_INPUTS=A B") {
		t.Errorf("batch script missing sequence: %q", got)
	}
	if !strings.Contains(got, "set FOO=a b") {
		t.Errorf("batch script missing scalar: %q", got)
	}
}

func TestGenerateMakeInclude(t *testing.T) {
	got := GenerateMakeInclude(sampleRoot())
	if !strings.Contains(got, "FOO := a b") {
		t.Errorf("make include missing scalar: %q", got)
	}
}

func TestGenerateAntProperties(t *testing.T) {
	got := GenerateAntProperties(sampleRoot())
	if !strings.Contains(got, `<property name="FOO" value="a b"/>`) {
		t.Errorf("ant properties missing scalar: %q", got)
	}
}

func TestGenerateNAntPropertiesEscapesDollar(t *testing.T) {
	root := NewOrderedMap()
	root.Set("PRICE", String("$5"))
	got := GenerateNAntProperties(root)
	if !strings.Contains(got, `value="${'$'}5"`) {
		t.Errorf("nant properties missing dollar escape: %q", got)
	}
}

func TestFlattenedMapKeysEntry(t *testing.T) {
	root := NewOrderedMap()
	inner := NewOrderedMap()
	inner.Set("x", String("1"))
	inner.Set("y", String("2"))
	root.Set("M", MapValue(inner))
	got := GenerateShellScript(root)
	if !strings.Contains(got, "M_KEYS=x\\ y") {
		t.Errorf("missing KEYS entry: %q", got)
	}
	if !strings.Contains(got, "M_x=1") || !strings.Contains(got, "M_y=2") {
		t.Errorf("missing nested map entries: %q", got)
	}
}

func TestGeneratePythonScript(t *testing.T) {
	got := GeneratePythonScript(sampleRoot())
	if !strings.Contains(got, "SF_INPUTS = ['A', 'B']") {
		t.Errorf("python script missing sequence literal: %q", got)
	}
	if !strings.Contains(got, "FOO = 'a b'") {
		t.Errorf("python script missing scalar: %q", got)
	}
}

func TestGeneratePerlScript(t *testing.T) {
	got := GeneratePerlScript(sampleRoot())
	if !strings.Contains(got, `our @SF_INPUTS=('A','B');`) {
		t.Errorf("perl script missing array literal: %q", got)
	}
	if !strings.Contains(got, `our $SF_INPUTS = 'A B';`) {
		t.Errorf("perl script missing flattened scalar form: %q", got)
	}
	if !strings.Contains(got, `our $FOO = 'a b';`) {
		t.Errorf("perl script missing scalar: %q", got)
	}
}

func TestGeneratePerlScriptEscapesQuote(t *testing.T) {
	root := NewOrderedMap()
	root.Set("MSG", String("it's ok"))
	got := GeneratePerlScript(root)
	if !strings.Contains(got, `it'."'".'s ok`) {
		t.Errorf("perl script missing quote escape: %q", got)
	}
}

func TestGenerateRubyScript(t *testing.T) {
	got := GenerateRubyScript(sampleRoot())
	if !strings.Contains(got, "$FOO='a b'") {
		t.Errorf("ruby script missing scalar: %q", got)
	}
}

func TestGenerateWSHScript(t *testing.T) {
	got := GenerateWSHScript(sampleRoot())
	if !strings.Contains(got, `var FOO = SF_WRAP("a b");`) {
		t.Errorf("wsh script missing scalar: %q", got)
	}
}

func TestNestedMapInPython(t *testing.T) {
	root := NewOrderedMap()
	inner := NewOrderedMap()
	inner.Set("k", String("v"))
	root.Set("OBJ", MapValue(inner))
	got := GeneratePythonScript(root)
	if !strings.Contains(got, "OBJ = {'k':'v'}") {
		t.Errorf("python script missing nested map literal: %q", got)
	}
}
