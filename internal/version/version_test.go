package version

import "testing"

func TestCurrentVersion(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = " v1.2.3 "
	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected trimmed version, got %q", got)
	}

	Version = "   "
	if got := Current(); got != "dev" {
		t.Fatalf("expected dev fallback, got %q", got)
	}
}

func TestCanonical(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.2.3", "v1.2.3", false},
		{"v1.2.3", "v1.2.3", false},
		{"dev", "dev", false},
		{"", "dev", false},
		{"not-a-version", "", true},
	}
	for _, c := range cases {
		got, err := Canonical(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Canonical(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Canonical(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Canonical(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	ok, err := AtLeast("v2.0.0", "v1.5.0")
	if err != nil || !ok {
		t.Fatalf("AtLeast(v2.0.0, v1.5.0) = %v, %v; want true, nil", ok, err)
	}
	ok, err = AtLeast("v1.0.0", "v1.5.0")
	if err != nil || ok {
		t.Fatalf("AtLeast(v1.0.0, v1.5.0) = %v, %v; want false, nil", ok, err)
	}
	ok, err = AtLeast("dev", "")
	if err != nil || !ok {
		t.Fatalf("AtLeast(dev, \"\") = %v, %v; want true, nil", ok, err)
	}
	if _, err := AtLeast("garbage", "v1.0.0"); err == nil {
		t.Fatal("expected error for invalid version")
	}
}
