package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tranco.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTrancoRows(t *testing.T) {
	path := writeList(t, "1,google.com\n2,youtube.com\n3,facebook.com\n")

	got, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"https://google.com", "https://youtube.com", "https://facebook.com"}
	if len(got) != len(want) {
		t.Fatalf("got %d domains, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("domains[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadMalformedRowDegradesToWholeLine(t *testing.T) {
	path := writeList(t, "example.org\n")

	got, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "https://example.org" {
		t.Fatalf("got %v, want [https://example.org]", got)
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := writeList(t, "1,a.com\n\n \n2,b.com\n")

	got, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d domains, want 2", len(got))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
