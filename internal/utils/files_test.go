package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileAndPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	b, err := PrettyJSON(map[string]int{"n": 1})
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, "out.json")
	if err := SafeWriteFile(p, b); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "{\n  \"n\": 1\n}" {
		t.Fatalf("content: %q", got)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.yaml", "a.yaml", "c.csv"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := ExpandInputs([]string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "a.yaml"), filepath.Join(dir, "c.csv"), filepath.Join(dir, "missing.csv")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.yaml", "b.yaml", "c.csv"}
	if len(files) != len(want) {
		t.Fatalf("files: %v", files)
	}
	for i, w := range want {
		if filepath.Base(files[i]) != w {
			t.Fatalf("files[%d] = %s, want %s", i, files[i], w)
		}
	}
	if _, err := ExpandInputs([]string{"[bad"}); err == nil {
		t.Fatalf("expected bad pattern error")
	}
}

func TestOutputName(t *testing.T) {
	cases := map[string]string{
		"data/Field 7.yaml": "field-7.json",
		"x/plot_2.csv":      "plot_2.json",
		"/tmp/###.xlsx":     "output.json",
	}
	for in, want := range cases {
		if got := OutputName(in, ".json"); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}
