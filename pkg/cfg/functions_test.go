package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestListFunctionsGo(t *testing.T) {
	src := `package main

func alpha() {}

type T struct{}

func (t *T) beta() int {
	return 1
}

func gamma() {
	helper := func() {}
	helper()
}
`
	path := writeTempFile(t, "main.go", src)
	funcs, err := ListFunctions(path)
	if err != nil {
		t.Fatalf("ListFunctions: %v", err)
	}

	var names []string
	for _, f := range funcs {
		names = append(names, f.Name)
	}
	want := []string{"alpha", "beta", "gamma"}
	if len(names) != len(want) {
		t.Fatalf("got functions %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("function %d: got %q, want %q", i, names[i], name)
		}
	}
	if funcs[0].StartLine != 3 {
		t.Errorf("alpha start line: got %d, want 3", funcs[0].StartLine)
	}
}

func TestListFunctionsPython(t *testing.T) {
	src := `def top():
    pass

class C:
    def method(self):
        def inner():
            pass
        inner()
`
	path := writeTempFile(t, "mod.py", src)
	funcs, err := ListFunctions(path)
	if err != nil {
		t.Fatalf("ListFunctions: %v", err)
	}

	var names []string
	for _, f := range funcs {
		names = append(names, f.Name)
	}
	want := []string{"top", "method", "inner"}
	if len(names) != len(want) {
		t.Fatalf("got functions %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("function %d: got %q, want %q", i, names[i], name)
		}
	}
}

func TestListFunctionsUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "hello")
	if _, err := ListFunctions(path); err == nil {
		t.Error("expected unsupported file type error")
	}
}
