package input

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExpandList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipients.txt")
	if err := os.WriteFile(path, []byte("Ops\n\n  Security admins  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		values []string
		stdin  string
		want   []string
	}{
		{"comma separated", []string{"Admins, All users", "Ops"}, "", []string{"Admins", "All users", "Ops"}},
		{"empty parts dropped", []string{",Admins,,"}, "", []string{"Admins"}},
		{"stdin", []string{"-"}, "a\nb\n", []string{"a", "b"}},
		{"file", []string{"Admins", "@" + path}, "", []string{"Admins", "Ops", "Security admins"}},
		{"no values", nil, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandList(tt.values, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("ExpandList: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandListErrors(t *testing.T) {
	if _, err := ExpandList([]string{"-", "-"}, strings.NewReader("x")); err == nil {
		t.Error("expected error for stdin used twice")
	}
	if _, err := ExpandList([]string{"@" + filepath.Join(t.TempDir(), "missing")}, nil); err == nil {
		t.Error("expected error for missing file")
	}
}
