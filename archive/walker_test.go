package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func makeZip(t *testing.T, names ...string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(f)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte("a{}")); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return zipPath
}

func collect(t *testing.T, zipPath, prefix string) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, prefix, func(archive string, file *zip.File) error {
		if archive != zipPath {
			t.Errorf("archive = %s, want %s", archive, zipPath)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		"css/site10.css",
		"css/site2.css",
		"css/readme.txt",
		"css/print.CSS",
		"vendor/reset.css",
		"cssextra/extra.css",
		"index.html",
	)

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"css/print.CSS", "css/site2.css", "css/site10.css", "cssextra/extra.css", "vendor/reset.css"}},
		{"css/", []string{"css/print.CSS", "css/site2.css", "css/site10.css"}},
		{"css", []string{"css/print.CSS", "css/site2.css", "css/site10.css"}},
		{"vendor/reset.css", []string{"vendor/reset.css"}},
		{"nonexistent/", nil},
	}
	for _, tt := range tests {
		t.Run("prefix="+tt.prefix, func(t *testing.T) {
			if got := collect(t, zipPath, tt.prefix); !slices.Equal(got, tt.want) {
				t.Errorf("visited %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	zipPath := makeZip(t, "a.css", "b.css")
	stop := errors.New("stop")

	count := 0
	err := Walk(zipPath, "", func(string, *zip.File) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if count != 1 {
		t.Errorf("walk function called %d times, want 1", count)
	}
}

func TestWalk_UnsafeArchive(t *testing.T) {
	zipPath := makeZip(t, "ok.css", "../escape.css")
	if err := Walk(zipPath, "", func(string, *zip.File) error { return nil }); err == nil {
		t.Error("expected error for archive with path traversal")
	}
}

func TestWalk_NotArchive(t *testing.T) {
	name := filepath.Join(t.TempDir(), "plain.css")
	if err := os.WriteFile(name, []byte("a{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(name, "", func(string, *zip.File) error { return nil }); err == nil {
		t.Error("expected error for non-zip file")
	}
}

func TestUnderPrefix(t *testing.T) {
	tests := []struct {
		name, prefix string
		want         bool
	}{
		{"dir/x.css", "", true},
		{"dir/x.css", "dir", true},
		{"dir/x.css", "dir/", true},
		{"dir2/x.css", "dir", false},
		{"dir/x.css", "dir/x.css", true},
		{"dir/x.cssz", "dir/x.css", false},
	}
	for _, tt := range tests {
		if got := underPrefix(tt.name, tt.prefix); got != tt.want {
			t.Errorf("underPrefix(%q, %q) = %v, want %v", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.css", true},
		{"dir/a.css", true},
		{"dir/..a.css", true},
		{"/abs/a.css", false},
		{`\abs\a.css`, false},
		{"../a.css", false},
		{"dir/../../a.css", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsStylesheet(t *testing.T) {
	for name, want := range map[string]bool{"a.css": true, "A.CSS": true, "a.scss": false, "css": false, "a.css.map": false} {
		if got := IsStylesheet(name); got != want {
			t.Errorf("IsStylesheet(%q) = %v, want %v", name, got, want)
		}
	}
}
