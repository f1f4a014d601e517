package split

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"cssplit/config"
	"cssplit/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Splitter.FileNameTransliterate = transliterate
	if template != "" {
		cfg.Splitter.OutputNameTemplate = template
	}
	return &state.LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t), NoDirs: noDirs}
}

func TestBuildOutputPath(t *testing.T) {
	dst := filepath.Join("out", "dir")
	src := filepath.Join("themes", "dark", "site.css")

	tests := []struct {
		name          string
		noDirs        bool
		transliterate bool
		template      string
		part, parts   int
		want          string
	}{
		{
			name: "default template keeps directories",
			part: 1, parts: 3,
			want: filepath.Join(dst, "themes", "dark", "site_split1.css"),
		},
		{
			name:   "default template without directories",
			noDirs: true,
			part:   2, parts: 3,
			want: filepath.Join(dst, "site_split2.css"),
		},
		{
			name:     "custom template with total",
			noDirs:   true,
			template: `{{ .Name }}.{{ .Part }}-of-{{ .Parts }}`,
			part:     2, parts: 3,
			want: filepath.Join(dst, "site.2-of-3.css"),
		},
		{
			name:     "template with subdirectory and sprig",
			noDirs:   true,
			template: `{{ .Name | upper }}/{{ printf "%03d" .Part }}`,
			part:     7, parts: 12,
			want: filepath.Join(dst, "SITE", "007.css"),
		},
		{
			name:     "broken template falls back to default",
			noDirs:   true,
			template: `{{ .Name `,
			part:     1, parts: 1,
			want: filepath.Join(dst, "site_split1.css"),
		},
		{
			name:     "unknown field falls back to default",
			noDirs:   true,
			template: `{{ .Title }}`,
			part:     1, parts: 1,
			want: filepath.Join(dst, "site_split1.css"),
		},
		{
			name:     "empty expansion falls back to default",
			noDirs:   true,
			template: `{{ if false }}x{{ end }}`,
			part:     4, parts: 4,
			want: filepath.Join(dst, "site_split4.css"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate, tt.template)
			if got := buildOutputPath(src, dst, tt.part, tt.parts, env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildOutputPath_Transliterate(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, true, "")
	got := buildOutputPath("Über Styles.css", "out", 1, 2, env)
	want := filepath.Join("out", "uber-styles_split1.css")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestDetermineOutputDir(t *testing.T) {
	src := filepath.Join("a", "b", "c.css")

	env := setupTestEnvForOutputPath(t, false, false, "")
	if got := determineOutputDir(src, "out", env); got != filepath.Join("out", "a", "b") {
		t.Errorf("determineOutputDir() = %q", got)
	}
	if got := determineOutputDir("c.css", "out", env); got != "out" {
		t.Errorf("determineOutputDir() for bare name = %q", got)
	}

	env.NoDirs = true
	if got := determineOutputDir(src, "out", env); got != "out" {
		t.Errorf("determineOutputDir() with nodirs = %q", got)
	}
}

func TestSplitPath(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a" + sep + "b", 2},
		{sep + "a" + sep + sep + "b" + sep, 2},
		{"." + sep + "a", 1},
	}
	for _, tt := range tests {
		if got := splitPath(tt.in); len(got) != tt.want {
			t.Errorf("splitPath(%q) = %q, want %d segments", tt.in, got, tt.want)
		}
	}
}

func TestExpandTemplate(t *testing.T) {
	values := Values{Name: "site", Source: "themes/site.css", Part: 3, Parts: 5}

	tests := []struct {
		template string
		want     string
	}{
		{"plain", "plain"},
		{"{{ .Name }}_split{{ .Part }}", "site_split3"},
		{"{{ .Source | base }}", "site.css"},
		{"{{ .Context }}", string(config.OutputNameTemplateFieldName)},
		{`{{ if eq .Part .Parts }}last{{ else }}{{ .Part }}{{ end }}`, "3"},
	}
	for _, tt := range tests {
		got, err := expandTemplate(config.OutputNameTemplateFieldName, tt.template, values)
		if err != nil {
			t.Errorf("expandTemplate(%q) error = %v", tt.template, err)
			continue
		}
		if got != tt.want {
			t.Errorf("expandTemplate(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}

	if _, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Name", values); err == nil {
		t.Error("expected parse error")
	}
}
