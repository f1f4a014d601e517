package split

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"cssplit/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	Name    string // source file name without extension
	Source  string // source path relative to processed input
	Part    int
	Parts   int
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to execute template field %s: %w", name, err)
	}
	return buf.String(), nil
}
