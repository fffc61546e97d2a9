package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"dsx2srt/config"
	"dsx2srt/uxml"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	SourceFile string
	Dir        string
	Cues       int
	FrameRate  string
	RefID      string
}

func newValues(doc *uxml.Document, src, refID string, cues int) *Values {
	v := &Values{
		Name:       strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		SourceFile: filepath.ToSlash(src),
		Dir:        filepath.ToSlash(filepath.Dir(src)),
		Cues:       cues,
		RefID:      refID,
	}
	if doc != nil {
		v.FrameRate = strings.TrimSpace(doc.FrameRateText)
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values *Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	v := *values
	v.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
