package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

// TemplateData is what a note template is executed against.
type TemplateData struct {
	Name   string // file name, extension included
	Title  string // file name without its extension
	Folder string // containing folder relative to the notes root, "" at the root
	Path   string
}

// initialContent renders notes.template for a new note at path. With no
// template configured a new note starts empty.
func (s *Service) initialContent(path string) ([]byte, error) {
	tmplPath, ok := s.settings.GetString(config.KeyTemplate)
	if !ok {
		return nil, nil
	}
	tmplPath, err := s.resolver.ResolveUserPath(tmplPath)
	if err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(s.fs, tmplPath)
	if err != nil {
		return nil, notefs.Classify("read template", tmplPath, err)
	}
	return renderTemplate(filepath.Base(tmplPath), string(content), s.templateData(path))
}

func (s *Service) templateData(path string) TemplateData {
	name := filepath.Base(path)
	data := TemplateData{
		Name:  name,
		Title: strings.TrimSuffix(name, filepath.Ext(name)),
		Path:  path,
	}
	if root, err := s.resolver.RootPath(); err == nil {
		if rel, err := filepath.Rel(root, filepath.Dir(path)); err == nil && rel != "." {
			data.Folder = rel
		}
	}
	return data
}

func renderTemplate(name, content string, data TemplateData) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
