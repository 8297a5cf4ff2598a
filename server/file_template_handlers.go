package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const layoutTemplate = "layout.html"

var templateFuncs = template.FuncMap{
	"money": func(amount float64) string {
		return fmt.Sprintf("$%.0f", amount)
	},
	"join": strings.Join,
	"split": func(s, sep string) []string {
		parts := strings.Split(s, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	},
}

// ParseTemplate parses a page together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, layoutTemplate, name)
}

// pages holds every parsed page, keyed by file name
type pages struct {
	set map[string]*template.Template
}

func parsePages() (*pages, error) {
	names, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return nil, err
	}

	p := &pages{set: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		p.set[name] = tmpl
	}
	return p, nil
}

// render executes the page into a buffer first so a template failure never
// leaves a half written response.
func (p *pages) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := p.set[name]
	if !ok {
		log.Error().Str("template", name).Msg("Unknown template")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
