// Package prompts holds the embedded prompt catalogue and renders prompts into provider requests.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"reflect"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"agencydesk/internal/providers/llm"
)

//go:embed catalogue/*.yaml
var catalogueFS embed.FS

// ErrUnknownPrompt is returned when a prompt id is not in the catalogue.
var ErrUnknownPrompt = errors.New("unknown prompt")

type entry struct {
	ID          string  `yaml:"id"`
	System      string  `yaml:"system"`
	Template    string  `yaml:"template"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	tmpl *template.Template
}

// Catalogue is a parsed set of prompts keyed by id.
type Catalogue struct {
	entries map[string]*entry
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"deref": func(v any) any {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil
			}
			return rv.Elem().Interface()
		}
		return v
	},
}

// Load parses the embedded catalogue.
func Load() (*Catalogue, error) {
	return LoadFS(catalogueFS, "catalogue")
}

// LoadFS parses every .yaml file under dir in fsys.
func LoadFS(fsys fs.FS, dir string) (*Catalogue, error) {
	c := &Catalogue{entries: make(map[string]*entry)}

	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt files: %w", err)
	}

	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var entries []*entry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for _, e := range entries {
			if e.ID == "" {
				return nil, fmt.Errorf("%s: prompt without id", name)
			}
			if _, dup := c.entries[e.ID]; dup {
				return nil, fmt.Errorf("%s: duplicate prompt id %q", name, e.ID)
			}
			tmpl, err := template.New(e.ID).Funcs(funcs).Option("missingkey=zero").Parse(e.Template)
			if err != nil {
				return nil, fmt.Errorf("%s: prompt %q: %w", name, e.ID, err)
			}
			e.tmpl = tmpl
			c.entries[e.ID] = e
		}
	}
	return c, nil
}

// IDs returns the prompt ids in sorted order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build renders prompt id with data into a provider request.
func (c *Catalogue) Build(id string, data any) (llm.Request, error) {
	e, ok := c.entries[id]
	if !ok {
		return llm.Request{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, id)
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return llm.Request{}, fmt.Errorf("failed to render prompt %s: %w", id, err)
	}

	return llm.Request{
		System:      strings.TrimSpace(e.System),
		Prompt:      strings.TrimSpace(buf.String()),
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
	}, nil
}
