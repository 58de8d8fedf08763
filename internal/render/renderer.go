package render

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/tradewind-labs/tradewind/internal/provider"
	"github.com/tradewind-labs/tradewind/internal/stage"
)

//go:embed templates
var templatesFS embed.FS

// File is one rendered output file, addressed relative to the stage
// directory.
type File struct {
	RelPath      string
	Content      []byte
	UserEditable bool
}

// RenderError reports a template failure with enough context to act on:
// the stage, the template file, and the missing variable when the failure
// was an unresolved reference.
type RenderError struct {
	StageID  string
	Template string
	Variable string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("render %s/%s: undefined variable %q", e.StageID, e.Template, e.Variable)
	}
	return fmt.Sprintf("render %s/%s: %v", e.StageID, e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// missingKeyRe matches text/template's missingkey=error message.
var missingKeyRe = regexp.MustCompile(`map has no entry for key "([^"]+)"`)

// Renderer executes a stage's template set against a context.
type Renderer struct {
	funcs template.FuncMap
}

// New returns a Renderer with the sprig function set plus toYaml.
func New() *Renderer {
	funcs := sprig.TxtFuncMap()
	funcs["toYaml"] = toYaml
	return &Renderer{funcs: funcs}
}

// RenderStage renders every template of s that applies to the given provider
// and feature set. Any unresolved variable aborts the stage; partial output
// is never returned.
func (r *Renderer) RenderStage(s stage.Stage, p provider.Provider, features map[string]bool, data map[string]any) ([]File, error) {
	var files []File
	for _, tmpl := range s.Templates {
		if !tmpl.AppliesTo(p, features) {
			continue
		}

		source := path.Join("templates", s.ID, tmpl.Path+".tmpl")
		raw, err := templatesFS.ReadFile(source)
		if err != nil {
			return nil, &RenderError{StageID: s.ID, Template: tmpl.Path, Err: err}
		}

		parsed, err := template.New(tmpl.Path).
			Funcs(r.funcs).
			Option("missingkey=error").
			Parse(string(raw))
		if err != nil {
			return nil, &RenderError{StageID: s.ID, Template: tmpl.Path, Err: err}
		}

		var buf bytes.Buffer
		if err := parsed.Execute(&buf, data); err != nil {
			renderErr := &RenderError{StageID: s.ID, Template: tmpl.Path, Err: err}
			if m := missingKeyRe.FindStringSubmatch(err.Error()); m != nil {
				renderErr.Variable = m[1]
			}
			return nil, renderErr
		}

		files = append(files, File{
			RelPath:      tmpl.Path,
			Content:      buf.Bytes(),
			UserEditable: tmpl.UserEditable,
		})
	}
	return files, nil
}

// toYaml marshals a value as YAML for embedding in templates. Map keys are
// emitted in sorted order so output is stable across runs.
func toYaml(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(out, "\n")), nil
}
