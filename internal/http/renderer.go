package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TemplateRenderer renders the server-side pages.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing layout.tmpl and pages/*.tmpl (required)
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses the layout and page templates.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}

	renderer := &TemplateRenderer{logger: cfg.Logger}

	var t *template.Template
	t, err := template.New("root").Funcs(templateFuncs(&t)).ParseFS(cfg.TemplateFS, "*.tmpl", "pages/*.tmpl")
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("template parsing failed",
				slog.Any("error", err),
				slog.String("phase", "initialization"),
			)
		}
		return nil, err
	}
	renderer.t = t
	return renderer, nil
}

// ContentTemplateFor returns the template name that renders the body of page.
func ContentTemplateFor(page string) string {
	return "content-" + page
}

// RenderFull renders the layout with the page body for data.Page.
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, status int, data PageData) error {
	return r.renderTemplate(w, status, "layout", data)
}

// RenderPartial renders only the page body, for htmx swaps.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, status int, data PageData) error {
	return r.renderTemplate(w, status, ContentTemplateFor(data.Page), data)
}

func (r *TemplateRenderer) renderTemplate(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logTemplateError(name, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to write rendered template",
				slog.String("template", name),
				slog.Any("error", err),
			)
		}
		return err
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(name string, err error) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.Error("template execution failed",
		slog.String("template", name),
		slog.Any("error", err),
	)
}

func templateFuncs(t **template.Template) template.FuncMap {
	return template.FuncMap{
		"renderSection": func(page string, data any) (template.HTML, error) {
			if t == nil || *t == nil {
				return "", errors.New("template not initialized")
			}
			var buf bytes.Buffer
			if err := (*t).ExecuteTemplate(&buf, ContentTemplateFor(page), data); err != nil {
				return "", err
			}
			// #nosec G203 - output of our own html/template set; values were escaped during execution.
			return template.HTML(buf.String()), nil
		},
		"year": func() int { return time.Now().Year() },
		"initials": func(first, last string) string {
			var b strings.Builder
			for _, s := range []string{first, last} {
				if r := []rune(strings.TrimSpace(s)); len(r) > 0 {
					b.WriteString(strings.ToUpper(string(r[0])))
				}
			}
			return b.String()
		},
	}
}
