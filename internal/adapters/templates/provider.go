// Package templates renders the initial content of memory bank documents
// from templates embedded in the binary.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"memorybank/internal/domain"
	"memorybank/internal/ports"
)

//go:embed templates/*.md
var files embed.FS

const dateLayout = "2006-01-02"

// data is what every template is rendered with
type data struct {
	Title  string
	Schema string
	Date   string
}

// Provider implements ports.TemplateProvider. Templates are parsed once in
// NewProvider and never change afterwards.
type Provider struct {
	templates map[domain.DocumentType]*template.Template
	now       func() time.Time
}

// Ensure Provider implements TemplateProvider
var _ ports.TemplateProvider = (*Provider)(nil)

// Option configures a Provider
type Option func(*Provider)

// WithClock sets the time source used for the created/updated dates
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProvider parses the template of every document type
func NewProvider(opts ...Option) (*Provider, error) {
	p := &Provider{
		templates: make(map[domain.DocumentType]*template.Template),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, dt := range domain.AllDocumentTypes() {
		name := dt.String() + ".md"
		raw, err := files.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", name, err)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		p.templates[dt] = tmpl
	}
	return p, nil
}

// TemplateFor renders the initial content for docType
func (p *Provider) TemplateFor(docType domain.DocumentType) (string, error) {
	tmpl, ok := p.templates[docType]
	if !ok {
		return "", fmt.Errorf("%w: %d", domain.ErrUnknownDocument, int(docType))
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data{
		Title:  docType.Title(),
		Schema: docType.Schema().String(),
		Date:   p.now().Format(dateLayout),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", docType, err)
	}
	return buf.String(), nil
}
