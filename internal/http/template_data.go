package httpx

import (
	"net/http"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData starts a data map carrying the page metadata and the CSRF token.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	data := map[string]any{
		"Title":       meta.Title,
		"PageTitle":   meta.PageTitle,
		"CurrentPage": meta.CurrentPage,
	}
	if token := GetCSRFToken(r); token != "" {
		data["CSRFToken"] = token
	}
	return &TemplateDataBuilder{data: data}
}

// WithConsole adds the console render model.
func (b *TemplateDataBuilder) WithConsole(v ConsoleView) *TemplateDataBuilder {
	b.data["Console"] = v
	return b
}

// WithError adds a page-level error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = msg
	return b
}

// With adds an arbitrary key.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
