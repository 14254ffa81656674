// Package core provides the template helpers shared by every console template.
package core

import (
	"bytes"
	"errors"
	"html/template"
	"strconv"
	"time"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns the console's template.FuncMap.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"countLabel":   CountLabel,
		"triggerDelay": TriggerDelay,
	}
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}
	return funcs
}

// CountLabel renders the list size as "<n> Users". The plural is kept for 1.
func CountLabel(n int) string {
	return strconv.Itoa(n) + " Users"
}

// TriggerDelay formats d for an hx-trigger delay modifier, e.g. "3000ms".
func TriggerDelay(d time.Duration) string {
	if d <= 0 {
		return "0ms"
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
