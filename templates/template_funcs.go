package templates

import (
	"html/template"
	"strings"
)

// GetTemplateFuncs returns the template function map for HTML templates
func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"lower": strings.ToLower,
		"orElse": func(value, fallback string) string {
			if value != "" {
				return value
			}
			return fallback
		},
	}
}
