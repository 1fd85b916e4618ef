// internal/service/template_service.go
package service

import (
	"strings"
)

// RenderTemplate replaces every {key} in template with its value. Empty
// values render as fallback.
func RenderTemplate(template string, data map[string]string, fallback string) string {
	result := template
	for k, v := range data {
		if strings.TrimSpace(v) == "" {
			v = fallback
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
