package editor

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips markup from s and returns plain text.
func SanitizeText(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Sanitize returns a copy of form with markup removed from the form name,
// field labels and option labels. Ids, values and formulas are untouched.
func Sanitize(form schema.Form) schema.Form {
	out := form.Clone()
	out.Name = SanitizeText(out.Name)
	for i := range out.Fields {
		field := &out.Fields[i]
		field.Label = SanitizeText(field.Label)
		for j := range field.Options {
			field.Options[j].Label = SanitizeText(field.Options[j].Label)
		}
	}
	return out
}
