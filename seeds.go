package formflow

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

//go:embed seeds/forms.yaml
var embeddedSeeds embed.FS

type seedDocument struct {
	Forms []schema.Form `yaml:"forms"`
}

// SeedForms returns the example forms shipped with the module. The saved-form
// library lists them until the first form is saved.
func SeedForms() ([]schema.Form, error) {
	data, err := embeddedSeeds.ReadFile("seeds/forms.yaml")
	if err != nil {
		return nil, fmt.Errorf("formflow: read seeds: %w", err)
	}
	return ParseSeeds(data)
}

// ParseSeeds decodes a YAML (or JSON) document holding a top level "forms"
// list. Every form must pass schema validation.
func ParseSeeds(data []byte) ([]schema.Form, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("formflow: parse seeds: %w", err)
	}
	if len(doc.Forms) == 0 {
		return nil, errors.New("formflow: seed document has no forms")
	}
	for _, form := range doc.Forms {
		if err := form.Validate(); err != nil {
			return nil, fmt.Errorf("formflow: seed %q: %w", form.Name, err)
		}
	}
	return doc.Forms, nil
}
