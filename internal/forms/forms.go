// Package forms holds the catalog of poetic forms offered to the user.
// The analyzer treats a form as an opaque label; nothing here restricts it.
package forms

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sozercan/poetry-assistant/apimodels"
)

//go:embed forms.yaml
var catalogYAML []byte

var catalog = mustParse(catalogYAML)

func mustParse(data []byte) []apimodels.Form {
	forms, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("forms: invalid embedded catalog: %v", err))
	}
	return forms
}

// Parse decodes a YAML list of forms.
func Parse(data []byte) ([]apimodels.Form, error) {
	var forms []apimodels.Form
	if err := yaml.Unmarshal(data, &forms); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(forms))
	for i, f := range forms {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("form %d has no name", i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate form %q", f.Name)
		}
		seen[f.Name] = true
	}
	return forms, nil
}

// All returns the catalog in display order.
func All() []apimodels.Form {
	out := make([]apimodels.Form, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(name string) (apimodels.Form, bool) {
	for _, f := range catalog {
		if f.Name == name {
			return f, true
		}
	}
	return apimodels.Form{}, false
}

// Default is the form preselected in the UI.
func Default() string {
	return catalog[0].Name
}
