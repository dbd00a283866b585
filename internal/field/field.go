// Package field implements form field descriptors for the host form
// framework, including the postcode lookup field.
package field

import (
	"html/template"

	"postcode_lookup/internal/addresslookup/transport"
)

// Mode is the context a field is rendered in.
type Mode string

const (
	ModeFrontend Mode = "frontend"
	ModeEditor   Mode = "editor"
	ModeEntry    Mode = "entry"
)

// ModeRule is the validator rule accepting every render mode.
const ModeRule = "oneof=frontend editor entry"

// Input suffixes used in submitted field names (input_<id>.<suffix>).
const (
	SuffixLine1    = "1"
	SuffixLine2    = "2"
	SuffixCity     = "city"
	SuffixCounty   = "county"
	SuffixPostcode = "postcode"
)

// partSuffixes associates address parts with their input suffix.
var partSuffixes = map[string]string{
	transport.PartLine1:    SuffixLine1,
	transport.PartLine2:    SuffixLine2,
	transport.PartCity:     SuffixCity,
	transport.PartCounty:   SuffixCounty,
	transport.PartPostcode: SuffixPostcode,
}

// SuffixFor returns the input suffix for an address part.
func SuffixFor(part string) (string, bool) {
	suffix, ok := partSuffixes[part]
	return suffix, ok
}

// Values holds submitted or saved input values keyed by suffix.
type Values map[string]string

// ValidationResult reports whether submitted values pass field rules.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Descriptor is a field type the host form framework can render,
// validate and export.
type Descriptor interface {
	Type() string
	Render(values Values) (template.HTML, error)
	Validate(values Values) ValidationResult
	ExportValue(values Values) string
}

// Moder is implemented by descriptors whose markup depends on the render mode.
type Moder interface {
	WithMode(mode Mode) Descriptor
}

// Definition is the stored configuration of one field on a form.
type Definition struct {
	ID           int    `yaml:"id" validate:"required,gt=0"`
	FormID       int    `yaml:"-"`
	Type         string `yaml:"type" validate:"required"`
	Label        string `yaml:"label" validate:"required"`
	Description  string `yaml:"description"`
	Required     bool   `yaml:"required"`
	ErrorMessage string `yaml:"error_message"`
	ButtonText   string `yaml:"button_text"`
	Placeholder  string `yaml:"placeholder"`
	Size         string `yaml:"size" validate:"omitempty,oneof=small medium large"`
	CSSClass     string `yaml:"css_class"`
}
