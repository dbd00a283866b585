// Package forms loads form definitions and exposes their fields to the
// host page builder.
package forms

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"postcode_lookup/internal/field"
	"postcode_lookup/platform/apperr"
	"postcode_lookup/platform/validator"

	"gopkg.in/yaml.v3"
)

//go:embed default_forms.yaml
var defaultForms []byte

// File is the on-disk shape of a form definitions file.
type File struct {
	Forms []FormDefinition `yaml:"forms" validate:"required,min=1,dive"`
}

// FormDefinition describes one form and its fields.
type FormDefinition struct {
	ID     int                `yaml:"id" validate:"required,gt=0"`
	Title  string             `yaml:"title" validate:"required"`
	Fields []field.Definition `yaml:"fields" validate:"required,min=1,dive"`
}

// Form is a loaded form with its built field descriptors.
type Form struct {
	ID     int
	Title  string
	fields map[int]field.Descriptor
	order  []int
}

// FieldIDs returns the field ids in definition order.
func (f *Form) FieldIDs() []int {
	return append([]int(nil), f.order...)
}

// Catalog holds every loaded form. It is read-only after loading.
type Catalog struct {
	forms map[int]*Form
}

// LoadFile reads definitions from path, or the built-in definitions when
// path is empty.
func LoadFile(path string, registry *field.Registry, val *validator.Validator) (*Catalog, error) {
	if path == "" {
		return Parse(defaultForms, registry, val)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forms file: %w", err)
	}
	return Parse(raw, registry, val)
}

// Parse decodes and validates YAML definitions and builds every field.
func Parse(raw []byte, registry *field.Registry, val *validator.Validator) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode forms: %w", err)
	}
	if err := val.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid forms: %s", validator.Describe(err))
	}

	catalog := &Catalog{forms: make(map[int]*Form, len(file.Forms))}
	for _, def := range file.Forms {
		if _, dup := catalog.forms[def.ID]; dup {
			return nil, fmt.Errorf("duplicate form id %d", def.ID)
		}

		form := &Form{ID: def.ID, Title: def.Title, fields: make(map[int]field.Descriptor, len(def.Fields))}
		for _, fd := range def.Fields {
			if _, dup := form.fields[fd.ID]; dup {
				return nil, fmt.Errorf("form %d: duplicate field id %d", def.ID, fd.ID)
			}
			fd.FormID = def.ID
			descriptor, err := registry.Build(fd)
			if err != nil {
				return nil, fmt.Errorf("form %d field %d (%s): %w", def.ID, fd.ID, fd.Type, err)
			}
			form.fields[fd.ID] = descriptor
			form.order = append(form.order, fd.ID)
		}
		catalog.forms[def.ID] = form
	}

	return catalog, nil
}

// Form returns a form by id.
func (c *Catalog) Form(id int) (*Form, error) {
	form, ok := c.forms[id]
	if !ok {
		return nil, apperr.NotFound("form not found")
	}
	return form, nil
}

// Field returns a field descriptor by form and field id.
func (c *Catalog) Field(formID, fieldID int) (field.Descriptor, error) {
	form, err := c.Form(formID)
	if err != nil {
		return nil, err
	}
	descriptor, ok := form.fields[fieldID]
	if !ok {
		return nil, apperr.NotFound("field not found")
	}
	return descriptor, nil
}

// FormIDs returns every form id in ascending order.
func (c *Catalog) FormIDs() []int {
	ids := make([]int, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
