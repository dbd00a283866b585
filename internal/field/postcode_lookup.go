package field

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"

	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/platform/sanitize"
)

// TypePostcodeLookup is the registered type name of the postcode lookup field.
const TypePostcodeLookup = "postcode-lookup"

const (
	defaultButtonText     = "Find address"
	defaultRequiredMsg    = "This field is required. Please provide the first line of your address and a postcode."
	toggleManualText      = "Enter your address manually"
	toggleSearchText      = "Find your address by postcode"
	mapsLinkFormat        = `<br><a href="https://maps.google.com/maps?q=%s" target="_blank">View on Google Maps</a>`
	defaultLookupEndpoint = "/api/v1/postcode-lookup"
)

//go:embed templates/postcode_lookup.html
var templateFS embed.FS

var postcodeLookupTmpl = template.Must(template.ParseFS(templateFS, "templates/postcode_lookup.html"))

// PostcodeLookup is a compound address field with a postcode search.
type PostcodeLookup struct {
	ID           int
	FormID       int
	Label        string
	Description  string
	Required     bool
	ErrorMessage string
	ButtonText   string
	Placeholder  string
	Size         string
	CSSClass     string
	Mode         Mode
	Endpoint     string
}

// NewPostcodeLookup builds the field from its stored definition.
func NewPostcodeLookup(def Definition) (Descriptor, error) {
	if def.ID <= 0 {
		return nil, fmt.Errorf("postcode lookup field: invalid id %d", def.ID)
	}
	return PostcodeLookup{
		ID:           def.ID,
		FormID:       def.FormID,
		Label:        def.Label,
		Description:  def.Description,
		Required:     def.Required,
		ErrorMessage: def.ErrorMessage,
		ButtonText:   def.ButtonText,
		Placeholder:  def.Placeholder,
		Size:         def.Size,
		CSSClass:     def.CSSClass,
		Mode:         ModeFrontend,
	}, nil
}

func (f PostcodeLookup) Type() string { return TypePostcodeLookup }

// WithMode returns a copy of the field rendered in the given mode.
func (f PostcodeLookup) WithMode(mode Mode) Descriptor {
	f.Mode = mode
	return f
}

// DOMID is the id of the address inputs container. Editor and entry views
// and forms without an id use the short form.
func (f PostcodeLookup) DOMID() string {
	if f.Mode == ModeEditor || f.Mode == ModeEntry || f.FormID == 0 {
		return fmt.Sprintf("input_%d", f.ID)
	}
	return fmt.Sprintf("input_%d_%d", f.FormID, f.ID)
}

// Binding maps each address part to the id of its input.
func (f PostcodeLookup) Binding() Binding {
	return NewBinding(f.DOMID())
}

type inputView struct {
	Class    string
	Label    string
	ID       string
	Name     string
	Value    string
	Required bool
}

type postcodeLookupView struct {
	Type        string
	CSSClass    string
	DOMID       string
	Endpoint    string
	SizeClass   string
	Placeholder string
	Search      string
	ButtonText  string
	Description string
	ToggleText  string
	ToggleAlt   string
	Disabled    bool
	Inputs      []inputView
}

// inputLayout lists the address inputs in display order. Required inputs
// carry aria-required when the field is required.
var inputLayout = []struct {
	suffix   string
	class    string
	label    string
	required bool
}{
	{SuffixLine1, "address-1", "Address Line 1", true},
	{SuffixLine2, "address-2", "Address Line 2", false},
	{SuffixCity, "address-city", "City", false},
	{SuffixCounty, "address-county", "County", false},
	{SuffixPostcode, "address-postcode", "Postcode", true},
}

// Render produces the field markup with saved values prefilled.
func (f PostcodeLookup) Render(values Values) (template.HTML, error) {
	domID := f.DOMID()

	view := postcodeLookupView{
		Type:        TypePostcodeLookup,
		CSSClass:    f.CSSClass,
		DOMID:       domID,
		Endpoint:    f.endpoint(),
		SizeClass:   f.sizeClass(),
		Placeholder: f.Placeholder,
		Search:      values[SuffixPostcode],
		ButtonText:  f.buttonText(),
		Description: f.Description,
		ToggleText:  toggleManualText,
		ToggleAlt:   toggleSearchText,
		Disabled:    f.Mode == ModeEditor,
		Inputs:      make([]inputView, 0, len(inputLayout)),
	}

	for _, in := range inputLayout {
		view.Inputs = append(view.Inputs, inputView{
			Class:    in.class,
			Label:    in.label,
			ID:       domID + "_" + in.suffix,
			Name:     fmt.Sprintf("input_%d.%s", f.ID, in.suffix),
			Value:    values[in.suffix],
			Required: f.Required && in.required,
		})
	}

	var buf bytes.Buffer
	if err := postcodeLookupTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render postcode lookup field %d: %w", f.ID, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// Validate requires line 1 and the postcode when the field is required.
func (f PostcodeLookup) Validate(values Values) ValidationResult {
	if !f.Required {
		return ValidationResult{Valid: true}
	}
	if strings.TrimSpace(values[SuffixLine1]) != "" && strings.TrimSpace(values[SuffixPostcode]) != "" {
		return ValidationResult{Valid: true}
	}

	message := f.ErrorMessage
	if message == "" {
		message = defaultRequiredMsg
	}
	return ValidationResult{Valid: false, Message: message}
}

// ExportValue joins the parts with single spaces. Line 1 anchors the
// export: nothing is added while the address is still empty.
func (f PostcodeLookup) ExportValue(values Values) string {
	return joinAnchored(values, " ", sanitize.CollapseSpaces)
}

// EntryFormat selects how EntryDetail lays out the address.
type EntryFormat string

const (
	FormatHTML EntryFormat = "html"
	FormatText EntryFormat = "text"
)

// EntryDetail formats saved values for the entry view. HTML output is
// escaped, separated by <br /> and followed by a map link.
func (f PostcodeLookup) EntryDetail(values Values, format EntryFormat) string {
	if format != FormatHTML {
		return joinAnchored(values, "\n", strings.TrimSpace)
	}

	address := joinAnchored(values, "<br />", func(s string) string {
		return html.EscapeString(strings.TrimSpace(s))
	})
	if address == "" {
		return ""
	}

	query := url.QueryEscape(strings.ReplaceAll(address, "<br />", " "))
	return address + fmt.Sprintf(mapsLinkFormat, query)
}

func joinAnchored(values Values, sep string, clean func(string) string) string {
	address := clean(values[SuffixLine1])
	for _, suffix := range []string{SuffixLine2, SuffixCity, SuffixCounty, SuffixPostcode} {
		part := clean(values[suffix])
		if address != "" && part != "" {
			address += sep + part
		}
	}
	return address
}

func (f PostcodeLookup) buttonText() string {
	if strings.TrimSpace(f.ButtonText) == "" {
		return defaultButtonText
	}
	return f.ButtonText
}

func (f PostcodeLookup) sizeClass() string {
	size := f.Size
	if size == "" {
		size = "medium"
	}
	if f.Mode == ModeEntry {
		return size + "_admin"
	}
	return size
}

func (f PostcodeLookup) endpoint() string {
	if f.Endpoint == "" {
		return defaultLookupEndpoint
	}
	return f.Endpoint
}

// Binding maps logical address parts to the DOM ids of their inputs.
type Binding map[string]string

// NewBinding derives the binding for a field container id.
func NewBinding(domID string) Binding {
	binding := make(Binding, len(transport.Parts))
	for _, part := range transport.Parts {
		suffix, _ := SuffixFor(part)
		binding[part] = domID + "_" + suffix
	}
	return binding
}

var (
	_ Descriptor = PostcodeLookup{}
	_ Moder      = PostcodeLookup{}
)
