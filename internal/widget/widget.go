// Package widget implements the interaction controller behind a rendered
// postcode lookup field: trigger a lookup, list the candidates, copy the
// chosen one into the bound address inputs.
package widget

import (
	"context"
	"strings"

	"postcode_lookup/internal/addresslookup/transport"
)

// User-facing notification texts.
const (
	MsgInvalidPostcode = "The postcode provided is not valid"
	MsgNoMatches       = "We couldn't find any addresses matching the given postcode"
)

// Toggle label texts.
const (
	ToggleToManual = "Enter your address manually"
	ToggleToSearch = "Find your address by postcode"
)

// KeyEnter is the key name that submits a lookup from the postcode input.
const KeyEnter = "Enter"

// Page is the view the controller drives.
type Page interface {
	// PostcodeValue returns the current text of the postcode search input.
	PostcodeValue() string
	SetLoading(loading bool)
	SetTriggerEnabled(enabled bool)
	ShowResults(items []ResultItem)
	ClearResults()
	HideResults()
	// SetInput writes a value into the input with the given id. It returns
	// false when no such input exists.
	SetInput(id, value string) bool
	ShowSearch(visible bool)
	ShowAddressFields(visible bool)
	SetToggleLabel(label string)
}

// Transport performs the lookup request.
type Transport interface {
	Lookup(ctx context.Context, postcode string) (transport.Envelope, error)
}

// Notifier raises a user-facing message.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// ResultItem is one selectable candidate. Values only holds non-empty parts.
type ResultItem struct {
	Values map[string]string
}

// NewResultItem builds an item from a candidate. The searched postcode is
// kept when the candidate has none of its own.
func NewResultItem(c transport.Candidate, searched string) ResultItem {
	values := make(map[string]string, len(transport.Parts))
	if searched != "" {
		values[transport.PartPostcode] = searched
	}
	for _, part := range transport.Parts {
		if v := strings.TrimSpace(c.Get(part)); v != "" {
			values[part] = v
		}
	}
	return ResultItem{Values: values}
}

// Summary is the visible text of a result item.
type Summary struct {
	FirstLine string
	SubLines  []string
}

func (s Summary) String() string {
	if len(s.SubLines) == 0 {
		return s.FirstLine
	}
	return s.FirstLine + ", " + strings.Join(s.SubLines, ", ")
}

// Summary returns line 1 followed by the remaining non-empty parts.
func (r ResultItem) Summary() Summary {
	s := Summary{FirstLine: r.Values[transport.PartLine1]}
	for _, part := range transport.Parts[1:] {
		if v := r.Values[part]; v != "" {
			s.SubLines = append(s.SubLines, v)
		}
	}
	return s
}
