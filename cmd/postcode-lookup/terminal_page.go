package main

import (
	"fmt"
	"io"

	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/internal/field"
	"postcode_lookup/internal/widget"
)

// terminalPage renders the lookup flow as plain text.
type terminalPage struct {
	out      io.Writer
	postcode string
	binding  field.Binding
	inputs   map[string]string
}

func newTerminalPage(postcode string, binding field.Binding, out io.Writer) *terminalPage {
	inputs := make(map[string]string, len(binding))
	for _, id := range binding {
		inputs[id] = ""
	}
	return &terminalPage{out: out, postcode: postcode, binding: binding, inputs: inputs}
}

func (p *terminalPage) PostcodeValue() string { return p.postcode }

func (p *terminalPage) SetLoading(loading bool) {
	if loading {
		fmt.Fprintf(p.out, "Looking up %s...\n", p.postcode)
	}
}

func (p *terminalPage) SetTriggerEnabled(bool) {}
func (p *terminalPage) ClearResults()          {}
func (p *terminalPage) HideResults()           {}
func (p *terminalPage) ShowSearch(bool)        {}
func (p *terminalPage) ShowAddressFields(bool) {}
func (p *terminalPage) SetToggleLabel(string)  {}

func (p *terminalPage) ShowResults(items []widget.ResultItem) {
	for i, item := range items {
		fmt.Fprintf(p.out, "%2d. %s\n", i+1, item.Summary())
	}
}

func (p *terminalPage) SetInput(id, value string) bool {
	if _, ok := p.inputs[id]; !ok {
		return false
	}
	p.inputs[id] = value
	return true
}

// PrintInputs writes the address inputs in display order.
func (p *terminalPage) PrintInputs() {
	for _, part := range transport.Parts {
		id := p.binding[part]
		fmt.Fprintf(p.out, "%-24s %s\n", id, p.inputs[id])
	}
}
