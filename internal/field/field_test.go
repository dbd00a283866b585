package field

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"postcode_lookup/internal/addresslookup/transport"
)

func newField(t *testing.T, def Definition) PostcodeLookup {
	t.Helper()
	d, err := NewPostcodeLookup(def)
	if err != nil {
		t.Fatalf("build field: %v", err)
	}
	return d.(PostcodeLookup)
}

func TestRenderPrefillsSavedValues(t *testing.T) {
	f := newField(t, Definition{ID: 4, FormID: 2, Type: TypePostcodeLookup, Label: "Address", Required: true})

	markup, err := f.Render(Values{SuffixLine1: "1 High St", SuffixPostcode: "LS1 1AA"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(markup)

	for _, want := range []string{
		`class="ginput_container ginput_complex ginput_container_postcode-lookup"`,
		`id="input_2_4"`,
		`id="input_2_4_1" name="input_4.1" value="1 High St" aria-required="true"`,
		`id="input_2_4_postcode" name="input_4.postcode" value="LS1 1AA" aria-required="true"`,
		`id="input_2_4_2" name="input_4.2" value=""`,
		`name="input_4.city"`,
		`name="input_4.county"`,
		`>Find address</a>`,
		`data-default="Enter your address manually"`,
		`data-manual="Find your address by postcode"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected markup to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, `id="input_2_4_2" name="input_4.2" value="" aria-required`) {
		t.Fatal("expected optional inputs without aria-required")
	}
}

func TestRenderEscapesValues(t *testing.T) {
	f := newField(t, Definition{ID: 1, FormID: 1, Type: TypePostcodeLookup, Label: "Address"})

	markup, err := f.Render(Values{SuffixLine1: `"><script>alert(1)</script>`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(markup), "<script>") {
		t.Fatalf("expected values to be escaped, got:\n%s", markup)
	}
}

func TestDOMIDByMode(t *testing.T) {
	cases := []struct {
		formID int
		mode   Mode
		want   string
	}{
		{3, ModeFrontend, "input_3_7"},
		{3, ModeEditor, "input_7"},
		{3, ModeEntry, "input_7"},
		{0, ModeFrontend, "input_7"},
	}

	for _, tc := range cases {
		f := PostcodeLookup{ID: 7, FormID: tc.formID, Mode: tc.mode}
		if got := f.DOMID(); got != tc.want {
			t.Fatalf("expected %q for form %d mode %s, got %q", tc.want, tc.formID, tc.mode, got)
		}
	}
}

func TestEditorModeDisablesInputs(t *testing.T) {
	f := newField(t, Definition{ID: 1, FormID: 1, Type: TypePostcodeLookup, Label: "Address"})

	markup, err := f.WithMode(ModeEditor).Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(string(markup), `disabled="disabled"`); got != 6 {
		t.Fatalf("expected search and five address inputs disabled, got %d", got)
	}
}

func TestCustomButtonText(t *testing.T) {
	f := newField(t, Definition{ID: 1, Type: TypePostcodeLookup, Label: "Address", ButtonText: "Search"})

	markup, _ := f.Render(nil)
	if !strings.Contains(string(markup), ">Search</a>") {
		t.Fatalf("expected custom button text, got:\n%s", markup)
	}
}

func TestValidateRequired(t *testing.T) {
	f := newField(t, Definition{ID: 1, Type: TypePostcodeLookup, Label: "Address", Required: true})

	if res := f.Validate(Values{SuffixLine1: "1 High St", SuffixPostcode: "LS1 1AA"}); !res.Valid {
		t.Fatalf("expected valid, got %+v", res)
	}

	res := f.Validate(Values{SuffixLine1: "1 High St", SuffixPostcode: "  "})
	if res.Valid || res.Message != defaultRequiredMsg {
		t.Fatalf("expected default required message, got %+v", res)
	}

	f.ErrorMessage = "Address please"
	if res := f.Validate(Values{}); res.Message != "Address please" {
		t.Fatalf("expected custom message, got %+v", res)
	}

	f.Required = false
	if res := f.Validate(Values{}); !res.Valid {
		t.Fatalf("expected optional field to pass, got %+v", res)
	}
}

func TestExportValue(t *testing.T) {
	f := PostcodeLookup{ID: 1}

	got := f.ExportValue(Values{
		SuffixLine1:    "  1  High St ",
		SuffixCity:     "Leeds",
		SuffixPostcode: "LS1 1AA",
	})
	if got != "1 High St Leeds LS1 1AA" {
		t.Fatalf("unexpected export %q", got)
	}

	if got := f.ExportValue(Values{SuffixCity: "Leeds", SuffixPostcode: "LS1 1AA"}); got != "" {
		t.Fatalf("expected empty export without line 1, got %q", got)
	}
}

func TestEntryDetail(t *testing.T) {
	f := PostcodeLookup{ID: 1}
	values := Values{SuffixLine1: "1 High St", SuffixCity: "Leeds & District", SuffixPostcode: "LS1 1AA"}

	text := f.EntryDetail(values, FormatText)
	if text != "1 High St\nLeeds & District\nLS1 1AA" {
		t.Fatalf("unexpected text detail %q", text)
	}

	htmlOut := f.EntryDetail(values, FormatHTML)
	if !strings.HasPrefix(htmlOut, "1 High St<br />Leeds &amp; District<br />LS1 1AA<br><a href=\"https://maps.google.com/maps?q=") {
		t.Fatalf("unexpected html detail %q", htmlOut)
	}
	if !strings.Contains(htmlOut, `target="_blank">View on Google Maps</a>`) {
		t.Fatalf("expected map link, got %q", htmlOut)
	}

	if got := f.EntryDetail(Values{}, FormatHTML); got != "" {
		t.Fatalf("expected no detail for empty values, got %q", got)
	}
}

func TestBindingCoversEveryPart(t *testing.T) {
	binding := PostcodeLookup{ID: 4, FormID: 2}.Binding()

	if binding[transport.PartLine1] != "input_2_4_1" || binding[transport.PartCity] != "input_2_4_city" {
		t.Fatalf("unexpected binding %v", binding)
	}
	if len(binding) != len(transport.Parts) {
		t.Fatalf("expected %d bound parts, got %d", len(transport.Parts), len(binding))
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	if err := r.Register(TypePostcodeLookup, NewPostcodeLookup); !errors.Is(err, ErrConflictingRegistration) {
		t.Fatalf("expected conflicting registration, got %v", err)
	}
	if err := r.Register("", NewPostcodeLookup); !errors.Is(err, ErrEmptyType) {
		t.Fatalf("expected empty type error, got %v", err)
	}

	d, err := r.Build(Definition{ID: 1, Type: TypePostcodeLookup, Label: "Address"})
	if err != nil || d.Type() != TypePostcodeLookup {
		t.Fatalf("expected postcode lookup descriptor, got %v, %v", d, err)
	}
	if _, err := r.Build(Definition{ID: 1, Type: "signature"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Register("custom", NewPostcodeLookup); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one registration to win, got %d", succeeded)
	}
	if types := r.Types(); len(types) != 1 || types[0] != "custom" {
		t.Fatalf("unexpected types %v", types)
	}
}
